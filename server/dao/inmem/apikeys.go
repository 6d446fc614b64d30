package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/diceroll/server/dao"
	"github.com/google/uuid"
)

func NewAPIKeysRepository() *APIKeysRepository {
	return &APIKeysRepository{byName: make(map[string]dao.APIKey)}
}

type APIKeysRepository struct {
	mu     sync.Mutex
	byName map[string]dao.APIKey
}

func (r *APIKeysRepository) Close() error { return nil }

func (r *APIKeysRepository) Create(ctx context.Context, k dao.APIKey) (dao.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[k.Name]; ok {
		return dao.APIKey{}, dao.ErrConstraintViolation
	}

	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.APIKey{}, fmt.Errorf("could not generate ID: %w", err)
	}
	k.ID = newUUID
	k.Created = time.Now()

	r.byName[k.Name] = k
	return k, nil
}

func (r *APIKeysRepository) GetByName(ctx context.Context, name string) (dao.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.byName[name]
	if !ok {
		return dao.APIKey{}, dao.ErrNotFound
	}
	return k, nil
}
