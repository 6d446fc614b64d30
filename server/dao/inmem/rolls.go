package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/diceroll/server/dao"
	"github.com/google/uuid"
)

func NewRollsRepository() *RollsRepository {
	return &RollsRepository{rolls: make(map[uuid.UUID]dao.Roll)}
}

type RollsRepository struct {
	mu    sync.Mutex
	rolls map[uuid.UUID]dao.Roll
}

func (r *RollsRepository) Close() error { return nil }

func (r *RollsRepository) Create(ctx context.Context, roll dao.Roll) (dao.Roll, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Roll{}, fmt.Errorf("could not generate ID: %w", err)
	}
	roll.ID = newUUID
	roll.Created = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rolls[roll.ID] = roll
	return roll, nil
}

func (r *RollsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Roll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roll, ok := r.rolls[id]
	if !ok {
		return dao.Roll{}, dao.ErrNotFound
	}
	return roll, nil
}

func (r *RollsRepository) GetAll(ctx context.Context, limit, offset int) ([]dao.Roll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]dao.Roll, 0, len(r.rolls))
	for _, roll := range r.rolls {
		all = append(all, roll)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Created.After(all[j].Created) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
