// Package inmem is an in-memory dao.Store, the default persistence layer
// used when no DB is configured and in tests.
package inmem

import (
	"github.com/dekarrin/diceroll/server/dao"
)

type store struct {
	rolls *RollsRepository
	keys  *APIKeysRepository
}

// NewDatastore returns a fresh, empty in-memory Store.
func NewDatastore() dao.Store {
	return &store{
		rolls: NewRollsRepository(),
		keys:  NewAPIKeysRepository(),
	}
}

func (s *store) Rolls() dao.RollRepository     { return s.rolls }
func (s *store) APIKeys() dao.APIKeyRepository { return s.keys }

func (s *store) Close() error {
	return nil
}
