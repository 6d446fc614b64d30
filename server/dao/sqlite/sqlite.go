// Package sqlite is a dao.Store backed by modernc.org/sqlite, the
// pure-Go sqlite driver this codebase's persistence layer already uses.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/diceroll/server/dao"
	sqlitelib "modernc.org/sqlite"
)

type store struct {
	dbFilename string
	db         *sql.DB

	rolls *RollsDB
	keys  *APIKeysDB
}

// NewDatastore opens (creating if absent) a sqlite database under
// storageDir and runs its table migrations.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{dbFilename: "diceroll.db"}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.rolls = &RollsDB{db: st.db}
	if err := st.rolls.init(); err != nil {
		return nil, err
	}

	st.keys = &APIKeysDB{db: st.db}
	if err := st.keys.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Rolls() dao.RollRepository     { return s.rolls }
func (s *store) APIKeys() dao.APIKeyRepository { return s.keys }

func (s *store) Close() error {
	return s.db.Close()
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlitelib.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlitelib.ErrorCodeString[sqliteErr.Code()])
	}
	if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
