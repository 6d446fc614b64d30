package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/diceroll/server/dao"
	"github.com/google/uuid"
)

type APIKeysDB struct {
	db *sql.DB
}

func (repo *APIKeysDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		secret_hash BLOB NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	return wrapDBError(err)
}

func (repo *APIKeysDB) Create(ctx context.Context, k dao.APIKey) (dao.APIKey, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.APIKey{}, fmt.Errorf("could not generate ID: %w", err)
	}
	k.ID = newUUID
	k.Created = time.Now()

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, secret_hash, created) VALUES (?, ?, ?, ?)`,
		k.ID.String(), k.Name, k.SecretHash, k.Created.Unix(),
	)
	if err != nil {
		return dao.APIKey{}, wrapDBError(err)
	}
	return k, nil
}

func (repo *APIKeysDB) GetByName(ctx context.Context, name string) (dao.APIKey, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, secret_hash, created FROM api_keys WHERE name = ?;`, name)

	k := dao.APIKey{Name: name}
	var id string
	var created int64
	if err := row.Scan(&id, &k.SecretHash, &created); err != nil {
		return dao.APIKey{}, wrapDBError(err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return dao.APIKey{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	k.ID = parsed
	k.Created = time.Unix(created, 0)
	return k, nil
}

func (repo *APIKeysDB) Close() error {
	return repo.db.Close()
}
