package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/diceroll/server/dao"
	"github.com/google/uuid"
)

type RollsDB struct {
	db *sql.DB
}

func (repo *RollsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS rolls (
		id TEXT NOT NULL PRIMARY KEY,
		expr TEXT NOT NULL,
		result TEXT NOT NULL,
		markdown_result TEXT NOT NULL,
		comment TEXT NOT NULL,
		total INTEGER NOT NULL,
		ast BLOB NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	return wrapDBError(err)
}

func (repo *RollsDB) Create(ctx context.Context, r dao.Roll) (dao.Roll, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Roll{}, fmt.Errorf("could not generate ID: %w", err)
	}
	r.ID = newUUID
	r.Created = time.Now()

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO rolls (id, expr, result, markdown_result, comment, total, ast, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Expr, r.Result, r.MarkdownResult, r.Comment, r.Total, r.AST, r.Created.Unix(),
	)
	if err != nil {
		return dao.Roll{}, wrapDBError(err)
	}
	return r, nil
}

func (repo *RollsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Roll, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT expr, result, markdown_result, comment, total, ast, created FROM rolls WHERE id = ?;`, id.String())

	r := dao.Roll{ID: id}
	var created int64
	err := row.Scan(&r.Expr, &r.Result, &r.MarkdownResult, &r.Comment, &r.Total, &r.AST, &created)
	if err != nil {
		return dao.Roll{}, wrapDBError(err)
	}
	r.Created = time.Unix(created, 0)
	return r, nil
}

func (repo *RollsDB) GetAll(ctx context.Context, limit, offset int) ([]dao.Roll, error) {
	if limit <= 0 {
		limit = -1 // sqlite treats a negative LIMIT as "no limit"
	}
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, expr, result, markdown_result, comment, total, ast, created FROM rolls ORDER BY created DESC LIMIT ? OFFSET ?;`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Roll
	for rows.Next() {
		var r dao.Roll
		var id string
		var created int64
		if err := rows.Scan(&id, &r.Expr, &r.Result, &r.MarkdownResult, &r.Comment, &r.Total, &r.AST, &created); err != nil {
			return nil, wrapDBError(err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
		}
		r.ID = parsed
		r.Created = time.Unix(created, 0)
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *RollsDB) Close() error {
	return repo.db.Close()
}
