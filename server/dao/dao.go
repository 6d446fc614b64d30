// Package dao provides data access objects for roll history and API
// credentials used by the diceroll server.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories the server needs.
type Store interface {
	Rolls() RollRepository
	APIKeys() APIKeyRepository
	Close() error
}

// Roll is a persisted record of one evaluated expression: the literal input
// and both renderings of its outcome, captured once at roll time so a later
// ?format=markdown fetch cannot reroll any dice. AST holds the literal
// expression text, rezi-encoded; it is not the full Expression Tree, which
// is not a concern this store needs to reconstruct (nothing re-evaluates a
// stored roll).
type Roll struct {
	ID             uuid.UUID
	Expr           string
	Result         string
	MarkdownResult string
	Comment        string
	Total          int
	AST            []byte // rezi-encoded expression text
	Created        time.Time
}

type RollRepository interface {
	Create(ctx context.Context, r Roll) (Roll, error)
	GetByID(ctx context.Context, id uuid.UUID) (Roll, error)

	// GetAll retrieves up to limit rolls ordered most-recent-first,
	// skipping the first offset.
	GetAll(ctx context.Context, limit, offset int) ([]Roll, error)
	Close() error
}

// APIKey is an issuing credential for bearer tokens: Secret is never
// stored, only its bcrypt hash.
type APIKey struct {
	ID         uuid.UUID
	Name       string
	SecretHash []byte
	Created    time.Time
}

type APIKeyRepository interface {
	Create(ctx context.Context, k APIKey) (APIKey, error)
	GetByName(ctx context.Context, name string) (APIKey, error)
	Close() error
}
