package store

import (
	"context"
	"database/sql"
	"errors"
)

// Sentinel errors returned (wrapped) by store functions. Callers match them
// with errors.Is and map them onto HTTP status codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalid        = errors.New("invalid input")
	ErrProfileMissing = errors.New("profile not found")
)

// querier is satisfied by both *sql.DB and *sql.Tx so helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

