package nws

import (
	"context"
	"database/sql"
)

// DBTX is the persistence handle records write through. Callers pass an
// already begun *sql.Tx; records never commit or roll back.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Record is a parsed product record that knows how to persist itself.
type Record interface {
	Kind() string
	SQL(ctx context.Context, tx DBTX) error
}
