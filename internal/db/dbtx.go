package db

import (
	"context"
	"database/sql"
)

// DBTX is what the session and save-log repositories query through. Both
// the shared *sql.DB and a transaction from UnitOfWork satisfy it, so one
// repository type serves plain reads and transactional writes.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
