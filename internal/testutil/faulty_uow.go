package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/pmo/internal/db"
)

// FaultyUoW runs each transaction through the real unit of work but fails
// any write whose SQL starts with FailPrefix. Reads are never intercepted.
type FaultyUoW struct {
	DB         *sql.DB
	FailPrefix string
	Err        error

	// Hits counts the writes that were failed.
	Hits int
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	inner := db.NewSQLiteUnitOfWork(u.DB, db.WithBusyRetries(0))
	return inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u})
	})
}

type faultyTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.FailPrefix != "" && strings.HasPrefix(strings.TrimSpace(query), f.uow.FailPrefix) {
		f.uow.Hits++
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
