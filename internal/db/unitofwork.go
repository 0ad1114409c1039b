package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/pmo/internal/logging"
)

// UnitOfWork runs fn inside one transaction. fn builds tx-scoped
// repositories from the DBTX it is given.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// DefaultBusyRetries is how often a transaction is retried when another pmo
// process holds the write lock.
const DefaultBusyRetries = 3

// ErrBusy matches the SQLite "database is locked" family of errors.
var ErrBusy = errors.New("database busy")

type UoWOption func(*SQLiteUnitOfWork)

// WithBusyRetries sets how many times a busy transaction is retried.
func WithBusyRetries(n int) UoWOption {
	return func(u *SQLiteUnitOfWork) { u.retries = max(n, 0) }
}

// WithBusyBackoff sets the delay before the first retry; it doubles after
// each attempt.
func WithBusyBackoff(d time.Duration) UoWOption {
	return func(u *SQLiteUnitOfWork) { u.backoff = d }
}

func WithUoWLogger(logger *slog.Logger) UoWOption {
	return func(u *SQLiteUnitOfWork) { u.logger = logging.OrDiscard(logger) }
}

// SQLiteUnitOfWork commits on success, rolls back on error or panic, and
// retries the whole transaction when SQLite reports the database busy.
type SQLiteUnitOfWork struct {
	db      *sql.DB
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

func NewSQLiteUnitOfWork(db *sql.DB, opts ...UoWOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{
		db:      db,
		retries: DefaultBusyRetries,
		backoff: 50 * time.Millisecond,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	delay := u.backoff
	for attempt := 0; ; attempt++ {
		err := u.once(ctx, fn)
		if err == nil || !errors.Is(err, ErrBusy) || attempt >= u.retries {
			return err
		}
		u.logger.Debug("database busy, retrying", "attempt", attempt+1, "delay", delay)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (u *SQLiteUnitOfWork) once(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("beginning transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return classify(fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err))
		}
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// busyError marks an error as retryable while keeping its chain intact.
type busyError struct{ err error }

func (e *busyError) Error() string        { return e.err.Error() }
func (e *busyError) Unwrap() error        { return e.err }
func (e *busyError) Is(target error) bool { return target == ErrBusy }

func classify(err error) error {
	if err == nil || errors.Is(err, ErrBusy) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return &busyError{err: err}
	}
	return err
}
