package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/alexanderramin/pmo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T, opts ...db.UoWOption) (*db.SQLiteUnitOfWork, *repository.SQLiteSaveLogRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	opts = append([]db.UoWOption{db.WithBusyBackoff(time.Millisecond)}, opts...)
	return db.NewSQLiteUnitOfWork(database, opts...), repository.NewSQLiteSaveLogRepo(database)
}

func savedCount(t *testing.T, log *repository.SQLiteSaveLogRepo) int {
	t.Helper()
	recs, err := log.ListRecent(context.Background(), 100)
	require.NoError(t, err)
	return len(recs)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	uow, log := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteSaveLogRepo(tx).Create(ctx, testutil.NewTestSaveRecord(42, time.Now()))
	})

	require.NoError(t, err)
	assert.Equal(t, 1, savedCount(t, log))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	uow, log := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSaveLogRepo(tx).Create(ctx, testutil.NewTestSaveRecord(42, time.Now())); err != nil {
			return err
		}
		return errors.New("clearing session failed")
	})

	require.EqualError(t, err, "clearing session failed")
	assert.Zero(t, savedCount(t, log))
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	uow, log := newUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = repository.NewSQLiteSaveLogRepo(tx).Create(ctx, testutil.NewTestSaveRecord(42, time.Now()))
			panic("boom")
		})
	})
	assert.Zero(t, savedCount(t, log))
}

func TestWithinTx_RetriesWhenBusy(t *testing.T) {
	uow, log := newUoW(t)
	attempts := 0

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		if attempts == 1 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return repository.NewSQLiteSaveLogRepo(tx).Create(ctx, testutil.NewTestSaveRecord(42, time.Now()))
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, savedCount(t, log))
}

func TestWithinTx_GivesUpAfterRetries(t *testing.T) {
	uow, _ := newUoW(t, db.WithBusyRetries(2))
	attempts := 0

	err := uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		attempts++
		return errors.New("database is locked")
	})

	assert.ErrorIs(t, err, db.ErrBusy)
	assert.Equal(t, 3, attempts)
}

func TestWithinTx_DoesNotRetryOtherErrors(t *testing.T) {
	uow, _ := newUoW(t)
	attempts := 0
	want := errors.New("constraint failed")

	err := uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		attempts++
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.NotErrorIs(t, err, db.ErrBusy)
	assert.Equal(t, 1, attempts)
}

func TestWithinTx_StopsRetryingWhenCancelled(t *testing.T) {
	uow, _ := newUoW(t, db.WithBusyBackoff(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	err := uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		cancel()
		return errors.New("database is locked")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, db.ErrBusy)
}
