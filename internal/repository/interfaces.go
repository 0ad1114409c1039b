package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
)

// ErrNotFound is wrapped by every repository lookup that matches no row.
var ErrNotFound = errors.New("not found")

type EditorSessionRepo interface {
	Get(ctx context.Context, key string) (*domain.StoredSession, error)
	Upsert(ctx context.Context, s *domain.StoredSession) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*domain.StoredSession, error)
}

type SaveLogRepo interface {
	Create(ctx context.Context, r *domain.SaveRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SaveRecord, error)
	ListByEntity(ctx context.Context, mode domain.EditorMode, entityID int64) ([]*domain.SaveRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
