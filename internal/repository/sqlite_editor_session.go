package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/domain"
)

// SQLiteEditorSessionRepo implements EditorSessionRepo using a SQLite database.
type SQLiteEditorSessionRepo struct {
	db db.DBTX
}

// NewSQLiteEditorSessionRepo creates a new SQLiteEditorSessionRepo.
func NewSQLiteEditorSessionRepo(conn db.DBTX) *SQLiteEditorSessionRepo {
	return &SQLiteEditorSessionRepo{db: conn}
}

const editorSessionColumns = `key, id, mode, entity_id, payload, filters, created_at, updated_at`

func (r *SQLiteEditorSessionRepo) Get(ctx context.Context, key string) (*domain.StoredSession, error) {
	query := `SELECT ` + editorSessionColumns + ` FROM editor_sessions WHERE key = ?`
	row := r.db.QueryRowContext(ctx, query, key)

	s, err := scanEditorSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("editor session %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning editor session: %w", err)
	}
	return s, nil
}

// Upsert inserts or replaces the session under its key. CreatedAt is kept
// from the existing row when there is one; UpdatedAt is always refreshed.
func (r *SQLiteEditorSessionRepo) Upsert(ctx context.Context, s *domain.StoredSession) error {
	now := nowUTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	filters := s.Filters
	if len(filters) == 0 {
		filters = []byte("{}")
	}

	query := `INSERT INTO editor_sessions (` + editorSessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			id = excluded.id,
			mode = excluded.mode,
			entity_id = excluded.entity_id,
			payload = excluded.payload,
			filters = excluded.filters,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.Key,
		s.ID,
		string(s.Mode),
		s.EntityID,
		string(s.Payload),
		string(filters),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting editor session: %w", err)
	}
	return nil
}

func (r *SQLiteEditorSessionRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM editor_sessions WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting editor session: %w", err)
	}
	return nil
}

func (r *SQLiteEditorSessionRepo) List(ctx context.Context) ([]*domain.StoredSession, error) {
	query := `SELECT ` + editorSessionColumns + ` FROM editor_sessions ORDER BY updated_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing editor sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.StoredSession
	for rows.Next() {
		s, err := scanEditorSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning editor session row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating editor sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEditorSession(row scanner) (*domain.StoredSession, error) {
	var (
		s                    domain.StoredSession
		mode                 string
		payload, filters     string
		createdAt, updatedAt string
	)
	if err := row.Scan(&s.Key, &s.ID, &mode, &s.EntityID, &payload, &filters, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Mode = domain.EditorMode(mode)
	s.Payload = []byte(payload)
	s.Filters = []byte(filters)

	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
