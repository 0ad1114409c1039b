package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/domain"
)

// SQLiteSaveLogRepo implements SaveLogRepo using a SQLite database.
type SQLiteSaveLogRepo struct {
	db db.DBTX
}

// NewSQLiteSaveLogRepo creates a new SQLiteSaveLogRepo.
func NewSQLiteSaveLogRepo(conn db.DBTX) *SQLiteSaveLogRepo {
	return &SQLiteSaveLogRepo{db: conn}
}

const saveLogColumns = `id, session_id, mode, entity_id, creates, updates, deletes, success, error, saved_at`

func (r *SQLiteSaveLogRepo) Create(ctx context.Context, rec *domain.SaveRecord) error {
	if rec.SavedAt.IsZero() {
		rec.SavedAt = nowUTC()
	}
	query := `INSERT INTO save_log (` + saveLogColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		nullableString(rec.SessionID),
		string(rec.Mode),
		rec.EntityID,
		rec.Creates,
		rec.Updates,
		rec.Deletes,
		boolToInt(rec.Success),
		nullableString(rec.Error),
		formatTime(rec.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting save record: %w", err)
	}
	return nil
}

func (r *SQLiteSaveLogRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SaveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + saveLogColumns + ` FROM save_log ORDER BY saved_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent saves: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

func (r *SQLiteSaveLogRepo) ListByEntity(ctx context.Context, mode domain.EditorMode, entityID int64) ([]*domain.SaveRecord, error) {
	query := `SELECT ` + saveLogColumns + ` FROM save_log
		WHERE mode = ? AND entity_id = ?
		ORDER BY saved_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, string(mode), entityID)
	if err != nil {
		return nil, fmt.Errorf("listing saves by entity: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

// DeleteBefore prunes records saved before cutoff and returns how many went.
func (r *SQLiteSaveLogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM save_log WHERE saved_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("pruning save log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned saves: %w", err)
	}
	return n, nil
}

func (r *SQLiteSaveLogRepo) scanRecords(rows *sql.Rows) ([]*domain.SaveRecord, error) {
	var out []*domain.SaveRecord
	for rows.Next() {
		var (
			rec               domain.SaveRecord
			sessionID, errStr sql.NullString
			mode, savedAt     string
			success           int
		)
		err := rows.Scan(&rec.ID, &sessionID, &mode, &rec.EntityID,
			&rec.Creates, &rec.Updates, &rec.Deletes, &success, &errStr, &savedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning save record: %w", err)
		}
		rec.SessionID = stringOrEmpty(sessionID)
		rec.Mode = domain.EditorMode(mode)
		rec.Success = intToBool(success)
		rec.Error = stringOrEmpty(errStr)
		if rec.SavedAt, err = parseTime(savedAt); err != nil {
			return nil, fmt.Errorf("parsing saved_at: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating save records: %w", err)
	}
	return out, nil
}
