package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillSessionKeys(db); err != nil {
		return fmt.Errorf("backfilling editor session keys: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS editor_sessions (
		key         TEXT PRIMARY KEY,
		id          TEXT NOT NULL,
		mode        TEXT NOT NULL CHECK(mode IN ('resource','project')),
		entity_id   INTEGER NOT NULL DEFAULT 0,
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`ALTER TABLE editor_sessions ADD COLUMN filters TEXT NOT NULL DEFAULT '{}'`,
	`CREATE TABLE IF NOT EXISTS save_log (
		id          TEXT PRIMARY KEY,
		session_id  TEXT,
		mode        TEXT NOT NULL CHECK(mode IN ('resource','project')),
		entity_id   INTEGER NOT NULL,
		creates     INTEGER NOT NULL DEFAULT 0,
		updates     INTEGER NOT NULL DEFAULT 0,
		deletes     INTEGER NOT NULL DEFAULT 0,
		success     INTEGER NOT NULL DEFAULT 0,
		error       TEXT,
		saved_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_save_log_saved ON save_log(saved_at)`,
	`CREATE INDEX IF NOT EXISTS idx_save_log_entity ON save_log(mode, entity_id)`,
}

// migrateBackfillSessionKeys rewrites session keys created before keys were
// namespaced by mode ("42" becomes "resource:42").
func migrateBackfillSessionKeys(db *sql.DB) error {
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		UPDATE editor_sessions
		SET key = mode || ':' || key
		WHERE instr(key, ':') = 0
		  AND NOT EXISTS (
			SELECT 1 FROM editor_sessions AS other
			WHERE other.key = editor_sessions.mode || ':' || editor_sessions.key
		  )`)
	return err
}
