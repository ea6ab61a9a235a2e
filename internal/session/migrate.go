package session

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest schema version supported by the migrator.
const SchemaVersion = 1

// Migrate ensures the SQLite schema exists and is upgraded to SchemaVersion.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		name string
		ddl  string
	}{
		{"create sessions table", `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'active',
			cursor INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT '',
			draft TEXT NOT NULL DEFAULT '',
			pending_name INTEGER NOT NULL DEFAULT 0,
			pending_logo INTEGER NOT NULL DEFAULT 0,
			name_suggestions TEXT NOT NULL DEFAULT '[]',
			name_history TEXT NOT NULL DEFAULT '[]',
			logo_variants TEXT NOT NULL DEFAULT '[]',
			logo_style TEXT NOT NULL DEFAULT '',
			logo_generation INTEGER NOT NULL DEFAULT 0,
			palette_json TEXT NOT NULL DEFAULT '[]',
			font_lock TEXT NOT NULL DEFAULT '',
			palette_locked INTEGER NOT NULL DEFAULT 0,
			font_locked INTEGER NOT NULL DEFAULT 0,
			keep_layout INTEGER NOT NULL DEFAULT 0,
			layout_seed INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`},
		{"create answers table", `
		CREATE TABLE IF NOT EXISTS answers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			raw_value TEXT NOT NULL DEFAULT '',
			refined_value TEXT NOT NULL DEFAULT '',
			confirmed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`},
		{"create favorites table", `
		CREATE TABLE IF NOT EXISTS favorites (
			session_id TEXT NOT NULL,
			path TEXT NOT NULL,
			style TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			PRIMARY KEY (session_id, path),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`},
		{"create idx_answers_session_question_seq",
			`CREATE INDEX IF NOT EXISTS idx_answers_session_question_seq ON answers(session_id, question_id, seq)`},
		{"create idx_answers_session_seq",
			`CREATE INDEX IF NOT EXISTS idx_answers_session_seq ON answers(session_id, seq)`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.ddl); err != nil {
			return fmt.Errorf("migrate: %s: %w", step.name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}
