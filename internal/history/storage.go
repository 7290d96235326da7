// Package history keeps a record of every aggregation run in a SQLite
// database so results can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles database operations.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Concurrent report runs share the file; sqlite serializes writers anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the database tables.
func (s *Store) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			generated_at INTEGER NOT NULL,
			results_dir TEXT NOT NULL,
			output_path TEXT NOT NULL DEFAULT '',
			hostname TEXT NOT NULL DEFAULT '',
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			broken INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			other INTEGER NOT NULL,
			parse_errors INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run INTEGER NOT NULL,
			test_case_id TEXT NOT NULL,
			name TEXT NOT NULL,
			section TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			remarks TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(run) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_run_rows_run ON run_rows(run)`,
		`CREATE INDEX IF NOT EXISTS idx_run_rows_test_case_id ON run_rows(test_case_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
