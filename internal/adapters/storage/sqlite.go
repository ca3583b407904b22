// Package storage provides SQLite implementations of the storage ports.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/xvierd/timebox-cli/internal/ports"
	"modernc.org/sqlite"
)

const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db           *sql.DB
	timeboxRepo  ports.TimeboxRepository
	runRepo      ports.RunRepository
	settingsRepo ports.SettingsRepository
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a new SQLite storage instance.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" opens its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	storage := &sqliteStorage{
		db:           db,
		timeboxRepo:  newTimeboxRepository(db),
		runRepo:      newRunRepository(db),
		settingsRepo: newSettingsRepository(db),
	}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Timeboxes returns the pending list repository.
func (s *sqliteStorage) Timeboxes() ports.TimeboxRepository {
	return s.timeboxRepo
}

// Runs returns the run history repository.
func (s *sqliteStorage) Runs() ports.RunRepository {
	return s.runRepo
}

// Settings returns the settings repository.
func (s *sqliteStorage) Settings() ports.SettingsRepository {
	return s.settingsRepo
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS timeboxes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		position INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timeboxes_position ON timeboxes(position);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timebox_id TEXT NOT NULL,
		title TEXT NOT NULL,
		planned_ms INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		pauses INTEGER NOT NULL DEFAULT 0,
		started_at_ms INTEGER NOT NULL,
		stopped_at_ms INTEGER NOT NULL,
		git_branch TEXT,
		git_commit TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timebox ON runs(timebox_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at_ms);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// isUniqueConstraintError checks if an error is a unique or primary key
// constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
}
