// Package ports defines the interfaces (driven and driving ports)
// of the timebox tracker. These interfaces are the contracts between the
// services layer and the storage, timing, git and transport adapters.
package ports

import (
	"context"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
)

// TimeboxRepository persists the ordered pending list.
// Order is list order: index 0 is the newest entry.
type TimeboxRepository interface {
	// List returns every timebox in list order.
	List(ctx context.Context) ([]*domain.Timebox, error)

	// FindByID retrieves a timebox by its identifier.
	FindByID(ctx context.Context, id string) (*domain.Timebox, error)

	// FindByIDPrefix returns every timebox whose ID starts with prefix.
	FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.Timebox, error)

	// FindByTitle does a fuzzy search on titles, best match first.
	FindByTitle(ctx context.Context, query string) ([]*domain.Timebox, error)

	// Prepend inserts a timebox at the head of the list.
	Prepend(ctx context.Context, tb *domain.Timebox) error

	// Replace overwrites the entry identified by id in place, keeping its
	// position. The replacement may carry a different ID.
	Replace(ctx context.Context, id string, tb *domain.Timebox) error

	// Delete removes a timebox from the list.
	Delete(ctx context.Context, id string) error
}

// RunRepository persists the history of finished runs.
type RunRepository interface {
	// Save stores a finished run.
	Save(ctx context.Context, run *domain.RunRecord) error

	// FindRecent returns runs started at or after since, newest first.
	FindRecent(ctx context.Context, since time.Time) ([]*domain.RunRecord, error)

	// FindByTimebox returns every run of one timebox, newest first.
	FindByTimebox(ctx context.Context, timeboxID string) ([]*domain.RunRecord, error)

	// GetDailyStats aggregates the runs started on the given date.
	GetDailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error)
}

// SettingsRepository stores small key/value flags alongside the data.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Storage is the combined repository interface.
type Storage interface {
	// Timeboxes provides access to the pending list.
	Timeboxes() TimeboxRepository

	// Runs provides access to run history.
	Runs() RunRepository

	// Settings provides access to stored flags.
	Settings() SettingsRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
