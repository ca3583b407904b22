package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// timeboxRepository implements ports.TimeboxRepository using SQLite.
// List order is ascending position; prepending takes the current minimum
// position minus one.
type timeboxRepository struct {
	db *sql.DB
}

// newTimeboxRepository creates a new timebox repository.
func newTimeboxRepository(db *sql.DB) ports.TimeboxRepository {
	return &timeboxRepository{db: db}
}

// List returns every timebox in list order.
func (r *timeboxRepository) List(ctx context.Context) ([]*domain.Timebox, error) {
	query := `
		SELECT id, title, duration_ms
		FROM timeboxes
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeboxes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanTimeboxes(rows)
}

// FindByID retrieves a timebox by its identifier.
func (r *timeboxRepository) FindByID(ctx context.Context, id string) (*domain.Timebox, error) {
	query := `
		SELECT id, title, duration_ms
		FROM timeboxes
		WHERE id = ?
	`

	var tb domain.Timebox
	var durationMs int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tb.ID, &tb.Title, &durationMs)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTimeboxNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find timebox: %w", err)
	}

	tb.Duration = time.Duration(durationMs) * time.Millisecond
	return &tb, nil
}

// FindByIDPrefix returns every timebox whose ID starts with prefix.
func (r *timeboxRepository) FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.Timebox, error) {
	query := `
		SELECT id, title, duration_ms
		FROM timeboxes
		WHERE substr(id, 1, ?) = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeboxes by prefix: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanTimeboxes(rows)
}

// FindByTitle does a fuzzy search for timeboxes by title.
func (r *timeboxRepository) FindByTitle(ctx context.Context, query string) ([]*domain.Timebox, error) {
	timeboxes, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeboxes for fuzzy search: %w", err)
	}

	titles := make([]string, len(timeboxes))
	for i, tb := range timeboxes {
		titles[i] = tb.Title
	}

	matches := fuzzy.Find(query, titles)

	result := make([]*domain.Timebox, 0, len(matches))
	for _, match := range matches {
		result = append(result, timeboxes[match.Index])
	}

	return result, nil
}

// Prepend inserts a timebox at the head of the list.
func (r *timeboxRepository) Prepend(ctx context.Context, tb *domain.Timebox) error {
	query := `
		INSERT INTO timeboxes (id, title, duration_ms, position, created_at, updated_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MIN(position), 0) - 1 FROM timeboxes), ?, ?)
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		tb.ID,
		tb.Title,
		tb.Duration.Milliseconds(),
		now,
		now,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTimebox, tb.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save timebox: %w", err)
	}

	return nil
}

// Replace overwrites the entry identified by id, keeping its position.
func (r *timeboxRepository) Replace(ctx context.Context, id string, tb *domain.Timebox) error {
	query := `
		UPDATE timeboxes
		SET id = ?, title = ?, duration_ms = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		tb.ID,
		tb.Title,
		tb.Duration.Milliseconds(),
		time.Now(),
		id,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTimebox, tb.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update timebox: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTimeboxNotFound
	}

	return nil
}

// Delete removes a timebox from the list.
func (r *timeboxRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM timeboxes WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete timebox: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTimeboxNotFound
	}

	return nil
}

// scanTimeboxes scans multiple timebox rows.
func (r *timeboxRepository) scanTimeboxes(rows *sql.Rows) ([]*domain.Timebox, error) {
	timeboxes := []*domain.Timebox{}

	for rows.Next() {
		var tb domain.Timebox
		var durationMs int64

		if err := rows.Scan(&tb.ID, &tb.Title, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan timebox: %w", err)
		}
		tb.Duration = time.Duration(durationMs) * time.Millisecond

		timeboxes = append(timeboxes, &tb)
	}

	return timeboxes, rows.Err()
}
