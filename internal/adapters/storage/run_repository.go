package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// runRepository implements ports.RunRepository using SQLite.
// Instants are stored as Unix milliseconds.
type runRepository struct {
	db *sql.DB
}

// newRunRepository creates a new run repository.
func newRunRepository(db *sql.DB) ports.RunRepository {
	return &runRepository{db: db}
}

const runColumns = `id, timebox_id, title, planned_ms, elapsed_ms, pauses, started_at_ms, stopped_at_ms, git_branch, git_commit`

// Save stores a finished run.
func (r *runRepository) Save(ctx context.Context, run *domain.RunRecord) error {
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.TimeboxID,
		run.Title,
		run.Planned.Milliseconds(),
		run.Elapsed.Milliseconds(),
		run.PausesCount,
		run.StartedAt.UnixMilli(),
		run.StoppedAt.UnixMilli(),
		nullString(run.GitBranch),
		nullString(run.GitCommit),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// FindRecent returns runs started at or after since, newest first.
func (r *runRepository) FindRecent(ctx context.Context, since time.Time) ([]*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + `
		FROM runs
		WHERE started_at_ms >= ?
		ORDER BY started_at_ms DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanRuns(rows)
}

// FindByTimebox returns every run of one timebox, newest first.
func (r *runRepository) FindByTimebox(ctx context.Context, timeboxID string) ([]*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + `
		FROM runs
		WHERE timebox_id = ?
		ORDER BY started_at_ms DESC
	`

	rows, err := r.db.QueryContext(ctx, query, timeboxID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs by timebox: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanRuns(rows)
}

// GetDailyStats returns aggregated statistics for a specific date.
func (r *runRepository) GetDailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	query := `
		SELECT
			COUNT(*) as runs,
			COALESCE(SUM(elapsed_ms), 0) as focused_ms,
			COALESCE(SUM(pauses), 0) as pauses,
			COUNT(CASE WHEN planned_ms > 0 AND elapsed_ms > planned_ms THEN 1 END) as overruns
		FROM runs
		WHERE started_at_ms >= ? AND started_at_ms < ?
	`

	stats := &domain.DailyStats{
		Date: startOfDay,
	}

	var focusedMs int64
	err := r.db.QueryRowContext(ctx, query, startOfDay.UnixMilli(), endOfDay.UnixMilli()).Scan(
		&stats.Runs,
		&focusedMs,
		&stats.Pauses,
		&stats.Overruns,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	stats.TotalFocused = time.Duration(focusedMs) * time.Millisecond

	return stats, nil
}

// scanRuns scans multiple run rows.
func (r *runRepository) scanRuns(rows *sql.Rows) ([]*domain.RunRecord, error) {
	runs := []*domain.RunRecord{}

	for rows.Next() {
		var run domain.RunRecord
		var plannedMs, elapsedMs, startedMs, stoppedMs int64
		var gitBranch, gitCommit sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.TimeboxID,
			&run.Title,
			&plannedMs,
			&elapsedMs,
			&run.PausesCount,
			&startedMs,
			&stoppedMs,
			&gitBranch,
			&gitCommit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Planned = time.Duration(plannedMs) * time.Millisecond
		run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		run.StartedAt = time.UnixMilli(startedMs)
		run.StoppedAt = time.UnixMilli(stoppedMs)
		run.GitBranch = gitBranch.String
		run.GitCommit = gitCommit.String

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
