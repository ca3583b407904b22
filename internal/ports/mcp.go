package ports

import (
	"context"

	"github.com/xvierd/timebox-cli/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// ActiveState is the observable state of the editable timebox container.
type ActiveState struct {
	Timebox    domain.Timebox
	IsEditable bool
	Run        domain.RunSnapshot
	Display    domain.Display
}

// MCPStateProvider is what the MCP server needs from the services layer.
type MCPStateProvider interface {
	ListTimeboxes(ctx context.Context) ([]*domain.Timebox, error)
	CreateTimebox(ctx context.Context, title string, minutes float64) (*domain.Timebox, error)
	RemoveTimebox(ctx context.Context, id string) error
	UpdateTimebox(ctx context.Context, id string, title *string, minutes *float64) (*domain.Timebox, error)

	GetActive(ctx context.Context) (*ActiveState, error)
	EditActive(ctx context.Context, title *string, minutes *float64) (*ActiveState, error)
	StartActive(ctx context.Context) (*ActiveState, error)
	TogglePauseActive(ctx context.Context) (*ActiveState, error)
	StopActive(ctx context.Context) (*domain.RunRecord, error)

	GetDailyStats(ctx context.Context) (*domain.DailyStats, error)
	GetRecentRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error)
}
