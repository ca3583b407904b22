package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// errNoActiveService is returned when no active container is attached.
var errNoActiveService = errors.New("no active timebox in this process")

// StateService implements the MCPStateProvider interface on top of the list
// and active containers.
type StateService struct {
	storage ports.Storage
	list    *TimeboxListService
	active  *ActiveTimeboxService
}

// NewStateService creates a new state service.
func NewStateService(storage ports.Storage, list *TimeboxListService) *StateService {
	return &StateService{storage: storage, list: list}
}

// SetActiveService attaches the active container for the timer tools.
func (s *StateService) SetActiveService(active *ActiveTimeboxService) {
	s.active = active
}

// ListTimeboxes implements ports.MCPStateProvider.
func (s *StateService) ListTimeboxes(ctx context.Context) ([]*domain.Timebox, error) {
	return s.list.List(ctx)
}

// CreateTimebox implements ports.MCPStateProvider.
func (s *StateService) CreateTimebox(ctx context.Context, title string, minutes float64) (*domain.Timebox, error) {
	tb, err := domain.NewTimebox(title, minutes)
	if err != nil {
		return nil, err
	}
	return s.list.Create(ctx, *tb)
}

// RemoveTimebox implements ports.MCPStateProvider.
func (s *StateService) RemoveTimebox(ctx context.Context, id string) error {
	tb, err := s.list.Resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.list.RemoveByID(ctx, tb.ID)
}

// UpdateTimebox implements ports.MCPStateProvider. Nil fields keep their
// current value.
func (s *StateService) UpdateTimebox(ctx context.Context, id string, title *string, minutes *float64) (*domain.Timebox, error) {
	tb, err := s.list.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *tb
	if title != nil {
		updated.Title = *title
	}
	if minutes != nil {
		d, err := domain.MinutesToDuration(*minutes)
		if err != nil {
			return nil, err
		}
		updated.Duration = d
	}

	if err := s.list.ReplaceByID(ctx, tb.ID, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetActive implements ports.MCPStateProvider.
func (s *StateService) GetActive(ctx context.Context) (*ports.ActiveState, error) {
	if s.active == nil {
		return nil, errNoActiveService
	}
	state := s.active.State()
	return &state, nil
}

// EditActive implements ports.MCPStateProvider. It enters edit mode, applies
// the given fields and confirms again, so a running countdown is reset. The
// fields are validated first; a rejected edit leaves the container untouched.
func (s *StateService) EditActive(ctx context.Context, title *string, minutes *float64) (*ports.ActiveState, error) {
	if s.active == nil {
		return nil, errNoActiveService
	}

	if title != nil && *title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if minutes != nil {
		if _, err := domain.MinutesToDuration(*minutes); err != nil {
			return nil, err
		}
	}

	if _, err := s.active.Edit(ctx); err != nil {
		return nil, err
	}
	if title != nil {
		if err := s.active.EditTitle(*title); err != nil {
			return nil, err
		}
	}
	if minutes != nil {
		if err := s.active.EditDuration(*minutes); err != nil {
			return nil, err
		}
	}
	s.active.Confirm()

	state := s.active.State()
	return &state, nil
}

// StartActive implements ports.MCPStateProvider. A timebox still in edit
// mode is confirmed first.
func (s *StateService) StartActive(ctx context.Context) (*ports.ActiveState, error) {
	if s.active == nil {
		return nil, errNoActiveService
	}
	s.active.Confirm()

	state, err := s.active.Start(ctx)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// TogglePauseActive implements ports.MCPStateProvider.
func (s *StateService) TogglePauseActive(ctx context.Context) (*ports.ActiveState, error) {
	if s.active == nil {
		return nil, errNoActiveService
	}
	state, err := s.active.TogglePause(ctx)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// StopActive implements ports.MCPStateProvider.
func (s *StateService) StopActive(ctx context.Context) (*domain.RunRecord, error) {
	if s.active == nil {
		return nil, errNoActiveService
	}
	return s.active.Stop(ctx)
}

// GetDailyStats implements ports.MCPStateProvider.
func (s *StateService) GetDailyStats(ctx context.Context) (*domain.DailyStats, error) {
	stats, err := s.storage.Runs().GetDailyStats(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return stats, nil
}

// GetRecentRuns implements ports.MCPStateProvider.
func (s *StateService) GetRecentRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	since := time.Now().AddDate(0, 0, -7)
	runs, err := s.storage.Runs().FindRecent(ctx, since)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(runs) > limit {
		return runs[:limit], nil
	}
	return runs, nil
}

// Ensure StateService implements MCPStateProvider.
var _ ports.MCPStateProvider = (*StateService)(nil)
