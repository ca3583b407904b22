package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/logger"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// seededKey marks a database whose pending list has been seeded.
const seededKey = "pending_list_seeded"

// TimeboxListService handles the pending list use cases.
type TimeboxListService struct {
	// mu serialises every mutation so an index cannot go stale between
	// reading the list and mutating it.
	mu      sync.Mutex
	storage ports.Storage
	log     *slog.Logger
}

// NewTimeboxListService creates a new pending list service.
func NewTimeboxListService(storage ports.Storage) *TimeboxListService {
	return &TimeboxListService{
		storage: storage,
		log:     logger.ComponentLogger("list"),
	}
}

// Seed inserts the seed entries the first time it runs against a database.
// It reports whether anything was inserted.
func (s *TimeboxListService) Seed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, done, err := s.storage.Settings().Get(ctx, seededKey)
	if err != nil {
		return false, fmt.Errorf("failed to check seed flag: %w", err)
	}
	if done {
		return false, nil
	}

	// An entry already present comes from a seed that failed before the
	// flag was written; skipping it lets the seed complete.
	seeds := domain.SeedTimeboxes()
	for i := len(seeds) - 1; i >= 0; i-- {
		err := s.storage.Timeboxes().Prepend(ctx, &seeds[i])
		if errors.Is(err, domain.ErrDuplicateTimebox) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to seed timebox %s: %w", seeds[i].ID, err)
		}
	}

	if err := s.storage.Settings().Set(ctx, seededKey, "true"); err != nil {
		return false, fmt.Errorf("failed to set seed flag: %w", err)
	}

	s.log.Info("pending list seeded", "count", len(seeds))
	return true, nil
}

// Create prepends tb to the list. An empty ID is replaced by a generated one.
func (s *TimeboxListService) Create(ctx context.Context, tb domain.Timebox) (*domain.Timebox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tb.ID == "" {
		tb.ID = domain.NewID()
	}
	if err := tb.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Timeboxes().Prepend(ctx, &tb); err != nil {
		return nil, fmt.Errorf("failed to create timebox: %w", err)
	}

	s.log.Debug("timebox created", "id", tb.ID, "title", tb.Title)
	return &tb, nil
}

// List returns the pending list, newest first.
func (s *TimeboxListService) List(ctx context.Context) ([]*domain.Timebox, error) {
	list, err := s.storage.Timeboxes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeboxes: %w", err)
	}
	return list, nil
}

// Get finds a timebox by its ID or by a unique ID prefix.
func (s *TimeboxListService) Get(ctx context.Context, id string) (*domain.Timebox, error) {
	if id == "" {
		return nil, domain.ErrTimeboxNotFound
	}

	tb, err := s.storage.Timeboxes().FindByID(ctx, id)
	if err == nil {
		return tb, nil
	}
	if !errors.Is(err, domain.ErrTimeboxNotFound) {
		return nil, err
	}

	matches, err := s.storage.Timeboxes().FindByIDPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", domain.ErrTimeboxNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d timeboxes", domain.ErrAmbiguousID, id, len(matches))
	}
}

// Resolve finds a timebox from a user reference: "#N" is the N-th entry of
// the list counting from 1, anything else is an ID or unique ID prefix.
func (s *TimeboxListService) Resolve(ctx context.Context, ref string) (*domain.Timebox, error) {
	if !strings.HasPrefix(ref, "#") {
		return s.Get(ctx, ref)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTimeboxNotFound, ref)
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(list) {
		return nil, fmt.Errorf("%w: %s (list has %d entries)", domain.ErrIndexOutOfRange, ref, len(list))
	}
	return list[n-1], nil
}

// Search does a fuzzy title search, best match first.
func (s *TimeboxListService) Search(ctx context.Context, query string) ([]*domain.Timebox, error) {
	return s.storage.Timeboxes().FindByTitle(ctx, query)
}

// Remove deletes the entry at index.
func (s *TimeboxListService) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tb, err := s.at(ctx, index)
	if err != nil {
		return err
	}
	return s.removeByID(ctx, tb.ID)
}

// Replace overwrites the entry at index with tb. An empty ID keeps the
// existing entry's ID.
func (s *TimeboxListService) Replace(ctx context.Context, index int, tb domain.Timebox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.at(ctx, index)
	if err != nil {
		return err
	}
	return s.replaceByID(ctx, old.ID, tb)
}

// RemoveByID deletes the entry with the given ID.
func (s *TimeboxListService) RemoveByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeByID(ctx, id)
}

// ReplaceByID overwrites the entry with the given ID, keeping its position.
// An empty ID on tb keeps the existing ID.
func (s *TimeboxListService) ReplaceByID(ctx context.Context, id string, tb domain.Timebox) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceByID(ctx, id, tb)
}

// at returns the entry at index. Caller holds mu.
func (s *TimeboxListService) at(ctx context.Context, index int) (*domain.Timebox, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %d (list has %d entries)", domain.ErrIndexOutOfRange, index, len(list))
	}
	return list[index], nil
}

func (s *TimeboxListService) removeByID(ctx context.Context, id string) error {
	if err := s.storage.Timeboxes().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove timebox %s: %w", id, err)
	}
	s.log.Debug("timebox removed", "id", id)
	return nil
}

func (s *TimeboxListService) replaceByID(ctx context.Context, id string, tb domain.Timebox) error {
	if tb.ID == "" {
		tb.ID = id
	}
	if err := tb.Validate(); err != nil {
		return err
	}
	if err := s.storage.Timeboxes().Replace(ctx, id, &tb); err != nil {
		return fmt.Errorf("failed to replace timebox %s: %w", id, err)
	}
	s.log.Debug("timebox replaced", "id", id, "new_id", tb.ID)
	return nil
}
