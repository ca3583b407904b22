package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/logger"
	"github.com/xvierd/timebox-cli/internal/ports"
	"github.com/xvierd/timebox-cli/internal/timer"
)

// ActiveTimeboxService owns the active timebox, its edit mode and the
// countdown that runs it.
type ActiveTimeboxService struct {
	mu       sync.Mutex
	timebox  domain.Timebox
	editable bool
	machine  *timer.Machine

	storage     ports.Storage
	gitDetector ports.GitDetector
	workingDir  string
	now         func() time.Time

	onExpire func(domain.Timebox)
	expired  bool

	log *slog.Logger
}

// NewActiveTimeboxService creates the container in edit mode around tb.
// storage and gitDetector may be nil; runs are then not recorded or carry no
// git context.
func NewActiveTimeboxService(tb domain.Timebox, machine *timer.Machine, storage ports.Storage, gitDetector ports.GitDetector) *ActiveTimeboxService {
	s := &ActiveTimeboxService{
		timebox:     tb,
		editable:    true,
		machine:     machine,
		storage:     storage,
		gitDetector: gitDetector,
		now:         time.Now,
		log:         logger.ComponentLogger("active"),
	}
	machine.OnTick(s.handleTick)
	return s
}

// SetWorkingDir sets the directory git context is detected from.
func (s *ActiveTimeboxService) SetWorkingDir(dir string) {
	s.mu.Lock()
	s.workingDir = dir
	s.mu.Unlock()
}

// OnExpire registers fn to be called once per run, the first time the
// remaining time reaches zero. fn runs on the tick goroutine.
func (s *ActiveTimeboxService) OnExpire(fn func(domain.Timebox)) {
	s.mu.Lock()
	s.onExpire = fn
	s.mu.Unlock()
}

// State returns the observable state of the container.
func (s *ActiveTimeboxService) State() ports.ActiveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *ActiveTimeboxService) stateLocked() ports.ActiveState {
	snap := s.machine.Snapshot()
	return ports.ActiveState{
		Timebox:    s.timebox,
		IsEditable: s.editable,
		Run:        snap,
		Display:    snap.Display(s.timebox.Duration),
	}
}

// EditTitle changes the title while in edit mode. An empty title is accepted
// as an in-progress form value.
func (s *ActiveTimeboxService) EditTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.editable {
		return domain.ErrTimeboxLocked
	}
	s.timebox.Title = title
	return nil
}

// EditDuration changes the allotted minutes while in edit mode.
func (s *ActiveTimeboxService) EditDuration(minutes float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.editable {
		return domain.ErrTimeboxLocked
	}
	d, err := domain.MinutesToDuration(minutes)
	if err != nil {
		return err
	}
	s.timebox.Duration = d
	return nil
}

// Confirm leaves edit mode. It is a no-op when already locked.
func (s *ActiveTimeboxService) Confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editable {
		s.editable = false
		s.log.Debug("timebox confirmed", "title", s.timebox.Title, "duration", s.timebox.Duration)
	}
}

// Edit enters edit mode. A countdown in progress is stopped and reset, and the
// interrupted run is recorded. It is a no-op when already editable.
func (s *ActiveTimeboxService) Edit(ctx context.Context) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editable {
		return nil, nil
	}
	s.editable = true

	snap := s.machine.Stop()
	s.log.Debug("edit mode entered", "interrupted", snap.IsRunning)
	return s.record(ctx, snap)
}

// Load replaces the active timebox with a copy of tb. It is rejected while a
// countdown is in progress.
func (s *ActiveTimeboxService) Load(tb domain.Timebox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Snapshot().IsRunning {
		return domain.ErrSessionAlreadyActive
	}
	s.timebox = tb
	return nil
}

// Start begins the countdown against the current duration. It is rejected in
// edit mode.
func (s *ActiveTimeboxService) Start(ctx context.Context) (ports.ActiveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editable {
		return s.stateLocked(), domain.ErrTimeboxEditable
	}
	if err := s.machine.Start(s.timebox.Duration); err != nil {
		return s.stateLocked(), err
	}
	s.expired = false

	s.log.Info("timebox started", "title", s.timebox.Title, "duration", s.timebox.Duration)
	return s.stateLocked(), nil
}

// TogglePause pauses a running countdown or resumes a paused one.
func (s *ActiveTimeboxService) TogglePause(ctx context.Context) (ports.ActiveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.machine.TogglePause()
	if err != nil {
		return s.stateLocked(), err
	}

	s.log.Debug("pause toggled", "paused", snap.IsPaused, "pauses", snap.PausesCount)
	return s.stateLocked(), nil
}

// Stop ends the countdown and resets it. A run with elapsed time is recorded
// and returned; stopping an idle countdown returns nil.
func (s *ActiveTimeboxService) Stop(ctx context.Context) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.machine.Stop()
	if snap.IsRunning {
		s.log.Info("timebox stopped", "title", s.timebox.Title, "elapsed", snap.Elapsed)
	}
	return s.record(ctx, snap)
}

// Close releases the countdown's tick source.
func (s *ActiveTimeboxService) Close() {
	s.machine.Close()
}

// record stores a run built from the final snapshot. Caller holds mu.
func (s *ActiveTimeboxService) record(ctx context.Context, snap domain.RunSnapshot) (*domain.RunRecord, error) {
	if snap.Elapsed <= 0 {
		return nil, nil
	}

	rec := domain.NewRunRecord(s.timebox, snap, s.now())

	if s.gitDetector != nil && s.gitDetector.IsAvailable() {
		info, err := s.gitDetector.Detect(ctx, s.workingDir)
		if err == nil && info != nil {
			rec.SetGitContext(info.Branch, info.Commit)
		}
	}

	if s.storage == nil {
		return rec, nil
	}
	if err := s.storage.Runs().Save(ctx, rec); err != nil {
		s.log.Error("failed to record run", "error", err)
		return rec, fmt.Errorf("failed to record run: %w", err)
	}
	return rec, nil
}

// handleTick runs after the machine has released its lock, so snap may come
// from a run that has since been stopped or replaced; such ticks are ignored.
func (s *ActiveTimeboxService) handleTick(snap domain.RunSnapshot) {
	s.mu.Lock()
	if snap.Seq == 0 || snap.Seq != s.machine.Snapshot().Seq {
		s.mu.Unlock()
		return
	}
	tb := s.timebox
	fire := !s.expired && snap.Display(tb.Duration).TimeLeft <= 0
	if fire {
		s.expired = true
	}
	fn := s.onExpire
	s.mu.Unlock()

	if fire {
		s.log.Info("timebox expired", "title", tb.Title)
		if fn != nil {
			fn(tb)
		}
	}
}
