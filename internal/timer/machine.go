// Package timer implements the countdown state machine behind the active
// timebox: Idle, Running and Paused, driven by a cancellable tick source.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Option configures a Machine.
type Option func(*Machine)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock replaces the monotonic clock used to measure elapsed time.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// Machine owns the run state of one countdown. Elapsed time advances by the
// real time measured between ticks, so tick jitter does not accumulate drift.
// At most one tick source is live at any time. All methods are safe for
// concurrent use.
type Machine struct {
	mu       sync.Mutex
	ticks    ports.TickSource
	interval time.Duration
	now      func() time.Time

	snap     domain.RunSnapshot
	lastTick time.Time
	stopTick func()
	// gen identifies the live tick source; ticks from older sources are dropped.
	gen    uint64
	runs   uint64
	closed bool

	onTick func(domain.RunSnapshot)
}

// New creates an idle machine driven by ticks.
func New(ticks ports.TickSource, opts ...Option) *Machine {
	m := &Machine{
		ticks:    ticks,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnTick registers fn to be called with the new snapshot after every
// accepted tick. fn runs on the tick source's goroutine without the machine
// lock held.
func (m *Machine) OnTick(fn func(domain.RunSnapshot)) {
	m.mu.Lock()
	m.onTick = fn
	m.mu.Unlock()
}

// Interval returns the tick period.
func (m *Machine) Interval() time.Duration {
	return m.interval
}

// Start moves Idle to Running against a total duration.
func (m *Machine) Start(total time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrMachineClosed
	}
	if total <= 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDuration, total)
	}
	if m.snap.IsRunning {
		return domain.ErrAlreadyRunning
	}

	m.runs++
	m.snap.IsRunning = true
	m.snap.StartedAt = m.now()
	m.snap.Seq = m.runs
	m.startTicking()
	return nil
}

// Stop returns to Idle from Running or Paused and resets elapsed time and
// the pause count. It returns the snapshot as it was just before the reset.
// Stopping an idle machine leaves it unchanged.
func (m *Machine) Stop() domain.RunSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap.IsRunning && !m.snap.IsPaused {
		m.accumulate(m.now())
	}
	final := m.snap
	m.cancelTicking()
	m.snap = domain.RunSnapshot{}
	return final
}

// TogglePause pauses a running machine or resumes a paused one. Pausing
// cancels the tick source and counts the pause; resuming restarts it.
func (m *Machine) TogglePause() (domain.RunSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.snap, domain.ErrMachineClosed
	}
	if !m.snap.IsRunning {
		return m.snap, domain.ErrNotRunning
	}

	if m.snap.IsPaused {
		m.snap.IsPaused = false
		m.startTicking()
	} else {
		m.accumulate(m.now())
		m.cancelTicking()
		m.snap.IsPaused = true
		m.snap.PausesCount++
	}
	return m.snap, nil
}

// Snapshot returns a copy of the current run state.
func (m *Machine) Snapshot() domain.RunSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Display computes the remaining time and progress against total.
func (m *Machine) Display(total time.Duration) domain.Display {
	return m.Snapshot().Display(total)
}

// Close cancels any live tick source. A closed machine cannot be started.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelTicking()
	m.closed = true
}

// startTicking registers a new tick source. Caller holds mu.
func (m *Machine) startTicking() {
	m.cancelTicking()
	gen := m.gen
	m.lastTick = m.now()
	m.stopTick = m.ticks.Start(m.interval, func() { m.tick(gen) })
}

// cancelTicking releases the live tick source, if any. Caller holds mu.
func (m *Machine) cancelTicking() {
	if m.stopTick != nil {
		m.stopTick()
		m.stopTick = nil
	}
	m.gen++
}

// accumulate adds the time since the last sample. Caller holds mu.
func (m *Machine) accumulate(now time.Time) {
	if d := now.Sub(m.lastTick); d > 0 {
		m.snap.Elapsed += d
	}
	m.lastTick = now
}

func (m *Machine) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.snap.IsRunning || m.snap.IsPaused {
		m.mu.Unlock()
		return
	}
	m.accumulate(m.now())
	snap := m.snap
	fn := m.onTick
	m.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}
