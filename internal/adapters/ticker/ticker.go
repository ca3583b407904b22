// Package ticker provides tick sources for the countdown state machine.
package ticker

import (
	"sync"
	"time"

	"github.com/xvierd/timebox-cli/internal/ports"
)

// Source implements ports.TickSource with a time.Ticker per registration.
type Source struct{}

// New creates a wall-clock tick source.
func New() *Source {
	return &Source{}
}

// Ensure Source implements ports.TickSource.
var _ ports.TickSource = (*Source)(nil)

// Start runs tick on its own goroutine every interval until stop is called.
func (s *Source) Start(interval time.Duration, tick func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				tick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Manual is a tick source fired explicitly by its owner. It lets callers
// step a countdown deterministically.
type Manual struct {
	mu     sync.Mutex
	next   int
	live   map[int]func()
	starts int
}

// NewManual creates a manual tick source.
func NewManual() *Manual {
	return &Manual{live: make(map[int]func())}
}

// Ensure Manual implements ports.TickSource.
var _ ports.TickSource = (*Manual)(nil)

// Start registers tick until the returned stop function is called.
func (m *Manual) Start(_ time.Duration, tick func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.starts++
	m.live[id] = tick

	return func() {
		m.mu.Lock()
		delete(m.live, id)
		m.mu.Unlock()
	}
}

// Fire invokes every live registration once.
func (m *Manual) Fire() {
	m.mu.Lock()
	ticks := make([]func(), 0, len(m.live))
	for _, fn := range m.live {
		ticks = append(ticks, fn)
	}
	m.mu.Unlock()

	for _, fn := range ticks {
		fn()
	}
}

// Live returns the number of registrations not yet stopped.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Starts returns how many registrations were ever made.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}
