package timer

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/timebox-cli/internal/adapters/ticker"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// fakeClock is advanced by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMachine() (*Machine, *ticker.Manual, *fakeClock) {
	ticks := ticker.NewManual()
	clock := newFakeClock()
	return New(ticks, WithClock(clock.Now)), ticks, clock
}

// step advances the clock by one interval and fires the tick source.
func step(ticks *ticker.Manual, clock *fakeClock, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(DefaultInterval)
		ticks.Fire()
	}
}

func TestMachine_InitialState(t *testing.T) {
	m, ticks, _ := newTestMachine()

	snap := m.Snapshot()
	assert.Equal(t, domain.RunStateIdle, snap.State())
	assert.Zero(t, snap.Elapsed)
	assert.Zero(t, snap.PausesCount)
	assert.Equal(t, 0, ticks.Live())
	assert.Equal(t, DefaultInterval, m.Interval())
}

func TestMachine_FiftyTicksOfTwentyMinutes(t *testing.T) {
	m, ticks, clock := newTestMachine()
	total := 20 * time.Minute

	require.NoError(t, m.Start(total))
	step(ticks, clock, 50)

	snap := m.Snapshot()
	assert.Equal(t, 5*time.Second, snap.Elapsed)
	assert.InDelta(t, 5.0, snap.ElapsedTimeInSeconds(), 1e-9)

	d := m.Display(total)
	assert.Equal(t, 19, d.MinutesLeft)
	assert.Equal(t, 55, d.SecondsLeft)
	assert.InDelta(t, 5.0/1200.0*100, d.ProgressInPercent, 1e-9)
}

func TestMachine_StartGuards(t *testing.T) {
	t.Run("second start is rejected without a second tick source", func(t *testing.T) {
		m, ticks, _ := newTestMachine()
		require.NoError(t, m.Start(time.Minute))

		err := m.Start(time.Minute)
		assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
		assert.Equal(t, 1, ticks.Live())
		assert.Equal(t, 1, ticks.Starts())
	})

	t.Run("start while paused is rejected", func(t *testing.T) {
		m, ticks, _ := newTestMachine()
		require.NoError(t, m.Start(time.Minute))
		_, err := m.TogglePause()
		require.NoError(t, err)

		assert.ErrorIs(t, m.Start(time.Minute), domain.ErrAlreadyRunning)
		assert.Equal(t, 0, ticks.Live())
	})

	t.Run("non-positive duration is rejected", func(t *testing.T) {
		for _, total := range []time.Duration{0, -time.Minute} {
			m, ticks, _ := newTestMachine()
			err := m.Start(total)
			assert.ErrorIs(t, err, domain.ErrInvalidDuration)
			assert.False(t, m.Snapshot().IsRunning)
			assert.Equal(t, 0, ticks.Live())
		}
	})
}

func TestMachine_Stop(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Machine, ticks *ticker.Manual, clock *fakeClock)
	}{
		{
			name:  "from idle",
			setup: func(m *Machine, ticks *ticker.Manual, clock *fakeClock) {},
		},
		{
			name: "from running",
			setup: func(m *Machine, ticks *ticker.Manual, clock *fakeClock) {
				_ = m.Start(time.Minute)
				step(ticks, clock, 10)
			},
		},
		{
			name: "from paused with pauses counted",
			setup: func(m *Machine, ticks *ticker.Manual, clock *fakeClock) {
				_ = m.Start(time.Minute)
				step(ticks, clock, 3)
				_, _ = m.TogglePause()
				_, _ = m.TogglePause()
				step(ticks, clock, 3)
				_, _ = m.TogglePause()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ticks, clock := newTestMachine()
			tt.setup(m, ticks, clock)

			m.Stop()

			snap := m.Snapshot()
			assert.Zero(t, snap.Elapsed)
			assert.Zero(t, snap.PausesCount)
			assert.False(t, snap.IsRunning)
			assert.False(t, snap.IsPaused)
			assert.Equal(t, 0, ticks.Live())
		})
	}
}

func TestMachine_StopReturnsFinalSnapshot(t *testing.T) {
	m, ticks, clock := newTestMachine()
	require.NoError(t, m.Start(time.Minute))
	step(ticks, clock, 20)
	_, _ = m.TogglePause()

	final := m.Stop()
	assert.Equal(t, 2*time.Second, final.Elapsed)
	assert.Equal(t, 1, final.PausesCount)
	assert.False(t, final.StartedAt.IsZero())
}

func TestMachine_SeqIdentifiesRun(t *testing.T) {
	m, ticks, clock := newTestMachine()
	assert.Zero(t, m.Snapshot().Seq)

	require.NoError(t, m.Start(time.Minute))
	first := m.Snapshot().Seq
	assert.NotZero(t, first)

	step(ticks, clock, 5)
	_, _ = m.TogglePause()
	_, _ = m.TogglePause()
	assert.Equal(t, first, m.Snapshot().Seq, "pause and resume keep the run")

	assert.Equal(t, first, m.Stop().Seq)
	assert.Zero(t, m.Snapshot().Seq)

	require.NoError(t, m.Start(time.Minute))
	assert.NotEqual(t, first, m.Snapshot().Seq)
}

func TestMachine_TogglePause(t *testing.T) {
	m, ticks, clock := newTestMachine()

	_, err := m.TogglePause()
	assert.ErrorIs(t, err, domain.ErrNotRunning, "pausing while idle must fail")
	assert.False(t, m.Snapshot().IsPaused)

	require.NoError(t, m.Start(time.Minute))
	step(ticks, clock, 10)

	snap, err := m.TogglePause()
	require.NoError(t, err)
	assert.True(t, snap.IsPaused)
	assert.Equal(t, 1, snap.PausesCount)
	assert.Equal(t, 0, ticks.Live())

	// Nothing accumulates while paused, even if a stale tick lands.
	clock.Advance(10 * time.Second)
	ticks.Fire()
	assert.Equal(t, time.Second, m.Snapshot().Elapsed)

	snap, err = m.TogglePause()
	require.NoError(t, err)
	assert.False(t, snap.IsPaused)
	assert.Equal(t, 1, snap.PausesCount, "resuming must not count a pause")
	assert.Equal(t, 1, ticks.Live())

	step(ticks, clock, 5)
	assert.Equal(t, 1500*time.Millisecond, m.Snapshot().Elapsed)
}

func TestMachine_PauseFoldsPartialInterval(t *testing.T) {
	m, ticks, clock := newTestMachine()
	require.NoError(t, m.Start(time.Minute))
	step(ticks, clock, 2)

	clock.Advance(40 * time.Millisecond)
	snap, err := m.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, 240*time.Millisecond, snap.Elapsed)
}

func TestMachine_MeasuresJitteredTicks(t *testing.T) {
	m, ticks, clock := newTestMachine()
	require.NoError(t, m.Start(time.Minute))

	for _, d := range []time.Duration{90, 130, 100, 180} {
		clock.Advance(d * time.Millisecond)
		ticks.Fire()
	}
	assert.Equal(t, 500*time.Millisecond, m.Snapshot().Elapsed)
}

func TestMachine_StaleTickIgnored(t *testing.T) {
	ticks := ticker.NewManual()
	clock := newFakeClock()

	// Capture the tick callback so it can be replayed after cancellation.
	var captured func()
	capture := &capturingTicks{inner: ticks, onStart: func(fn func()) { captured = fn }}
	m := New(capture, WithClock(clock.Now))

	require.NoError(t, m.Start(time.Minute))
	m.Stop()

	clock.Advance(time.Second)
	captured()
	assert.Zero(t, m.Snapshot().Elapsed)
	assert.False(t, m.Snapshot().IsRunning)

	// Restarting must not resurrect the old registration either.
	require.NoError(t, m.Start(time.Minute))
	clock.Advance(time.Second)
	captured()
	assert.Zero(t, m.Snapshot().Elapsed)
}

type capturingTicks struct {
	inner   *ticker.Manual
	onStart func(func())
	once    sync.Once
}

func (c *capturingTicks) Start(interval time.Duration, tick func()) func() {
	c.once.Do(func() { c.onStart(tick) })
	return c.inner.Start(interval, tick)
}

func TestMachine_OnTick(t *testing.T) {
	m, ticks, clock := newTestMachine()
	var seen []time.Duration
	m.OnTick(func(s domain.RunSnapshot) { seen = append(seen, s.Elapsed) })

	require.NoError(t, m.Start(time.Minute))
	step(ticks, clock, 3)

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}, seen)
}

func TestMachine_Close(t *testing.T) {
	m, ticks, clock := newTestMachine()
	require.NoError(t, m.Start(time.Minute))
	step(ticks, clock, 1)

	m.Close()
	m.Close()
	assert.Equal(t, 0, ticks.Live(), "close must release the tick source")

	err := m.Start(time.Minute)
	assert.True(t, errors.Is(err, domain.ErrMachineClosed))
	_, err = m.TogglePause()
	assert.ErrorIs(t, err, domain.ErrMachineClosed)
}

// TestMachine_RandomTransitions drives random start/stop/pause sequences and
// checks the run invariants after every step.
func TestMachine_RandomTransitions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		m, ticks, clock := newTestMachine()
		var lastElapsed time.Duration

		for i := 0; i < 200; i++ {
			prev := m.Snapshot()

			switch rng.Intn(4) {
			case 0:
				_ = m.Start(time.Minute)
			case 1:
				m.Stop()
				snap := m.Snapshot()
				require.Zero(t, snap.Elapsed)
				require.Zero(t, snap.PausesCount)
			case 2:
				after, err := m.TogglePause()
				if prev.IsRunning {
					require.NoError(t, err)
					if prev.IsPaused {
						require.Equal(t, prev.PausesCount, after.PausesCount)
					} else {
						require.Equal(t, prev.PausesCount+1, after.PausesCount)
					}
				} else {
					require.ErrorIs(t, err, domain.ErrNotRunning)
				}
			case 3:
				step(ticks, clock, 1)
				snap := m.Snapshot()
				if prev.IsRunning && !prev.IsPaused {
					require.Equal(t, prev.Elapsed+DefaultInterval, snap.Elapsed)
				} else {
					require.Equal(t, prev.Elapsed, snap.Elapsed)
				}
			}

			snap := m.Snapshot()
			require.False(t, snap.IsPaused && !snap.IsRunning, "paused while stopped")

			want := 0
			if snap.IsRunning && !snap.IsPaused {
				want = 1
			}
			require.Equal(t, want, ticks.Live(), "live tick sources")

			if snap.IsRunning {
				require.GreaterOrEqual(t, snap.Elapsed, lastElapsed)
			}
			lastElapsed = snap.Elapsed
			require.False(t, math.IsNaN(snap.Display(time.Minute).ProgressInPercent))
		}
		m.Close()
		require.Equal(t, 0, ticks.Live())
	}
}
