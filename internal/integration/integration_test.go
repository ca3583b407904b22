package integration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/timebox-cli/internal/adapters/storage"
	"github.com/xvierd/timebox-cli/internal/adapters/ticker"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
	"github.com/xvierd/timebox-cli/internal/services"
	"github.com/xvierd/timebox-cli/internal/timer"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// openStorage opens the database at dbPath and closes it with the test.
func openStorage(t *testing.T, dbPath string) ports.Storage {
	t.Helper()

	store, err := storage.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type app struct {
	store  ports.Storage
	list   *services.TimeboxListService
	active *services.ActiveTimeboxService
	state  *services.StateService
	ticks  *ticker.Manual
	clock  *clock
}

// newApp wires the services the way the CLI does, with a manual tick source.
func newApp(t *testing.T, store ports.Storage) *app {
	t.Helper()

	list := services.NewTimeboxListService(store)
	_, err := list.Seed(context.Background())
	require.NoError(t, err)

	ticks := ticker.NewManual()
	c := &clock{t: time.Now()}
	machine := timer.New(ticks, timer.WithClock(c.Now))
	active := services.NewActiveTimeboxService(domain.DefaultActiveTimebox(), machine, store, nil)
	t.Cleanup(active.Close)

	state := services.NewStateService(store, list)
	state.SetActiveService(active)

	return &app{store: store, list: list, active: active, state: state, ticks: ticks, clock: c}
}

func (a *app) step(n int) {
	for i := 0; i < n; i++ {
		a.clock.Advance(100 * time.Millisecond)
		a.ticks.Fire()
	}
}

func titles(tbs []*domain.Timebox) []string {
	out := make([]string, 0, len(tbs))
	for _, tb := range tbs {
		out = append(out, tb.Title)
	}
	return out
}

func TestPendingListSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "timebox.db")

	first := newApp(t, openStorage(t, dbPath))
	_, err := first.state.CreateTimebox(ctx, "Read RFC", 12)
	require.NoError(t, err)
	require.NoError(t, first.list.RemoveByID(ctx, "c"))
	require.NoError(t, first.store.Close())

	second := newApp(t, openStorage(t, dbPath))
	seeded, err := second.list.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "seed entries must only be inserted once per database")

	tbs, err := second.list.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read RFC", "Uczę się CSS in JS", "Uczę się SASS"}, titles(tbs))
	assert.Equal(t, 12*time.Minute, tbs[0].Duration)
}

func TestRunLifecycleIsRecorded(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, openStorage(t, filepath.Join(t.TempDir(), "timebox.db")))

	tb, err := a.list.Resolve(ctx, "#2")
	require.NoError(t, err)
	require.Equal(t, "Uczę się SASS", tb.Title)

	require.NoError(t, a.active.Load(*tb))
	a.active.Confirm()
	_, err = a.active.Start(ctx)
	require.NoError(t, err)

	a.step(30)
	state, err := a.active.TogglePause(ctx)
	require.NoError(t, err)
	assert.True(t, state.Run.IsPaused)

	// Paused time does not count.
	a.step(10)
	_, err = a.active.TogglePause(ctx)
	require.NoError(t, err)
	a.step(10)

	state = a.active.State()
	assert.Equal(t, 4*time.Second, state.Run.Elapsed)
	assert.Equal(t, "14:56", domain.FormatTimeLeft(state.Display.TimeLeft))

	rec, err := a.state.StopActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "b", rec.TimeboxID)
	assert.Equal(t, 4*time.Second, rec.Elapsed)
	assert.Equal(t, 1, rec.PausesCount)
	assert.False(t, rec.Overrun())

	stopped := a.active.State()
	assert.False(t, stopped.Run.IsRunning)
	assert.Zero(t, stopped.Run.Elapsed)

	runs, err := a.state.GetRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rec.ID, runs[0].ID)

	stats, err := a.state.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 1, stats.Pauses)
	assert.Equal(t, 4*time.Second, stats.TotalFocused)
}

func TestOverrunFiresExpireOnce(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, openStorage(t, filepath.Join(t.TempDir(), "timebox.db")))

	var expired []string
	a.active.OnExpire(func(tb domain.Timebox) { expired = append(expired, tb.Title) })

	minutes := 0.05
	title := "Sprint"
	_, err := a.state.EditActive(ctx, &title, &minutes)
	require.NoError(t, err)
	a.active.Confirm()
	_, err = a.state.StartActive(ctx)
	require.NoError(t, err)

	a.step(50)
	state := a.active.State()
	assert.True(t, state.Display.Overrun())
	assert.Equal(t, "-00:02", domain.FormatTimeLeft(state.Display.TimeLeft))
	assert.Equal(t, []string{"Sprint"}, expired)

	rec, err := a.active.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Overrun())

	stats, err := a.state.GetDailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Overruns)
}
