package tui

// Key-flow tests for Model (fullscreen) and InlineModel (inline). Each test
// drives the model with key messages against real services backed by an
// in-memory database and a manually fired tick source.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/timebox-cli/internal/adapters/storage"
	"github.com/xvierd/timebox-cli/internal/adapters/ticker"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/services"
	"github.com/xvierd/timebox-cli/internal/timer"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func keyPress(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
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

type fixture struct {
	list   *services.TimeboxListService
	active *services.ActiveTimeboxService
	ticks  *ticker.Manual
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("storage.NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	list := services.NewTimeboxListService(store)
	if _, err := list.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	ticks := ticker.NewManual()
	clock := &fakeClock{t: time.Date(2026, 2, 3, 8, 0, 0, 0, time.Local)}
	machine := timer.New(ticks, timer.WithClock(clock.Now))
	active := services.NewActiveTimeboxService(domain.DefaultActiveTimebox(), machine, store, nil)
	t.Cleanup(active.Close)

	return &fixture{list: list, active: active, ticks: ticks, clock: clock}
}

// step advances the clock by n tick intervals, firing the countdown each time.
func (f *fixture) step(n int) {
	for i := 0; i < n; i++ {
		f.clock.Advance(100 * time.Millisecond)
		f.ticks.Fire()
	}
}

func (f *fixture) model() Model {
	m := NewModel(context.Background(), f.list, f.active, nil)
	m.width = 80
	m.height = 40
	return m
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(Model)
	}
	return m, cmd
}

// clearField sends enough backspaces to empty the focused field.
func clearField(m Model, n int) Model {
	for i := 0; i < n; i++ {
		m, _ = press(m, "backspace")
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func titles(items []*domain.Timebox) []string {
	out := make([]string, len(items))
	for i, tb := range items {
		out[i] = tb.Title
	}
	return out
}

// ---------------------------------------------------------------------------
// Fullscreen model
// ---------------------------------------------------------------------------

func TestModel_InitialView(t *testing.T) {
	m := newFixture(t).model()

	if m.pane != paneActive || !m.state.IsEditable {
		t.Fatalf("initial pane = %v, editable = %v", m.pane, m.state.IsEditable)
	}

	view := m.View()
	for _, want := range []string{"Current timebox", "Uczę się CSS!", "Editing", "Pauses: 0", "Pending timeboxes", "Uczę się SASS - 15 min."} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m.width = 0
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before the first resize = %q", got)
	}
}

func TestModel_EditConfirmStartPauseStop(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m = clearField(m, len([]rune("Uczę się CSS!")))
	m, _ = press(m, "Deep work", "down")
	m = clearField(m, 2)
	m, _ = press(m, "1.5")

	state := f.active.State()
	if state.Timebox.Title != "Deep work" || state.Timebox.Duration != 90*time.Second {
		t.Fatalf("editor did not reach the container: %+v", state.Timebox)
	}

	m, _ = press(m, "enter")
	if m.state.IsEditable {
		t.Fatal("enter should confirm the timebox")
	}

	m, _ = press(m, "s")
	if !m.state.Run.IsRunning || f.ticks.Live() != 1 {
		t.Fatalf("s should start the countdown, running = %v", m.state.Run.IsRunning)
	}

	f.step(50)
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.state.Display.MinutesLeft != 1 || m.state.Display.SecondsLeft != 25 {
		t.Errorf("after 5s display = %d:%d, want 1:25", m.state.Display.MinutesLeft, m.state.Display.SecondsLeft)
	}

	m, _ = press(m, "p")
	if !m.state.Run.IsPaused {
		t.Fatal("p should pause")
	}
	if !strings.Contains(m.View(), "Paused") {
		t.Error("View() should show the paused state")
	}
	m, _ = press(m, "p")
	if m.state.Run.IsPaused || m.state.Run.PausesCount != 1 {
		t.Errorf("p should resume, state = %+v", m.state.Run)
	}
	if !strings.Contains(m.View(), "Pauses: 1") {
		t.Error("View() should show the pause counter")
	}

	m, _ = press(m, "x")
	if m.state.Run.IsRunning || m.state.Run.Elapsed != 0 {
		t.Errorf("x should stop and reset, state = %+v", m.state.Run)
	}
	if f.ticks.Live() != 0 {
		t.Error("stop should cancel the tick source")
	}
}

func TestModel_EditModeCapturesRunKeys(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m, _ = press(m, "s", "x", "p")
	if m.state.Run.IsRunning {
		t.Fatal("run keys must not start the countdown while editing")
	}
	if got := f.active.State().Timebox.Title; got != "Uczę się CSS!sxp" {
		t.Errorf("title = %q, want the keys typed into the editor", got)
	}
}

func TestModel_InvalidMinutesBlocksConfirm(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m, _ = press(m, "down")
	m = clearField(m, 2)
	m, _ = press(m, "abc")

	if m.lastError == nil || !errors.Is(m.lastError, domain.ErrInvalidDuration) {
		t.Fatalf("lastError = %v, want ErrInvalidDuration", m.lastError)
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("View() should show the error in the status line")
	}

	m, _ = press(m, "enter")
	if !m.state.IsEditable {
		t.Error("enter with invalid minutes must not confirm")
	}
}

func TestModel_EditResetsRun(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m, _ = press(m, "enter", "s")
	f.step(10)

	m, _ = press(m, "e")
	if !m.state.IsEditable || m.state.Run.IsRunning || m.state.Run.Elapsed != 0 {
		t.Errorf("e should reset into edit mode, state = %+v", m.state)
	}
	if m.editor.Title() != "Uczę się CSS!" {
		t.Errorf("editor title = %q, want the container title", m.editor.Title())
	}
}

func TestModel_StartDisabledWhileRunning(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	if m.keys.Edit.Enabled() || m.keys.Stop.Enabled() || m.keys.Pause.Enabled() {
		t.Error("only confirm applies while editing")
	}

	m, _ = press(m, "enter")
	if !m.keys.Start.Enabled() || !m.keys.Edit.Enabled() || m.keys.Stop.Enabled() {
		t.Error("a confirmed idle timebox can start or edit but not stop")
	}

	m, _ = press(m, "s")
	if m.keys.Start.Enabled() || !m.keys.Stop.Enabled() || !m.keys.Pause.Enabled() {
		t.Error("a running timebox can stop or pause but not start")
	}

	m, _ = press(m, "s")
	if m.lastError != nil || f.ticks.Starts() != 1 {
		t.Errorf("a second start should be ignored, starts = %d, err = %v", f.ticks.Starts(), m.lastError)
	}
}

func TestModel_ListFlows(t *testing.T) {
	f := newFixture(t)
	m := f.model()
	ctx := context.Background()

	m, _ = press(m, "tab")
	if m.pane != paneList {
		t.Fatal("tab should switch to the list pane")
	}
	if m.cursor != 0 || len(m.items) != 3 {
		t.Fatalf("cursor = %d, items = %d", m.cursor, len(m.items))
	}

	m, _ = press(m, "j", "d")
	items, _ := f.list.List(ctx)
	if got := titles(items); len(got) != 2 || got[1] != "Uczę się BEM" {
		t.Fatalf("after delete list = %v", got)
	}

	m, _ = press(m, "e")
	items, _ = f.list.List(ctx)
	if items[1].Title != "Updated timebox" || items[1].Duration != 5*time.Minute || items[1].ID != "c" {
		t.Errorf("rename = %+v", items[1])
	}

	m, _ = press(m, "k", "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped at 0", m.cursor)
	}
}

func TestModel_CreateTimebox(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m, _ = press(m, "tab", "n")
	if !m.creating {
		t.Fatal("n should open the creator form")
	}

	m, _ = press(m, "q")
	if !m.creating {
		t.Fatal("q is typed into the form, not a quit")
	}
	m = clearField(m, 1)

	m, _ = press(m, "enter")
	if !errors.Is(m.lastError, domain.ErrEmptyTitle) || !m.creating {
		t.Fatalf("empty title lastError = %v, creating = %v", m.lastError, m.creating)
	}

	m, _ = press(m, "Read RFC", "down", "backspace", "12", "enter")
	if m.creating || m.lastError != nil {
		t.Fatalf("creating = %v, lastError = %v", m.creating, m.lastError)
	}
	if len(m.items) != 4 || m.items[0].Title != "Read RFC" || m.items[0].Duration != 12*time.Minute {
		t.Errorf("new timebox should be first, got %+v", m.items[0])
	}

	m, _ = press(m, "n", "esc")
	if m.creating {
		t.Error("esc should close the creator")
	}
}

func TestModel_LoadIntoActive(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	m, _ = press(m, "tab", "j", "enter")
	if m.pane != paneActive {
		t.Fatal("enter should switch back to the active pane")
	}
	if m.state.Timebox.Title != "Uczę się SASS" || m.editor.Title() != "Uczę się SASS" {
		t.Errorf("loaded = %q, editor = %q", m.state.Timebox.Title, m.editor.Title())
	}

	m, _ = press(m, "enter", "s", "tab", "enter")
	if !errors.Is(m.lastError, domain.ErrSessionAlreadyActive) {
		t.Errorf("load while running error = %v", m.lastError)
	}
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)
	m := f.model()

	if _, cmd := press(m, "q"); isQuit(cmd) {
		t.Error("q while editing should not quit")
	}
	if _, cmd := press(m, "ctrl+c"); !isQuit(cmd) {
		t.Error("ctrl+c should always quit")
	}
	if _, cmd := press(m, "tab", "q"); !isQuit(cmd) {
		t.Error("q on the list pane should quit")
	}
	if _, cmd := press(m, "enter", "q"); !isQuit(cmd) {
		t.Error("q on a confirmed timebox should quit")
	}
}

// ---------------------------------------------------------------------------
// Inline model
// ---------------------------------------------------------------------------

func startedInline(t *testing.T) (*fixture, InlineModel) {
	t.Helper()
	f := newFixture(t)
	f.active.Confirm()
	if _, err := f.active.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	m := NewInlineModel(context.Background(), f.active, nil)
	m.width = 80
	return f, m
}

func pressInline(m InlineModel, k string) (InlineModel, tea.Cmd) {
	next, cmd := m.Update(keyPress(k))
	return next.(InlineModel), cmd
}

func TestInlineModel_PauseAndStop(t *testing.T) {
	f, m := startedInline(t)

	if view := m.View(); !strings.Contains(view, "20:00") || !strings.Contains(view, "[p]ause") {
		t.Errorf("View() = %q", view)
	}

	f.step(20)
	m, _ = pressInline(m, "p")
	if !m.state.Run.IsPaused || !strings.Contains(m.View(), "PAUSED") || !strings.Contains(m.View(), "[p]resume") {
		t.Errorf("p should pause, view = %q", m.View())
	}

	m, cmd := pressInline(m, "s")
	if !isQuit(cmd) {
		t.Error("s should quit the inline program")
	}
	rec := m.Record()
	if rec == nil || rec.Elapsed != 2*time.Second || rec.PausesCount != 1 {
		t.Errorf("Record() = %+v", rec)
	}
	if m.View() != "" {
		t.Error("a stopped inline model renders nothing")
	}
}

func TestInlineModel_Overrun(t *testing.T) {
	f, m := startedInline(t)
	if err := f.active.Load(domain.Timebox{ID: "x", Title: "x", Duration: time.Second}); err == nil {
		t.Fatal("Load() while running should fail")
	}

	f.step(20*600 + 10)
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(InlineModel)

	if !m.state.Display.Overrun() || !strings.Contains(m.View(), "TIME'S UP") || !strings.Contains(m.View(), "-00:01") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestInlineModel_CtrlCStops(t *testing.T) {
	f, m := startedInline(t)
	f.step(5)

	m, cmd := pressInline(m, "ctrl+c")
	if !isQuit(cmd) || m.Record() == nil {
		t.Error("ctrl+c should stop and record the run")
	}
	if f.active.State().Run.IsRunning {
		t.Error("ctrl+c should stop the countdown")
	}
}
