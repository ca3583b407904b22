// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
	"github.com/xvierd/timebox-cli/internal/services"
)

// refreshInterval is how often the UI re-reads the countdown.
const refreshInterval = 100 * time.Millisecond

// renameTitle is the title the list pane's rename key applies.
const renameTitle = "Updated timebox"

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg is sent on every refresh tick.
type tickMsg time.Time

// tickCmd schedules the next refresh tick.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type pane int

const (
	paneActive pane = iota
	paneList
)

// Model is the fullscreen UI: the active timebox on one pane and the pending
// list on the other.
type Model struct {
	ctx    context.Context
	list   *services.TimeboxListService
	active *services.ActiveTimeboxService

	theme config.ThemeConfig
	keys  keyMap
	help  help.Model

	pane     pane
	state    ports.ActiveState
	editor   timeboxForm
	items    []*domain.Timebox
	cursor   int
	creator  timeboxForm
	creating bool

	lastError error
	width     int
	height    int
}

// NewModel creates the fullscreen model over the list and active services.
func NewModel(ctx context.Context, list *services.TimeboxListService, active *services.ActiveTimeboxService, theme *config.ThemeConfig) Model {
	m := Model{
		ctx:    ctx,
		list:   list,
		active: active,
		theme:  resolveTheme(theme),
		keys:   newKeyMap(),
		help:   help.New(),
		pane:   paneActive,
		state:  active.State(),
	}
	m.editor = newTimeboxForm(m.state.Timebox, 40)
	if m.state.IsEditable {
		m.editor.Focus()
	}
	m.reloadList()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.state = m.active.State()
		m.syncKeys()
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.editor.setWidth(m.paneWidth())
		m.creator.setWidth(m.paneWidth())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Tab) {
			return m.switchPane()
		}
		if m.pane == paneList {
			return m.updateList(msg)
		}
		return m.updateActive(msg)
	}
	return m, nil
}

func (m Model) switchPane() (tea.Model, tea.Cmd) {
	if m.pane == paneActive {
		m.pane = paneList
		m.editor.Blur()
		m.reloadList()
		return m, nil
	}
	m.pane = paneActive
	if m.state.IsEditable {
		return m, m.editor.Focus()
	}
	return m, nil
}

func (m Model) updateActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.IsEditable {
		return m.updateEditor(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		_, err := m.active.Edit(m.ctx)
		m.lastError = err
		m.refresh()
		m.editor = newTimeboxForm(m.state.Timebox, m.paneWidth())
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.Start):
		_, m.lastError = m.active.Start(m.ctx)
	case key.Matches(msg, m.keys.Stop):
		_, m.lastError = m.active.Stop(m.ctx)
	case key.Matches(msg, m.keys.Pause):
		_, m.lastError = m.active.TogglePause(m.ctx)
	}
	m.refresh()
	return m, nil
}

// updateEditor handles keys while the active timebox is editable. Every
// change is applied to the container; enter confirms.
func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if _, err := m.editor.Minutes(); err != nil {
			m.lastError = err
			return m, nil
		}
		m.active.Confirm()
		m.editor.Blur()
		m.lastError = nil
		m.refresh()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		return m, m.editor.Next()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.lastError = m.applyEditor()
	m.refresh()
	return m, cmd
}

func (m Model) applyEditor() error {
	if err := m.active.EditTitle(m.editor.Title()); err != nil {
		return err
	}
	minutes, err := m.editor.Minutes()
	if err != nil {
		return err
	}
	return m.active.EditDuration(minutes)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m.updateCreator(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.New):
		m.creating = true
		m.creator = newTimeboxForm(domain.Timebox{}, m.paneWidth())
		return m, m.creator.Focus()
	case key.Matches(msg, m.keys.Delete):
		if tb := m.selected(); tb != nil {
			m.lastError = m.list.RemoveByID(m.ctx, tb.ID)
			m.reloadList()
		}
	case key.Matches(msg, m.keys.Rename):
		if tb := m.selected(); tb != nil {
			renamed := *tb
			renamed.Title = renameTitle
			m.lastError = m.list.ReplaceByID(m.ctx, tb.ID, renamed)
			m.reloadList()
		}
	case key.Matches(msg, m.keys.Load):
		if tb := m.selected(); tb != nil {
			if err := m.active.Load(*tb); err != nil {
				m.lastError = err
				return m, nil
			}
			m.lastError = nil
			m.refresh()
			m.editor = newTimeboxForm(m.state.Timebox, m.paneWidth())
			m.pane = paneActive
			if m.state.IsEditable {
				return m, m.editor.Focus()
			}
		}
	}
	return m, nil
}

func (m Model) updateCreator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.creating = false
		m.lastError = nil
		return m, nil
	case msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		return m, m.creator.Next()
	case msg.Type == tea.KeyEnter:
		tb, err := m.creator.Timebox()
		if err != nil {
			m.lastError = err
			return m, nil
		}
		if _, err := m.list.Create(m.ctx, tb); err != nil {
			m.lastError = err
			return m, nil
		}
		m.creating = false
		m.lastError = nil
		m.reloadList()
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.creator, cmd = m.creator.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	m.state = m.active.State()
	m.syncKeys()
}

func (m *Model) reloadList() {
	items, err := m.list.List(m.ctx)
	if err != nil {
		m.lastError = err
	}
	m.items = items
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.syncKeys()
}

func (m Model) selected() *domain.Timebox {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

// syncKeys enables each run key only in the states it applies to.
func (m *Model) syncKeys() {
	editable := m.state.IsEditable
	running := m.state.Run.IsRunning

	m.keys.Confirm.SetEnabled(editable)
	m.keys.Edit.SetEnabled(!editable)
	m.keys.Start.SetEnabled(!editable && !running)
	m.keys.Stop.SetEnabled(running)
	m.keys.Pause.SetEnabled(running)
	if m.state.Run.IsPaused {
		m.keys.Pause.SetHelp("p", "resume")
	} else {
		m.keys.Pause.SetHelp("p", "pause")
	}

	hasItems := len(m.items) > 0
	m.keys.Delete.SetEnabled(hasItems)
	m.keys.Rename.SetEnabled(hasItems)
	m.keys.Load.SetEnabled(hasItems)
}

func (m Model) paneWidth() int {
	if m.width >= 100 {
		return m.width / 2
	}
	if m.width == 0 {
		return 40
	}
	return m.width
}

func (m Model) timerColor() lipgloss.Color {
	switch {
	case m.state.Display.Overrun():
		return lipgloss.Color(m.theme.ColorError)
	case m.state.Run.IsPaused || !m.state.Run.IsRunning:
		return lipgloss.Color(m.theme.ColorPaused)
	default:
		return lipgloss.Color(m.theme.ColorRunning)
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	active := m.viewActive()
	list := m.viewList()

	var body string
	if m.width >= 100 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, active, list)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, active, list)
	}

	var footer []string
	if m.lastError != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError))
		footer = append(footer, errStyle.Render("Error: "+m.lastError.Error()))
	}
	footer = append(footer, m.help.View(m.currentHelp()))

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{body, ""}, footer...)...)
}

func (m Model) currentHelp() help.KeyMap {
	switch {
	case m.pane == paneList && m.creating:
		return creatorHelp{m.keys}
	case m.pane == paneList:
		return listHelp{m.keys}
	default:
		return activeHelp{m.keys}
	}
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	border := lipgloss.Color(m.theme.ColorHelp)
	if m.pane == p {
		border = lipgloss.Color(m.theme.ColorSelected)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.paneWidth() - 2)
}

func (m Model) viewActive() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	taskStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTimebox))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	inner := m.paneWidth() - 6
	barWidth := (inner - 5) * 4 / 5
	sections := []string{
		titleStyle.Render("Current timebox"),
		"",
		m.editor.View(!m.state.IsEditable, helpStyle),
		"",
		taskStyle.Render(m.state.Timebox.Title),
		renderBigClock(domain.FormatTimeLeft(m.state.Display.TimeLeft), m.timerColor(), inner),
		"",
		renderProgress(m.state.Display.ProgressInPercent, barWidth, inner-5-barWidth, m.state.Run.IsPaused, m.theme),
	}

	status := m.state.Run.State().Label()
	if m.state.IsEditable {
		status = "Editing"
	}
	if m.state.Display.Overrun() && m.state.Run.IsRunning {
		status += " (overrun)"
	}
	sections = append(sections, helpStyle.Render(fmt.Sprintf("%s  ·  Pauses: %d", status, m.state.Run.PausesCount)))

	return m.paneStyle(paneActive).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewList() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	itemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTimebox))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorSelected))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	sections := []string{titleStyle.Render("Pending timeboxes"), ""}

	if m.creating {
		sections = append(sections, m.creator.View(false, helpStyle), "")
	}

	if len(m.items) == 0 {
		sections = append(sections, helpStyle.Render("Nothing pending. Press n to add a timebox."))
	}
	for i, tb := range m.items {
		if i == m.cursor && m.pane == paneList {
			sections = append(sections, selectedStyle.Render("> "+renderListItem(tb)))
			continue
		}
		sections = append(sections, itemStyle.Render("  "+renderListItem(tb)))
	}

	return m.paneStyle(paneList).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
