package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/ports"
	"github.com/xvierd/timebox-cli/internal/services"
)

// InlineModel is a compact countdown for `timebox run`. It drives an already
// started ActiveTimeboxService and quits once the run is stopped.
type InlineModel struct {
	ctx    context.Context
	active *services.ActiveTimeboxService

	state     ports.ActiveState
	width     int
	theme     config.ThemeConfig
	record    *domain.RunRecord
	stopped   bool
	lastError error
}

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 40 {
		return 80
	}
	return w
}

// NewInlineModel creates the inline model over a running active service.
func NewInlineModel(ctx context.Context, active *services.ActiveTimeboxService, theme *config.ThemeConfig) InlineModel {
	return InlineModel{
		ctx:    ctx,
		active: active,
		state:  active.State(),
		width:  getTerminalWidth(),
		theme:  resolveTheme(theme),
	}
}

func (m InlineModel) Init() tea.Cmd {
	return tickCmd()
}

func (m InlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.state = m.active.State()
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			_, m.lastError = m.active.TogglePause(m.ctx)
			m.state = m.active.State()
		case "s", "q", "ctrl+c":
			return m.stop()
		}
	}
	return m, nil
}

func (m InlineModel) stop() (tea.Model, tea.Cmd) {
	m.record, m.lastError = m.active.Stop(m.ctx)
	m.state = m.active.State()
	m.stopped = true
	return m, tea.Quit
}

// Record returns the run recorded when the countdown was stopped, if any.
func (m InlineModel) Record() *domain.RunRecord {
	return m.record
}

func (m InlineModel) View() string {
	if m.stopped {
		return ""
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorRunning)).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	paused := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorPaused)).Bold(true)
	overrun := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError)).Bold(true)

	clock := domain.FormatTimeLeft(m.state.Display.TimeLeft)
	var b strings.Builder

	switch {
	case m.state.Run.IsPaused:
		b.WriteString(paused.Render(fmt.Sprintf("  %s  PAUSED", clock)))
	case m.state.Display.Overrun():
		b.WriteString(overrun.Render(fmt.Sprintf("  %s  TIME'S UP", clock)))
	default:
		b.WriteString(accent.Render("  " + clock))
	}
	b.WriteString(dim.Render(fmt.Sprintf("  %s  ·  pauses: %d", m.state.Timebox.Title, m.state.Run.PausesCount)))
	b.WriteString("\n")

	barWidth := m.width - 24
	if barWidth < 20 {
		barWidth = 20
	}
	b.WriteString("  " + renderProgress(m.state.Display.ProgressInPercent, barWidth, 10, m.state.Run.IsPaused, m.theme))
	b.WriteString("\n")

	if m.lastError != nil {
		b.WriteString(overrun.Render("  Error: " + m.lastError.Error()))
		b.WriteString("\n")
	}

	pauseAction := "[p]ause"
	if m.state.Run.IsPaused {
		pauseAction = "[p]resume"
	}
	b.WriteString(dim.Render(fmt.Sprintf("  %s [s]top", pauseAction)))
	b.WriteString("\n")

	return b.String()
}
