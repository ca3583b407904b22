package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// timeboxForm is a title + minutes form. It backs both the editor of the
// active timebox and the creator of new list entries.
type timeboxForm struct {
	title   textinput.Model
	minutes textinput.Model
	focus   int
}

func newTimeboxForm(tb domain.Timebox, width int) timeboxForm {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "What are you doing?"
	title.CharLimit = 120
	title.SetValue(tb.Title)

	minutes := textinput.New()
	minutes.Prompt = ""
	minutes.Placeholder = "How many minutes?"
	minutes.CharLimit = 8
	minutes.SetValue(formatMinutes(tb.TotalTimeInMinutes()))

	f := timeboxForm{title: title, minutes: minutes}
	f.setWidth(width)
	return f
}

func (f *timeboxForm) setWidth(width int) {
	w := width - 14
	if w < 10 {
		w = 10
	}
	f.title.Width = w
	f.minutes.Width = w
}

// Focus focuses the current field and returns the cursor blink command.
func (f *timeboxForm) Focus() tea.Cmd {
	if f.focus == 0 {
		f.minutes.Blur()
		return f.title.Focus()
	}
	f.title.Blur()
	return f.minutes.Focus()
}

func (f *timeboxForm) Blur() {
	f.title.Blur()
	f.minutes.Blur()
}

// Next moves focus to the other field.
func (f *timeboxForm) Next() tea.Cmd {
	f.focus = 1 - f.focus
	return f.Focus()
}

// Update routes msg to the focused field.
func (f timeboxForm) Update(msg tea.Msg) (timeboxForm, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.minutes, cmd = f.minutes.Update(msg)
	}
	return f, cmd
}

// Title returns the entered title.
func (f timeboxForm) Title() string {
	return f.title.Value()
}

// Minutes parses the entered minutes. An empty field is zero minutes.
func (f timeboxForm) Minutes() (float64, error) {
	raw := strings.TrimSpace(f.minutes.Value())
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidDuration, raw)
	}
	if _, err := domain.MinutesToDuration(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Timebox builds a timebox from the form values.
func (f timeboxForm) Timebox() (domain.Timebox, error) {
	minutes, err := f.Minutes()
	if err != nil {
		return domain.Timebox{}, err
	}
	d, err := domain.MinutesToDuration(minutes)
	if err != nil {
		return domain.Timebox{}, err
	}
	tb := domain.Timebox{Title: strings.TrimSpace(f.Title()), Duration: d}
	return tb, tb.Validate()
}

// View renders the two labelled fields. A disabled form shows plain values.
func (f timeboxForm) View(disabled bool, labelStyle lipgloss.Style) string {
	title, minutes := f.title.View(), f.minutes.View()
	if disabled {
		faint := lipgloss.NewStyle().Faint(true)
		title, minutes = faint.Render(f.title.Value()), faint.Render(f.minutes.Value())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Title:   ")+title,
		labelStyle.Render("Minutes: ")+minutes,
	)
}

func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
