package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// renderListItem renders one pending list entry.
func renderListItem(tb *domain.Timebox) string {
	return fmt.Sprintf("%s - %s min.", tb.Title, formatMinutes(tb.TotalTimeInMinutes()))
}

// renderProgress draws the progress bar for an unclamped percentage. Past
// 100% the bar is full and the overrun is drawn after it in the error colour,
// up to extra cells.
func renderProgress(percent float64, width, extra int, paused bool, theme config.ThemeConfig) string {
	if width < 10 {
		width = 10
	}

	var bar progress.Model
	if paused {
		bar = progress.New(progress.WithGradient(theme.PausedGradientStart, theme.PausedGradientEnd), progress.WithoutPercentage())
	} else {
		bar = progress.New(progress.WithGradient(theme.GradientStart, theme.GradientEnd), progress.WithoutPercentage())
	}
	bar.Width = width

	cells := domain.ProgressBarWidth(percent, width)
	filled := cells
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	out := bar.ViewAs(float64(filled) / float64(width))

	if over := cells - width; over > 0 && extra > 0 {
		if over > extra {
			over = extra
		}
		out += lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorError)).Render(strings.Repeat("█", over))
	}
	return out + fmt.Sprintf(" %3.0f%%", percent)
}
