package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/domain"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's run statistics and recent runs",
	Long:  `Display today's focused time, pauses and overruns, time per timebox over the last week, and the most recent runs.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stats, err := app.state.GetDailyStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		runs, err := app.state.GetRecentRuns(ctx, statsLimit)
		if err != nil {
			return fmt.Errorf("failed to get recent runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			recent := make([]map[string]interface{}, 0, len(runs))
			for _, r := range runs {
				recent = append(recent, runData(r))
			}
			data := map[string]interface{}{
				"today": map[string]interface{}{
					"date":          stats.Date.Format("2006-01-02"),
					"runs":          stats.Runs,
					"total_focused": stats.TotalFocused.String(),
					"pauses":        stats.Pauses,
					"overruns":      stats.Overruns,
				},
				"recent_runs": recent,
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal stats: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}

		fmt.Fprintln(out)
		renderDashboard(out, stats, runs)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 10, "Number of recent runs to show")
}

func runData(r *domain.RunRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":           r.ID,
		"timebox_id":   r.TimeboxID,
		"title":        r.Title,
		"planned":      r.Planned.String(),
		"elapsed":      r.Elapsed.String(),
		"pauses_count": r.PausesCount,
		"overrun":      r.Overrun(),
		"started_at":   r.StartedAt.Format(time.RFC3339),
		"stopped_at":   r.StoppedAt.Format(time.RFC3339),
		"git_branch":   r.GitBranch,
		"git_commit":   r.GitCommit,
	}
}

// titleTotal pairs a timebox title with its focused time for sorting.
type titleTotal struct {
	Title string
	Total time.Duration
	Runs  int
}

func renderDashboard(w io.Writer, stats *domain.DailyStats, runs []*domain.RunRecord) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C6FE0"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	barColor := lipgloss.NewStyle().Foreground(lipgloss.Color("#7C6FE0"))
	overStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))

	// Header
	fmt.Fprintf(w, "  %s\n", titleStyle.Render("Today, "+stats.Date.Format("Mon Jan 2")))
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(strings.Repeat("─", 40)))

	fmt.Fprintf(w, "  Total: %s runs, %s focused, %s pauses, %s overruns\n\n",
		valueStyle.Render(fmt.Sprintf("%d", stats.Runs)),
		valueStyle.Render(formatHours(stats.TotalFocused.Hours())),
		valueStyle.Render(fmt.Sprintf("%d", stats.Pauses)),
		valueStyle.Render(fmt.Sprintf("%d", stats.Overruns)),
	)

	if len(runs) == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No runs recorded in the last 7 days."))
		return
	}

	// Bar chart: focused time per timebox title
	byTitle := map[string]*titleTotal{}
	for _, r := range runs {
		t, ok := byTitle[r.Title]
		if !ok {
			t = &titleTotal{Title: r.Title}
			byTitle[r.Title] = t
		}
		t.Total += r.Elapsed
		t.Runs++
	}
	totals := make([]*titleTotal, 0, len(byTitle))
	for _, t := range byTitle {
		totals = append(totals, t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total == totals[j].Total {
			return totals[i].Title < totals[j].Title
		}
		return totals[i].Total > totals[j].Total
	})

	fmt.Fprintf(w, "  %s\n", dimStyle.Render("Focused time by timebox"))
	maxTotal := totals[0].Total
	maxBarWidth := 30
	for _, t := range totals {
		barWidth := 0
		if maxTotal > 0 {
			barWidth = int(math.Round(float64(t.Total) / float64(maxTotal) * float64(maxBarWidth)))
		}
		if barWidth < 1 && t.Total > 0 {
			barWidth = 1
		}
		fmt.Fprintf(w, "  %s %s %d (%s)\n",
			dimStyle.Render(fmt.Sprintf("%-20s", truncate(t.Title, 20))),
			barColor.Render(buildBar(barWidth)),
			t.Runs,
			formatHours(t.Total.Hours()),
		)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", dimStyle.Render("Recent runs"))
	for _, r := range runs {
		elapsed := domain.FormatTimeLeft(r.Elapsed)
		if r.Overrun() {
			elapsed = overStyle.Render(elapsed)
		}
		fmt.Fprintf(w, "  %s  %s / %s  %s\n",
			dimStyle.Render(r.StartedAt.Format("Jan 2 15:04")),
			elapsed,
			domain.FormatTimeLeft(r.Planned),
			r.Title,
		)
	}
	fmt.Fprintln(w)
}

// buildBar creates a horizontal bar using block characters.
func buildBar(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("█", width)
}

// formatHours formats a float hours value as "Xh Ym".
func formatHours(h float64) string {
	if h < 0.01 {
		return "0m"
	}
	hours := int(h)
	minutes := int(math.Round((h - float64(hours)) * 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
