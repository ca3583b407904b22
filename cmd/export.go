package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/domain"
)

var (
	exportFormat string
	exportPeriod string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history",
	Long:  "Export your run history in markdown or CSV format.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "Output format: md or csv")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "week", "Time period: week, month, or all")
}

func runExport(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var since time.Time
	switch exportPeriod {
	case "week":
		since = time.Now().AddDate(0, 0, -7)
	case "month":
		since = time.Now().AddDate(0, -1, 0)
	case "all":
		since = time.Time{}
	default:
		return fmt.Errorf("unknown period %q: use week, month or all", exportPeriod)
	}

	runs, err := app.storage.Runs().FindRecent(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to fetch runs: %w", err)
	}

	switch exportFormat {
	case "csv":
		return exportCSV(w, runs)
	case "md":
		return exportMarkdown(w, runs)
	default:
		return fmt.Errorf("unknown format %q: use md or csv", exportFormat)
	}
}

func exportMarkdown(w io.Writer, runs []*domain.RunRecord) error {
	fmt.Fprintf(w, "# Timebox Run Export\n\n")
	fmt.Fprintf(w, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))

	for _, r := range runs {
		fmt.Fprintf(w, "## %s: %s\n", r.StartedAt.Format("2006-01-02 15:04"), r.Title)
		fmt.Fprintf(w, "- Planned: %s\n", r.Planned.String())
		fmt.Fprintf(w, "- Elapsed: %s\n", r.Elapsed.String())
		if r.Overrun() {
			fmt.Fprintf(w, "- Overrun: %s\n", (r.Elapsed - r.Planned).String())
		}
		fmt.Fprintf(w, "- Pauses: %d\n", r.PausesCount)
		if r.GitBranch != "" {
			fmt.Fprintf(w, "- Git: %s (%s)\n", r.GitBranch, r.GitCommit)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func exportCSV(w io.Writer, runs []*domain.RunRecord) error {
	cw := csv.NewWriter(w)

	_ = cw.Write([]string{
		"started_at", "stopped_at", "timebox_id", "title", "planned_min",
		"elapsed_min", "pauses", "overrun", "git_branch", "git_commit",
	})

	for _, r := range runs {
		_ = cw.Write([]string{
			r.StartedAt.Format(time.RFC3339),
			r.StoppedAt.Format(time.RFC3339),
			r.TimeboxID,
			r.Title,
			strconv.FormatFloat(r.Planned.Minutes(), 'f', 2, 64),
			strconv.FormatFloat(r.Elapsed.Minutes(), 'f', 2, 64),
			strconv.Itoa(r.PausesCount),
			strconv.FormatBool(r.Overrun()),
			r.GitBranch,
			r.GitCommit,
		})
	}
	cw.Flush()
	return cw.Error()
}
