package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/adapters/git"
	"github.com/xvierd/timebox-cli/internal/adapters/tui"
	"github.com/xvierd/timebox-cli/internal/domain"
)

var runMinutes float64

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [id|#index]",
	Short: "Run a timebox as an inline countdown",
	Long: `Run a pending timebox, or the configured default one, as a compact
countdown in the terminal. Press p to pause or resume and s to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := setupSignalHandler()

		tb, err := app.config.ActiveTimebox()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			found, err := app.list.Resolve(ctx, args[0])
			if err != nil {
				return resolveError(args[0], err)
			}
			tb = *found
		}
		if cmd.Flags().Changed("minutes") {
			d, err := domain.MinutesToDuration(runMinutes)
			if err != nil {
				return err
			}
			tb.Duration = d
		}

		if err := app.active.Load(tb); err != nil {
			return err
		}
		app.active.Confirm()
		if _, err := app.active.Start(ctx); err != nil {
			return fmt.Errorf("failed to start timebox: %w", err)
		}

		out := cmd.OutOrStdout()
		if !jsonOutput {
			fmt.Fprintf(out, "⏱️  %s\n", listLine(&tb))
		}

		rec, err := tui.RunInline(ctx, app.active, &app.config.Theme)
		if err != nil {
			return err
		}

		if jsonOutput {
			data := map[string]interface{}{"stopped": true, "run": nil}
			if rec != nil {
				data["run"] = runData(rec)
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal run: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}

		if rec == nil {
			fmt.Fprintln(out, "Stopped before any time elapsed.")
			return nil
		}
		fmt.Fprintf(out, "⏹️  Stopped after %s of %s (%d pauses)\n",
			domain.FormatTimeLeft(rec.Elapsed), domain.FormatTimeLeft(rec.Planned), rec.PausesCount)
		if rec.Overrun() {
			fmt.Fprintf(out, "   Overran by %s\n", domain.FormatTimeLeft(rec.Elapsed-rec.Planned))
		}
		if rec.GitBranch != "" {
			fmt.Fprintf(out, "   Git: %s (%s)\n", rec.GitBranch, git.ShortCommit(rec.GitCommit))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Float64VarP(&runMinutes, "minutes", "m", 0, "Override the allotted minutes")
}
