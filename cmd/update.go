package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updateTitle   string
	updateMinutes float64
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update [id|#index]",
	Short: "Change a pending timebox",
	Long:  `Change the title and/or the minutes of a pending timebox. It keeps its place in the list.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var title *string
		var minutes *float64
		if cmd.Flags().Changed("title") {
			title = &updateTitle
		}
		if cmd.Flags().Changed("minutes") {
			minutes = &updateMinutes
		}
		if title == nil && minutes == nil {
			return errors.New("nothing to update: pass --title and/or --minutes")
		}

		if _, err := app.list.Resolve(ctx, args[0]); err != nil {
			return resolveError(args[0], err)
		}

		tb, err := app.state.UpdateTimebox(ctx, args[0], title, minutes)
		if err != nil {
			return fmt.Errorf("failed to update timebox: %w", err)
		}

		if jsonOutput {
			jsonData, err := json.MarshalIndent(timeboxData(tb, 0), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal timebox: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Timebox updated: %s\n", listLine(tb))
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "New title")
	updateCmd.Flags().Float64VarP(&updateMinutes, "minutes", "m", 0, "New allotted minutes")
}
