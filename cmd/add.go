package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addMinutes float64

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a timebox to the pending list",
	Long:  `Add a new timebox to the front of the pending list.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := strings.Join(args, " ")

		tb, err := app.state.CreateTimebox(ctx, title, addMinutes)
		if err != nil {
			return fmt.Errorf("failed to add timebox: %w", err)
		}

		if jsonOutput {
			jsonData, err := json.MarshalIndent(timeboxData(tb, 1), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal timebox: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Timebox added: %s (ID: %s)\n", listLine(tb), shortID(tb.ID))
		return nil
	},
}

func init() {
	addCmd.Flags().Float64VarP(&addMinutes, "minutes", "m", 25, "Allotted minutes")
}
