package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/domain"
)

var listSearch string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending timeboxes",
	Long:  `List the pending timeboxes in order. Use --search to fuzzy-match titles.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var (
			timeboxes []*domain.Timebox
			err       error
		)
		if listSearch != "" {
			timeboxes, err = app.list.Search(ctx, listSearch)
		} else {
			timeboxes, err = app.list.List(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list timeboxes: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			items := make([]map[string]interface{}, 0, len(timeboxes))
			for i, tb := range timeboxes {
				items = append(items, timeboxData(tb, i+1))
			}
			data := map[string]interface{}{
				"timeboxes": items,
				"count":     len(items),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal timeboxes: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}

		if len(timeboxes) == 0 {
			fmt.Fprintln(out, "No pending timeboxes.")
			return nil
		}

		fmt.Fprintf(out, "📋 Pending timeboxes (%d):\n\n", len(timeboxes))
		for i, tb := range timeboxes {
			fmt.Fprintf(out, "#%-3d %s (ID: %s)\n", i+1, listLine(tb), shortID(tb.ID))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Fuzzy-match titles")
}

// listLine renders a timebox the way the pending list shows it.
func listLine(tb *domain.Timebox) string {
	return fmt.Sprintf("%s - %s min.", tb.Title, strconv.FormatFloat(tb.TotalTimeInMinutes(), 'f', -1, 64))
}

// timeboxData is the JSON form of a timebox. index is its 1-based list
// position, omitted when zero.
func timeboxData(tb *domain.Timebox, index int) map[string]interface{} {
	data := map[string]interface{}{
		"id":      tb.ID,
		"title":   tb.Title,
		"minutes": tb.TotalTimeInMinutes(),
	}
	if index > 0 {
		data["index"] = index
	}
	return data
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
