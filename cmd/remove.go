package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove [id|#index]",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a pending timebox",
	Long:    `Remove a timebox by its ID (a unique prefix is enough) or by its 1-based position, e.g. #2.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		tb, err := app.list.Resolve(ctx, args[0])
		if err != nil {
			return resolveError(args[0], err)
		}

		if err := app.list.RemoveByID(ctx, tb.ID); err != nil {
			return fmt.Errorf("failed to remove timebox: %w", err)
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"removed\": true, \"id\": %q}\n", tb.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Timebox '%s' removed.\n", tb.Title)
		}
		return nil
	},
}

func resolveError(ref string, err error) error {
	switch {
	case errors.Is(err, domain.ErrTimeboxNotFound):
		return fmt.Errorf("timebox not found: %s", ref)
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return fmt.Errorf("no timebox at %s: %w", ref, err)
	case errors.Is(err, domain.ErrAmbiguousID):
		return fmt.Errorf("%s matches more than one timebox: %w", ref, err)
	default:
		return fmt.Errorf("failed to find timebox: %w", err)
	}
}
