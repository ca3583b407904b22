// Package cmd provides the CLI commands for the timebox application.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/adapters/tui"
	"github.com/xvierd/timebox-cli/internal/logger"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool
	configPath string
	debugMode  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timebox",
	Short: "Timebox - a countdown tracker for timeboxed work",
	Long: `Timebox keeps a list of pending timeboxes and runs one of them at a time
as a countdown you can pause, resume and stop.

Run "timebox" with no arguments to open the fullscreen interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("command failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	// PersistentPostRunE does not run when RunE fails.
	_ = cleanupServices()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.timebox/timebox.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.timebox/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug messages to the log file")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Timebox CLI\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

// runTUI opens the fullscreen interface for the bare "timebox" command.
func runTUI(cmd *cobra.Command, args []string) error {
	ctx := setupSignalHandler()
	if err := tui.Run(ctx, app.list, app.active, &app.config.Theme); err != nil {
		return fmt.Errorf("timer error: %w", err)
	}
	return nil
}
