package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit the default timebox and notifications",
	Long:  `Interactively configure the timebox the active pane starts with, the countdown tick interval and desktop notifications.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		cfg := app.config

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Config file: %s\n", configPath)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Current configuration:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    Default timebox:  %s - %s min.\n", cfg.Active.Title, strconv.FormatFloat(cfg.Active.Minutes, 'f', -1, 64))
		fmt.Fprintf(out, "    Tick interval:    %s\n", cfg.Timer.TickInterval)
		fmt.Fprintf(out, "    Notifications:    %s\n", notificationLabel(cfg))
		fmt.Fprintf(out, "    Data directory:   %s\n", cfg.Storage.DataDir)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  What would you like to change?")
		fmt.Fprintln(out, "    [a] Edit the default timebox")
		fmt.Fprintln(out, "    [t] Edit the tick interval")
		fmt.Fprintln(out, "    [n] Change notifications")
		fmt.Fprintln(out, "    [q] Quit without saving")
		fmt.Fprint(out, "  Choose: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(strings.ToLower(choice))

		switch choice {
		case "a":
			return editActive(reader, out, cfg)
		case "t":
			return editTick(reader, out, cfg)
		case "n":
			return editNotifications(reader, out, cfg)
		case "q", "":
			fmt.Fprintln(out, "  No changes made.")
			return nil
		default:
			return fmt.Errorf("invalid choice %q", choice)
		}
	},
}

func prompt(reader *bufio.Reader, out io.Writer, label, current string) string {
	fmt.Fprintf(out, "  %s [%s]: ", label, current)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func editActive(reader *bufio.Reader, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "\n  Editing the default timebox")

	title := prompt(reader, out, "Title", cfg.Active.Title)
	if title == "" {
		title = cfg.Active.Title
	}

	minutes := cfg.Active.Minutes
	if input := prompt(reader, out, "Minutes", strconv.FormatFloat(minutes, 'f', -1, 64)); input != "" {
		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", input, err)
		}
		if _, err := domain.MinutesToDuration(parsed); err != nil {
			return err
		}
		minutes = parsed
	}

	cfg.Active.Title = title
	cfg.Active.Minutes = minutes
	if err := config.SaveTo(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n  Saved: %s - %s min.\n", title, strconv.FormatFloat(minutes, 'f', -1, 64))
	return nil
}

func editTick(reader *bufio.Reader, out io.Writer, cfg *config.Config) error {
	input := prompt(reader, out, "Tick interval", cfg.Timer.TickInterval.String())
	if input == "" {
		fmt.Fprintln(out, "  No changes made.")
		return nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", input, err)
	}
	if d <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}

	cfg.Timer.TickInterval = config.Duration(d)
	if err := config.SaveTo(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n  Saved: tick interval %s\n", cfg.Timer.TickInterval)
	return nil
}

func editNotifications(reader *bufio.Reader, out io.Writer, cfg *config.Config) error {
	fmt.Fprintf(out, "\n  Current notifications: %s\n\n", notificationLabel(cfg))
	fmt.Fprintln(out, "    [1] Off")
	fmt.Fprintln(out, "    [2] On (visual only)")
	fmt.Fprintln(out, "    [3] On (with sound)")
	fmt.Fprint(out, "  Choose: ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	switch choice {
	case "1":
		cfg.Notifications.Enabled = false
		cfg.Notifications.Sound = false
	case "2":
		cfg.Notifications.Enabled = true
		cfg.Notifications.Sound = false
	case "3":
		cfg.Notifications.Enabled = true
		cfg.Notifications.Sound = true
	default:
		fmt.Fprintln(out, "  No changes made.")
		return nil
	}

	if err := config.SaveTo(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n  Saved: notifications %s\n", notificationLabel(cfg))
	return nil
}

func notificationLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "off"
	}
	if cfg.Notifications.Sound {
		return "on (with sound)"
	}
	return "on"
}
