package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xvierd/timebox-cli/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Active.Title != "Uczę się CSS!" {
		t.Errorf("Active.Title = %q", cfg.Active.Title)
	}
	if cfg.Active.Minutes != 20 {
		t.Errorf("Active.Minutes = %v, want 20", cfg.Active.Minutes)
	}
	if time.Duration(cfg.Timer.TickInterval) != 100*time.Millisecond {
		t.Errorf("Timer.TickInterval = %v, want 100ms", cfg.Timer.TickInterval)
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should default to enabled")
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if time.Duration(d) != 90*time.Second {
		t.Errorf("UnmarshalText() = %v, want 1m30s", d)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText() should reject invalid durations")
	}

	text, _ := Duration(250 * time.Millisecond).MarshalText()
	if string(text) != "250ms" {
		t.Errorf("MarshalText() = %q, want 250ms", text)
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	if cfg.Active.Minutes != 20 {
		t.Errorf("Active.Minutes = %v, want 20", cfg.Active.Minutes)
	}
	if time.Duration(cfg.Timer.TickInterval) != 100*time.Millisecond {
		t.Errorf("Timer.TickInterval = %v, want 100ms", cfg.Timer.TickInterval)
	}
	if strings.HasPrefix(cfg.Storage.DataDir, "~") {
		t.Errorf("DataDir not expanded: %q", cfg.Storage.DataDir)
	}
}

func TestLoadFrom_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[active]
title = "Write tests"
minutes = 7.5

[timer]
tick_interval = "250ms"

[notifications]
enabled = false

[storage]
data_dir = "` + dir + `"

[log]
debug = true

[theme]
color_running = "#FFFFFF"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Active.Title != "Write tests" || cfg.Active.Minutes != 7.5 {
		t.Errorf("Active = %+v", cfg.Active)
	}
	if time.Duration(cfg.Timer.TickInterval) != 250*time.Millisecond {
		t.Errorf("Timer.TickInterval = %v, want 250ms", cfg.Timer.TickInterval)
	}
	if cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = true, want false")
	}
	if !cfg.Log.Debug {
		t.Error("Log.Debug = false, want true")
	}
	if cfg.Theme.ColorRunning != "#FFFFFF" {
		t.Errorf("Theme.ColorRunning = %q", cfg.Theme.ColorRunning)
	}
	if cfg.Theme.ColorPaused != DefaultThemeConfig().ColorPaused {
		t.Errorf("unset theme colour should keep its default, got %q", cfg.Theme.ColorPaused)
	}
	if GetDBPath(cfg) != filepath.Join(dir, "timebox.db") {
		t.Errorf("GetDBPath() = %q", GetDBPath(cfg))
	}
	if GetLogPath(cfg) != filepath.Join(cfg.Storage.DataDir, "timebox.log") {
		t.Errorf("GetLogPath() = %q", GetLogPath(cfg))
	}

	tb, err := cfg.ActiveTimebox()
	if err != nil {
		t.Fatalf("ActiveTimebox() error = %v", err)
	}
	if tb.Title != "Write tests" || tb.Duration != 450*time.Second {
		t.Errorf("ActiveTimebox() = %+v", tb)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Active.Title = "Round trip"
	cfg.Timer.TickInterval = Duration(time.Second)
	cfg.Storage.DataDir = t.TempDir()

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Active.Title != "Round trip" {
		t.Errorf("Active.Title = %q", loaded.Active.Title)
	}
	if time.Duration(loaded.Timer.TickInterval) != time.Second {
		t.Errorf("Timer.TickInterval = %v, want 1s", loaded.Timer.TickInterval)
	}
}

func TestActiveTimebox_InvalidMinutes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Active.Minutes = -1

	if _, err := cfg.ActiveTimebox(); !errors.Is(err, domain.ErrInvalidDuration) {
		t.Errorf("ActiveTimebox() error = %v, want ErrInvalidDuration", err)
	}
}

func TestGetLogPath_Explicit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Path = "/var/log/timebox.log"
	if GetLogPath(cfg) != "/var/log/timebox.log" {
		t.Errorf("GetLogPath() = %q", GetLogPath(cfg))
	}
}
