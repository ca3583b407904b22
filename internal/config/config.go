// Package config provides configuration management for timebox.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// Config holds all configuration for the timebox application.
type Config struct {
	Active        ActiveConfig       `mapstructure:"active"`
	Timer         TimerConfig        `mapstructure:"timer"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// ActiveConfig holds the timebox the active pane starts with.
type ActiveConfig struct {
	Title   string  `mapstructure:"title"`
	Minutes float64 `mapstructure:"minutes"`
}

// TimerConfig holds countdown settings.
type TimerConfig struct {
	TickInterval Duration `mapstructure:"tick_interval"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds log file settings. An empty path logs to the data directory.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// ThemeConfig holds theme colours.
type ThemeConfig struct {
	ColorRunning        string `mapstructure:"color_running"`
	ColorPaused         string `mapstructure:"color_paused"`
	ColorTitle          string `mapstructure:"color_title"`
	ColorTimebox        string `mapstructure:"color_timebox"`
	ColorSelected       string `mapstructure:"color_selected"`
	ColorHelp           string `mapstructure:"color_help"`
	ColorError          string `mapstructure:"color_error"`
	GradientStart       string `mapstructure:"gradient_start"`
	GradientEnd         string `mapstructure:"gradient_end"`
	PausedGradientStart string `mapstructure:"paused_gradient_start"`
	PausedGradientEnd   string `mapstructure:"paused_gradient_end"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorRunning:        "#7C6FE0",
		ColorPaused:         "#6B7280",
		ColorTitle:          "#6B7280",
		ColorTimebox:        "#A0AEC0",
		ColorSelected:       "#A78BFA",
		ColorHelp:           "#95A5A6",
		ColorError:          "#E06C75",
		GradientStart:       "#7C6FE0",
		GradientEnd:         "#A78BFA",
		PausedGradientStart: "#6B7280",
		PausedGradientEnd:   "#4B5563",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

const defaultDataDir = "~/.timebox"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	active := domain.DefaultActiveTimebox()
	return &Config{
		Active: ActiveConfig{
			Title:   active.Title,
			Minutes: active.TotalTimeInMinutes(),
		},
		Timer: TimerConfig{
			TickInterval: Duration(100 * time.Millisecond),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Theme: DefaultThemeConfig(),
	}
}

// ActiveTimebox builds the active pane's starting timebox.
func (c *Config) ActiveTimebox() (domain.Timebox, error) {
	tb := domain.DefaultActiveTimebox()
	if c.Active.Title != "" {
		tb.Title = c.Active.Title
	}
	d, err := domain.MinutesToDuration(c.Active.Minutes)
	if err != nil {
		return tb, fmt.Errorf("invalid active.minutes: %w", err)
	}
	tb.Duration = d
	return tb, nil
}

// LoadFrom loads the configuration from configPath, creating it with the
// defaults when it does not exist yet.
func LoadFrom(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(DefaultConfig(), configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if cfg.Timer.TickInterval <= 0 {
		cfg.Timer.TickInterval = Duration(100 * time.Millisecond)
	}

	return &cfg, nil
}

// SaveTo writes the configuration as TOML to configPath.
func SaveTo(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")

	v.Set("active.title", cfg.Active.Title)
	v.Set("active.minutes", cfg.Active.Minutes)
	v.Set("timer.tick_interval", cfg.Timer.TickInterval.String())
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("theme.color_running", cfg.Theme.ColorRunning)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_timebox", cfg.Theme.ColorTimebox)
	v.Set("theme.color_selected", cfg.Theme.ColorSelected)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.color_error", cfg.Theme.ColorError)
	v.Set("theme.gradient_start", cfg.Theme.GradientStart)
	v.Set("theme.gradient_end", cfg.Theme.GradientEnd)
	v.Set("theme.paused_gradient_start", cfg.Theme.PausedGradientStart)
	v.Set("theme.paused_gradient_end", cfg.Theme.PausedGradientEnd)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".timebox", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "timebox.db")
}

// GetLogPath returns the path to the log file.
func GetLogPath(cfg *Config) string {
	if cfg.Log.Path != "" {
		return cfg.Log.Path
	}
	return filepath.Join(cfg.Storage.DataDir, "timebox.log")
}

// expandHome resolves a leading ~ against the user's home directory. An
// empty path falls back to the default data directory.
func expandHome(path string) (string, error) {
	if path == "" {
		path = defaultDataDir
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("active.title", defaults.Active.Title)
	v.SetDefault("active.minutes", defaults.Active.Minutes)
	v.SetDefault("timer.tick_interval", defaults.Timer.TickInterval.String())
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.sound", true)
	v.SetDefault("storage.data_dir", defaultDataDir)
	v.SetDefault("log.path", "")
	v.SetDefault("log.debug", false)

	theme := defaults.Theme
	v.SetDefault("theme.color_running", theme.ColorRunning)
	v.SetDefault("theme.color_paused", theme.ColorPaused)
	v.SetDefault("theme.color_title", theme.ColorTitle)
	v.SetDefault("theme.color_timebox", theme.ColorTimebox)
	v.SetDefault("theme.color_selected", theme.ColorSelected)
	v.SetDefault("theme.color_help", theme.ColorHelp)
	v.SetDefault("theme.color_error", theme.ColorError)
	v.SetDefault("theme.gradient_start", theme.GradientStart)
	v.SetDefault("theme.gradient_end", theme.GradientEnd)
	v.SetDefault("theme.paused_gradient_start", theme.PausedGradientStart)
	v.SetDefault("theme.paused_gradient_end", theme.PausedGradientEnd)
}
