// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

// Config holds the application configuration.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Reschedule RescheduleConfig `toml:"reschedule"`
	Storage    StorageConfig    `toml:"storage"`
	Log        LogConfig        `toml:"log"`
	Watch      WatchConfig      `toml:"watch"`
	UI         UIConfig         `toml:"ui"`
}

// WindowConfig holds the visible schedule range.
type WindowConfig struct {
	Days           int     `toml:"days"`             // e.g., 14
	HourStart      int     `toml:"hour_start"`       // first visible hour, e.g., 9
	HourEnd        int     `toml:"hour_end"`         // exclusive, e.g., 19
	Timezone       string  `toml:"timezone"`         // IANA name; empty means local
	MinRenderHours float64 `toml:"min_render_hours"` // smallest cell height
}

// RescheduleConfig holds auto-adjust and persistence settings.
type RescheduleConfig struct {
	Strategy               string `toml:"strategy"` // "tail" or "earliest"
	GapMinutes             int    `toml:"gap_minutes"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
}

// Auto-adjust strategies.
const (
	StrategyTail     = "tail"
	StrategyEarliest = "earliest"
)

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Env   string `toml:"env"`   // "development" or "production"
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// WatchConfig holds the refresh schedule of the watch command.
type WatchConfig struct {
	Cron string `toml:"cron"` // standard 5-field expression or descriptor like "@every 5m"
}

// UIConfig holds terminal rendering settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Days:           14,
			HourStart:      9,
			HourEnd:        19,
			Timezone:       "",
			MinRenderHours: 0.25,
		},
		Reschedule: RescheduleConfig{
			Strategy:               StrategyTail,
			GapMinutes:             60,
			DefaultDurationMinutes: 60,
			TimeoutSeconds:         10,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Env:   "development",
			Level: "warn",
		},
		Watch: WatchConfig{
			Cron: "@every 5m",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clashmap.db"
	}
	return filepath.Join(home, ".local", "share", "clashmap", "clashmap.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "clashmap", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"CLASHMAP_WINDOW_DAYS", &cfg.Window.Days},
		{"CLASHMAP_HOUR_START", &cfg.Window.HourStart},
		{"CLASHMAP_HOUR_END", &cfg.Window.HourEnd},
		{"CLASHMAP_GAP_MINUTES", &cfg.Reschedule.GapMinutes},
		{"CLASHMAP_TIMEOUT_SECONDS", &cfg.Reschedule.TimeoutSeconds},
	}
	for _, o := range ints {
		v := os.Getenv(o.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", o.name, v)
		}
		*o.dst = n
	}

	if v := os.Getenv("CLASHMAP_TIMEZONE"); v != "" {
		cfg.Window.Timezone = v
	}
	if v := os.Getenv("CLASHMAP_STRATEGY"); v != "" {
		cfg.Reschedule.Strategy = v
	}
	if v := os.Getenv("CLASHMAP_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CLASHMAP_LOG_ENV"); v != "" {
		cfg.Log.Env = v
	}
	if v := os.Getenv("CLASHMAP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CLASHMAP_WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("CLASHMAP_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Window.Days <= 0 {
		return errors.New("window days must be positive")
	}
	if c.Window.HourStart < 0 || c.Window.HourEnd > 24 || c.Window.HourStart >= c.Window.HourEnd {
		return fmt.Errorf("window hours must satisfy 0 <= hour_start < hour_end <= 24, got %d..%d",
			c.Window.HourStart, c.Window.HourEnd)
	}
	if c.Window.MinRenderHours < 0 {
		return errors.New("min_render_hours must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Reschedule.Strategy {
	case StrategyTail, StrategyEarliest:
	default:
		return fmt.Errorf("strategy must be %q or %q, got %q", StrategyTail, StrategyEarliest, c.Reschedule.Strategy)
	}
	if c.Reschedule.GapMinutes < 0 {
		return errors.New("gap_minutes must not be negative")
	}
	if c.Reschedule.DefaultDurationMinutes <= 0 {
		return errors.New("default_duration_minutes must be positive")
	}
	if c.Reschedule.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if _, err := cron.ParseStandard(c.Watch.Cron); err != nil {
		return fmt.Errorf("invalid watch cron %q: %w", c.Watch.Cron, err)
	}
	return nil
}

// Location returns the configured zone, or the local zone when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Window.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Window.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Window.Timezone, err)
	}
	return loc, nil
}

// Gap returns the spacing used by auto-adjust.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.Reschedule.GapMinutes) * time.Minute
}

// DefaultDuration returns the duration assumed for records without one.
func (c *Config) DefaultDuration() time.Duration {
	return time.Duration(c.Reschedule.DefaultDurationMinutes) * time.Minute
}

// Timeout returns the bound on a single store update.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Reschedule.TimeoutSeconds) * time.Second
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
