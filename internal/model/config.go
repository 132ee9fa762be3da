package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// RemoteConfig holds the connection to the remote sync backend.
type RemoteConfig struct {
	// DSN is the Postgres connection string. Sync is disabled when empty.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Table is the remote table holding todo snapshots.
	Table string `mapstructure:"table" yaml:"table" validate:"required"`
}

// SyncConfig controls the background sync loop.
type SyncConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec" validate:"min=1"`
}

// ReminderConfig controls local reminder delivery.
type ReminderConfig struct {
	// MinLeadSec is the minimum distance from now at which a reminder fires.
	MinLeadSec int `mapstructure:"min_lead_sec" yaml:"min_lead_sec" validate:"min=0"`
}

// ProfileConfig holds the user-facing settings.
type ProfileConfig struct {
	Nickname string `mapstructure:"nickname" yaml:"nickname"`
	Theme    string `mapstructure:"theme" yaml:"theme" validate:"oneof=light dark"`

	// PushEnabled gates reminder scheduling. When false, scheduling yields no
	// handle, the way a denied notification permission does.
	PushEnabled bool `mapstructure:"push_enabled" yaml:"push_enabled"`

	// DailyReminderTime is "HH:MM" or empty.
	DailyReminderTime string `mapstructure:"daily_reminder_time" yaml:"daily_reminder_time" validate:"omitempty,datetime=15:04"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Debug  bool   `mapstructure:"debug" yaml:"debug"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
	// File, when set, receives log output instead of stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	DatabasePath string         `mapstructure:"database_path" yaml:"database_path" validate:"required"`
	Remote       RemoteConfig   `mapstructure:"remote" yaml:"remote"`
	Sync         SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Reminders    ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
	Profile      ProfileConfig  `mapstructure:"profile" yaml:"profile"`
	Log          LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigDir returns ~/.config/daybook.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "daybook")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/daybook/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		DatabasePath: filepath.Join(DefaultConfigDir(), "daybook.db"),
		Remote: RemoteConfig{
			Table: "todos",
		},
		Sync: SyncConfig{
			IntervalSec: 8,
		},
		Reminders: ReminderConfig{
			MinLeadSec: 3,
		},
		Profile: ProfileConfig{
			Theme: "light",
		},
		Log: LogConfig{
			Format: "console",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with DAYBOOK_ override file values
// (DAYBOOK_REMOTE_DSN for remote.dsn). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("daybook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultAppConfig()
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("remote.dsn", "")
	v.SetDefault("remote.table", def.Remote.Table)
	v.SetDefault("sync.interval_sec", def.Sync.IntervalSec)
	v.SetDefault("reminders.min_lead_sec", def.Reminders.MinLeadSec)
	v.SetDefault("profile.nickname", "")
	v.SetDefault("profile.theme", def.Profile.Theme)
	v.SetDefault("profile.push_enabled", false)
	v.SetDefault("profile.daily_reminder_time", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// isMissingConfig reports whether err means the config file does not exist,
// in which case defaults and environment overrides apply.
func isMissingConfig(err error) bool {
	if _, ok := err.(*os.PathError); ok {
		return true
	}
	_, ok := err.(viper.ConfigFileNotFoundError)
	return ok
}

// ValidateConfig checks field constraints declared in struct tags.
func ValidateConfig(cfg *AppConfig) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database_path", cfg.DatabasePath)
	v.Set("remote", map[string]any{
		"dsn":   cfg.Remote.DSN,
		"table": cfg.Remote.Table,
	})
	v.Set("sync", map[string]any{"interval_sec": cfg.Sync.IntervalSec})
	v.Set("reminders", map[string]any{"min_lead_sec": cfg.Reminders.MinLeadSec})
	v.Set("profile", map[string]any{
		"nickname":            cfg.Profile.Nickname,
		"theme":               cfg.Profile.Theme,
		"push_enabled":        cfg.Profile.PushEnabled,
		"daily_reminder_time": cfg.Profile.DailyReminderTime,
	})
	v.Set("log", map[string]any{
		"debug":  cfg.Log.Debug,
		"format": cfg.Log.Format,
		"file":   cfg.Log.File,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// ResetProfile restores the user-facing settings to their defaults.
func (c *AppConfig) ResetProfile() {
	c.Profile = DefaultAppConfig().Profile
}
