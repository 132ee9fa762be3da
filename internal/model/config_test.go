package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Sync.IntervalSec != 8 {
		t.Fatalf("Sync.IntervalSec=%d, want 8", cfg.Sync.IntervalSec)
	}
	if cfg.Remote.Table != "todos" {
		t.Fatalf("Remote.Table=%q, want todos", cfg.Remote.Table)
	}
	if cfg.Reminders.MinLeadSec != 3 {
		t.Fatalf("Reminders.MinLeadSec=%d, want 3", cfg.Reminders.MinLeadSec)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DAYBOOK_REMOTE_DSN", "postgres://example/db")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Remote.DSN != "postgres://example/db" {
		t.Fatalf("Remote.DSN=%q, want env value", cfg.Remote.DSN)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Profile.Nickname = "mina"
	cfg.Profile.Theme = "dark"
	cfg.Profile.DailyReminderTime = "09:00"
	cfg.Sync.IntervalSec = 30

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Profile.Nickname != "mina" || loaded.Profile.Theme != "dark" {
		t.Fatalf("Profile=%+v, want nickname mina theme dark", loaded.Profile)
	}
	if loaded.Sync.IntervalSec != 30 {
		t.Fatalf("Sync.IntervalSec=%d, want 30", loaded.Sync.IntervalSec)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*AppConfig) {}},
		{name: "zero interval", mutate: func(c *AppConfig) { c.Sync.IntervalSec = 0 }, wantErr: true},
		{name: "unknown theme", mutate: func(c *AppConfig) { c.Profile.Theme = "neon" }, wantErr: true},
		{name: "bad reminder time", mutate: func(c *AppConfig) { c.Profile.DailyReminderTime = "25:99" }, wantErr: true},
		{name: "good reminder time", mutate: func(c *AppConfig) { c.Profile.DailyReminderTime = "07:30" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultAppConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateConfig err=%v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResetProfile(t *testing.T) {
	t.Parallel()

	cfg := DefaultAppConfig()
	cfg.Profile = ProfileConfig{Nickname: "x", Theme: "dark", PushEnabled: true}
	cfg.ResetProfile()
	if cfg.Profile != DefaultAppConfig().Profile {
		t.Fatalf("Profile=%+v, want defaults", cfg.Profile)
	}
}
