package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
token: abc123
guild_id: "42"
db_path: /tmp/bot.db
tick_interval: 30s
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Token != "abc123" {
		t.Fatalf("unexpected token %q", cfg.Token)
	}
	if cfg.GuildID != "42" {
		t.Fatalf("unexpected guild id %q", cfg.GuildID)
	}
	if cfg.DBPath != "/tmp/bot.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.TickInterval.Std() != 30*time.Second {
		t.Fatalf("unexpected tick interval %v", cfg.TickInterval.Std())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "token: abc123\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	defaults := Default()
	if cfg.DBPath != defaults.DBPath {
		t.Fatalf("expected default db path %q, got %q", defaults.DBPath, cfg.DBPath)
	}
	if cfg.TickInterval != defaults.TickInterval {
		t.Fatalf("expected default tick interval, got %v", cfg.TickInterval.Std())
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "tick_interval: soon\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
