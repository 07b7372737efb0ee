// Package config loads the bot's startup configuration from a yaml file.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Duration is a time.Duration that unmarshals from Go duration strings such
// as "1m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the bot's startup configuration.
type Config struct {
	Token        string   `yaml:"token"`
	GuildID      string   `yaml:"guild_id"`
	DBPath       string   `yaml:"db_path"`
	TickInterval Duration `yaml:"tick_interval"`
	LogLevel     string   `yaml:"log_level"`
}

// Default returns the built-in configuration. The tick interval must stay at
// or below the smallest reminder offset so every reminder is observed before
// its match starts.
func Default() Config {
	return Config{
		DBPath:       "matchbot.db",
		TickInterval: Duration(time.Minute),
		LogLevel:     "info",
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %v: %w", path, err)
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = Duration(time.Minute)
	}

	return cfg, nil
}
