// Package config loads config.toml: a flat struct with toml tags, a Load
// that falls back to documented defaults, and a Validate step that rejects
// unrecognized enum values up front rather than deep in a repository
// constructor.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// RepositoryKind selects the backing Repository implementation.
type RepositoryKind string

const (
	RepositoryInMemory  RepositoryKind = "in_memory"
	RepositoryRelational RepositoryKind = "relational"
)

// Config is the full set of recognized options.
type Config struct {
	RepositoryKind RepositoryKind    `toml:"repository_kind"`
	Analytics      AnalyticsConfig   `toml:"analytics"`
	Feasibility    FeasibilityConfig `toml:"feasibility"`
	SQLitePath     string            `toml:"sqlite_path"`
	ListenAddr     string            `toml:"listen_addr"`
	MetricsEnabled bool              `toml:"metrics_enabled"`
}

// AnalyticsConfig holds analytics-related defaults.
type AnalyticsConfig struct {
	SkipTimeBinsDefault bool `toml:"skip_time_bins_default"`
}

// FeasibilityConfig holds feasibility-solver defaults.
type FeasibilityConfig struct {
	DefaultTimeLimitS    int   `toml:"default_time_limit_s"`
	DefaultMaxIterations int   `toml:"default_max_iterations"`
	Seed                 int64 `toml:"seed"`
}

// Default returns the documented default configuration:
// in-memory repository, time-binned analytics enabled, a 30s/50-iteration
// feasibility budget, seed 0.
func Default() Config {
	return Config{
		RepositoryKind: RepositoryInMemory,
		Analytics: AnalyticsConfig{
			SkipTimeBinsDefault: false,
		},
		Feasibility: FeasibilityConfig{
			DefaultTimeLimitS:    30,
			DefaultMaxIterations: 50,
			Seed:                 0,
		},
		SQLitePath:     "scheduler-analytics.db",
		ListenAddr:     ":8080",
		MetricsEnabled: true,
	}
}

// Load reads a TOML file at path, overlaying it on Default(). An empty
// path is not an error and yields Default(); a path that cannot be read or
// decoded, including a file that does not exist, is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unrecognized or out-of-range values.
func (c Config) Validate() error {
	switch c.RepositoryKind {
	case RepositoryInMemory, RepositoryRelational:
	default:
		return fmt.Errorf("config: repository_kind %q must be %q or %q", c.RepositoryKind, RepositoryInMemory, RepositoryRelational)
	}
	if c.Feasibility.DefaultTimeLimitS <= 0 {
		return fmt.Errorf("config: feasibility.default_time_limit_s must be positive, got %d", c.Feasibility.DefaultTimeLimitS)
	}
	if c.Feasibility.DefaultMaxIterations <= 0 {
		return fmt.Errorf("config: feasibility.default_max_iterations must be positive, got %d", c.Feasibility.DefaultMaxIterations)
	}
	return nil
}
