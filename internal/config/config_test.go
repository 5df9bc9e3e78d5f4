package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
	if cfg.RepositoryKind != RepositoryInMemory {
		t.Errorf("RepositoryKind = %q, want in_memory", cfg.RepositoryKind)
	}
	if cfg.Feasibility.DefaultTimeLimitS != 30 {
		t.Errorf("DefaultTimeLimitS = %d, want 30", cfg.Feasibility.DefaultTimeLimitS)
	}
	if cfg.Feasibility.DefaultMaxIterations != 50 {
		t.Errorf("DefaultMaxIterations = %d, want 50", cfg.Feasibility.DefaultMaxIterations)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
repository_kind = "relational"
sqlite_path = "/var/data/observatory.db"

[analytics]
skip_time_bins_default = true

[feasibility]
default_time_limit_s = 5
default_max_iterations = 10
seed = 42
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RepositoryKind != RepositoryRelational {
		t.Errorf("RepositoryKind = %q, want relational", cfg.RepositoryKind)
	}
	if !cfg.Analytics.SkipTimeBinsDefault {
		t.Error("SkipTimeBinsDefault = false, want true")
	}
	if cfg.Feasibility.DefaultTimeLimitS != 5 || cfg.Feasibility.DefaultMaxIterations != 10 || cfg.Feasibility.Seed != 42 {
		t.Errorf("Feasibility = %+v", cfg.Feasibility)
	}
	// listen_addr and metrics_enabled untouched by the file keep their defaults.
	if cfg.ListenAddr != ":8080" || !cfg.MetricsEnabled {
		t.Errorf("unset keys should keep defaults, got ListenAddr=%q MetricsEnabled=%v", cfg.ListenAddr, cfg.MetricsEnabled)
	}
}

func TestLoad_RejectsUnknownRepositoryKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`repository_kind = "distributed"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid repository_kind should error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml")); err == nil {
		t.Error("Load() on a missing file should error")
	}
}
