package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
listen_addr = "0.0.0.0:7000"
log_level = "debug"
log_pretty = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:7000" || cfg.LogLevel != "debug" || !cfg.LogPretty {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.MetricsAddr != Default().MetricsAddr {
		t.Fatalf("expected unset fields to retain default, got %q", cfg.MetricsAddr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`listen_addr = "0.0.0.0:7000"`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Setenv("ZEITOP_PORT", "9999")
	t.Setenv("ZEITOP_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "localhost:9999" {
		t.Fatalf("expected env override to win, got %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env override to win, got %q", cfg.LogLevel)
	}
}

func TestDefaultDirPrefersXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	t.Setenv("HOME", "/tmp/hometest")

	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/tmp/xdgtest/zeitop" {
		t.Fatalf("got %q", dir)
	}
}

func TestDefaultDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/hometest")

	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/tmp/hometest/.config/zeitop" {
		t.Fatalf("got %q", dir)
	}
}
