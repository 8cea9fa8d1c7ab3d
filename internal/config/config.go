// Package config loads broker configuration from, in increasing
// precedence: built-in defaults, a TOML file, then environment
// variables. Grounded in original_source/src/config.rs's Config/
// DeviceConfig shape and its XDG-based default directory resolution,
// and in BurntSushi/toml as used for TOML loading elsewhere in the
// retrieval pack.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the broker's resolved runtime configuration.
type Config struct {
	// ListenAddr is where the broker's WebSocket acceptor binds.
	ListenAddr string `toml:"listen_addr"`
	// MetricsAddr is where the ambient HTTP surface (/healthz, /metrics,
	// /debug/state) binds.
	MetricsAddr string `toml:"metrics_addr"`
	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
	// LogPretty selects the human-readable console writer.
	LogPretty bool `toml:"log_pretty"`
	// NATSURL, if set, starts the eventbridge default service. Left empty
	// it idles rather than failing startup.
	NATSURL string `toml:"nats_url"`
}

// Default returns the built-in baseline configuration, matching
// original_source's defaults (port 6969) extended with this
// repository's ambient settings.
func Default() Config {
	return Config{
		ListenAddr:  "localhost:6969",
		MetricsAddr: "localhost:6970",
		LogLevel:    "info",
		LogPretty:   false,
		NATSURL:     "",
	}
}

// DefaultDir resolves the configuration directory the way
// original_source/src/config.rs does: $XDG_CONFIG_HOME/zeitop, falling
// back to $HOME/.config/zeitop.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zeitop"), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "zeitop"), nil
	}
	return "", fmt.Errorf("environment variables unset: $XDG_CONFIG_HOME, $HOME")
}

// DefaultPath resolves the default config.toml path under DefaultDir.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load resolves configuration: defaults, then the TOML file at path (if
// it exists — a missing file is not an error, matching an install with
// no config present), then environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("decoding %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("statting %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZEITOP_PORT"); v != "" {
		cfg.ListenAddr = "localhost:" + v
	}
	if v := os.Getenv("ZEITOP_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ZEITOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ZEITOP_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
}
