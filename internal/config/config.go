// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Stream  StreamConfig  `toml:"stream"`
	Gateway GatewayConfig `toml:"gateway"`
	Learn   LearnConfig   `toml:"learning"`
}

// StreamConfig holds the state-stream transport settings.
type StreamConfig struct {
	URL string `toml:"url"`
}

// GatewayConfig holds the tool-execution gateway settings.
type GatewayConfig struct {
	URL string `toml:"url"`
}

// LearnConfig holds the remote learning-cache settings.
type LearnConfig struct {
	RemoteURL string `toml:"remote_url"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			URL: "ws://localhost:8787/stream",
		},
		Gateway: GatewayConfig{
			URL: "http://localhost:8787",
		},
		Learn: LearnConfig{
			RemoteURL: "http://localhost:8787",
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSE_STREAM_URL"); v != "" {
		cfg.Stream.URL = v
	}
	if v := os.Getenv("PULSE_GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv("PULSE_LEARNING_REMOTE_URL"); v != "" {
		cfg.Learn.RemoteURL = v
	}
}

// DataDir returns the path to the pulse data directory (~/.pulse).
func DataDir() (string, error) {
	if v := os.Getenv("PULSE_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pulse"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
