package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stream.URL == "" {
		t.Error("expected a default stream url")
	}
	if cfg.Gateway.URL == "" {
		t.Error("expected a default gateway url")
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[stream]
url = "wss://platform.example/stream"

[gateway]
url = "https://platform.example"

[learning]
remote_url = "https://learn.example"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Stream.URL != "wss://platform.example/stream" {
		t.Errorf("expected custom stream url, got %s", cfg.Stream.URL)
	}
	if cfg.Gateway.URL != "https://platform.example" {
		t.Errorf("expected custom gateway url, got %s", cfg.Gateway.URL)
	}
	if cfg.Learn.RemoteURL != "https://learn.example" {
		t.Errorf("expected custom remote url, got %s", cfg.Learn.RemoteURL)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("PULSE_STREAM_URL", "wss://env.example/stream")
	os.Setenv("PULSE_GATEWAY_URL", "https://env.example")
	defer func() {
		os.Unsetenv("PULSE_STREAM_URL")
		os.Unsetenv("PULSE_GATEWAY_URL")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Stream.URL != "wss://env.example/stream" {
		t.Errorf("expected env override stream url, got %s", cfg.Stream.URL)
	}
	if cfg.Gateway.URL != "https://env.example" {
		t.Errorf("expected env override gateway url, got %s", cfg.Gateway.URL)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("Load() should not fail on a missing file: %v", err)
	}
	if cfg.Stream.URL != DefaultConfig().Stream.URL {
		t.Error("expected defaults for a missing file")
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("PULSE_DATA_DIR", tmpDir)
	defer os.Unsetenv("PULSE_DATA_DIR")

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if dir != tmpDir {
		t.Errorf("expected %s, got %s", tmpDir, dir)
	}
}
