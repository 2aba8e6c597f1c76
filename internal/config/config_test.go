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
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "data/emailbot.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if *cfg.Simulator.DeliveredRate != 0.9 {
		t.Errorf("delivered rate = %v, want 0.9", *cfg.Simulator.DeliveredRate)
	}
	if *cfg.Simulator.OpenRate != 0.2 {
		t.Errorf("open rate = %v, want 0.2", *cfg.Simulator.OpenRate)
	}
	if cfg.Simulator.MaxOpenDelay != 60*time.Second {
		t.Errorf("max open delay = %v, want 60s", cfg.Simulator.MaxOpenDelay)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
database:
  path: /tmp/test.db
simulator:
  delivered_rate: 0.5
  max_open_delay: 5s
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("listen addr = %q, want :9000", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if *cfg.Simulator.DeliveredRate != 0.5 {
		t.Errorf("delivered rate = %v, want 0.5", *cfg.Simulator.DeliveredRate)
	}
	if cfg.Simulator.MaxOpenDelay != 5*time.Second {
		t.Errorf("max open delay = %v, want 5s", cfg.Simulator.MaxOpenDelay)
	}
	// Unset keys keep their defaults
	if *cfg.Simulator.OpenRate != 0.2 {
		t.Errorf("open rate = %v, want default 0.2", *cfg.Simulator.OpenRate)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadExplicitZeroRates(t *testing.T) {
	path := writeConfig(t, `
simulator:
  delivered_rate: 0
  open_rate: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// An explicit zero is a real setting, not a request for the default
	if *cfg.Simulator.DeliveredRate != 0 {
		t.Errorf("delivered rate = %v, want 0", *cfg.Simulator.DeliveredRate)
	}
	if *cfg.Simulator.OpenRate != 0 {
		t.Errorf("open rate = %v, want 0", *cfg.Simulator.OpenRate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EMAILBOT_LISTEN_ADDR", ":7777")
	t.Setenv("EMAILBOT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":7777" {
		t.Errorf("listen addr = %q, want :7777", cfg.Server.ListenAddr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"delivered rate above one", "simulator:\n  delivered_rate: 1.5\n"},
		{"negative open rate", "simulator:\n  open_rate: -0.1\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
