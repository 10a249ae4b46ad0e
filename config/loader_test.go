package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader(&Options{Paths: []string{t.TempDir()}})

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("expected default mode release, got %q", cfg.Server.Mode)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Allocator.MaxAttempts != 10 {
		t.Errorf("expected default max attempts 10, got %d", cfg.Allocator.MaxAttempts)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  addr: ":9000"
  mode: "debug"
database:
  driver: "sqlite"
  sqlite:
    path: "file::memory:?cache=shared"
allocator:
  max_attempts: 3
log:
  level: "warn"
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(&Options{Paths: []string{dir}})
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("expected mode debug, got %q", cfg.Server.Mode)
	}
	if cfg.Allocator.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", cfg.Allocator.MaxAttempts)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Log.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  addr: ":9000"
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("UNA_SERVER_ADDR", ":7777")
	t.Setenv("UNA_DATABASE_DRIVER", "postgres")

	loader := NewLoader(&Options{Paths: []string{dir}})
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":7777" {
		t.Errorf("expected env to win over file, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected driver postgres from env, got %q", cfg.Database.Driver)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "UNA_DATABASE_DRIVER", value: "oracle"},
		{name: "unknown server mode", key: "UNA_SERVER_MODE", value: "production"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			loader := NewLoader(&Options{Paths: []string{t.TempDir()}})
			if _, err := loader.Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
