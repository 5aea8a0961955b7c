package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  name: test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 8094 {
		t.Errorf("Service.Port = %d, want 8094", cfg.Service.Port)
	}
	if cfg.MMA.BaseURL != "https://work.mma.go.kr" {
		t.Errorf("MMA.BaseURL = %q", cfg.MMA.BaseURL)
	}
	if cfg.MMA.Timeout != 15*time.Second {
		t.Errorf("MMA.Timeout = %v, want 15s", cfg.MMA.Timeout)
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Errorf("Redis.Address = %q", cfg.Redis.Address)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
mma:
  relay_url: https://example.com
  timeout: 5s
redis:
  address: redis:6380
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 9000 {
		t.Errorf("Service.Port = %d, want 9000", cfg.Service.Port)
	}
	if cfg.MMA.RelayURL != "https://example.com" {
		t.Errorf("MMA.RelayURL = %q", cfg.MMA.RelayURL)
	}
	if cfg.MMA.Timeout != 5*time.Second {
		t.Errorf("MMA.Timeout = %v, want 5s", cfg.MMA.Timeout)
	}
	if cfg.Redis.Address != "redis:6380" {
		t.Errorf("Redis.Address = %q", cfg.Redis.Address)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_PORT", "9100")
	t.Setenv("MMA_BASE_URL", "https://staging.example.com")
	t.Setenv("REDIS_ADDRESS", "envhost:6379")

	path := writeConfig(t, "service:\n  port: 9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("Service.Port = %d, want env override 9100", cfg.Service.Port)
	}
	if cfg.MMA.BaseURL != "https://staging.example.com" {
		t.Errorf("MMA.BaseURL = %q, want env override", cfg.MMA.BaseURL)
	}
	if cfg.Redis.Address != "envhost:6379" {
		t.Errorf("Redis.Address = %q, want env override", cfg.Redis.Address)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "service:\n  port: 99999\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want validation error")
			}
		})
	}
}
