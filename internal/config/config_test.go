package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base_url: expected %s, got %s", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.Timeout() != DefaultTimeout {
		t.Errorf("request_timeout: expected %v, got %v", DefaultTimeout, cfg.Timeout())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level: expected info, got %s", cfg.LogLevel)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "base_url: https://share.example.com\nlog_level: debug\nrequest_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://share.example.com" {
		t.Errorf("base_url: got %s", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: got %s", cfg.LogLevel)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("request_timeout: got %v", cfg.Timeout())
	}

	// Environment wins over the file.
	t.Setenv("CIRCLESHARE_BASE_URL", "http://localhost:9999")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("env override: got %s", cfg.BaseURL)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
