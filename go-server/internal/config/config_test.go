// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLMSGEN_CONFIG", "PORT", "BASE_URL", "SESSION_SECRET", "DATABASE_URL", "LOG_LEVEL", "MAINTENANCE_NOTE", "RATE_LIMIT_MAX_REQUESTS"} {
		setEnv(t, k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:5000" {
		t.Errorf("expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.AppVersion != Version {
		t.Errorf("expected AppVersion=%s, got %s", Version, cfg.AppVersion)
	}
	if cfg.RateLimitMaxRequests != DefaultRateLimitMaxRequests {
		t.Errorf("expected default rate limit, got %d", cfg.RateLimitMaxRequests)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected no database by default, got %s", cfg.DatabaseURL)
	}
}

func TestLoad_GeneratesSessionSecret(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.SessionSecretGenerated || len(cfg.SessionSecret) != 64 {
		t.Errorf("expected a generated 64-char secret, got %q (generated=%v)", cfg.SessionSecret, cfg.SessionSecretGenerated)
	}

	other, _ := Load()
	if other.SessionSecret == cfg.SessionSecret {
		t.Error("generated secrets should differ between loads")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	setEnv(t, "PORT", "8080")
	setEnv(t, "BASE_URL", "https://llms.example.com/")
	setEnv(t, "SESSION_SECRET", "test-secret")
	setEnv(t, "DATABASE_URL", "postgres://test")
	setEnv(t, "LOG_LEVEL", " DEBUG ")
	setEnv(t, "RATE_LIMIT_MAX_REQUESTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.BaseURL != "https://llms.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.BaseURL)
	}
	if cfg.SessionSecret != "test-secret" || cfg.SessionSecretGenerated {
		t.Errorf("expected env session secret, got %q", cfg.SessionSecret)
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("expected DATABASE_URL, got %s", cfg.DatabaseURL)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.RateLimitMaxRequests != 5 {
		t.Errorf("expected rate limit 5, got %d", cfg.RateLimitMaxRequests)
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	clearEnv(t)
	setEnv(t, "RATE_LIMIT_MAX_REQUESTS", "lots")

	_, err := Load()
	if !errors.Is(err, ErrInvalidRateLimit) {
		t.Fatalf("expected ErrInvalidRateLimit, got %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: "7070"
base_url: https://file.example.com
log_level: warn
rate_limit_max_requests: 12
maintenance_note: Back soon
`)
	setEnv(t, "LLMSGEN_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Errorf("expected ConfigFile=%s, got %s", path, cfg.ConfigFile)
	}
	if cfg.Port != "7070" || cfg.BaseURL != "https://file.example.com" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.SlogLevel())
	}
	if cfg.RateLimitMaxRequests != 12 || cfg.MaintenanceNote != "Back soon" {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	clearEnv(t)
	setEnv(t, "LLMSGEN_CONFIG", writeConfig(t, "port: \"7070\"\n"))
	setEnv(t, "PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected env port 9090, got %s", cfg.Port)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	clearEnv(t)
	setEnv(t, "LLMSGEN_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	clearEnv(t)
	setEnv(t, "LLMSGEN_CONFIG", writeConfig(t, "port: [unterminated\n"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestSlogLevel_UnknownIsInfo(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("expected info, got %v", cfg.SlogLevel())
	}
}

func TestLoadConfigFile_NotFound(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestFindConfigFile_Explicit(t *testing.T) {
	path := writeConfig(t, "port: \"1\"\n")
	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
	if got := FindConfigFile(path + ".missing"); got != "" {
		t.Errorf("expected empty for missing explicit path, got %s", got)
	}
}
