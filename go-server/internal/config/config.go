// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
)

const (
	AppName                     = "llms-generator"
	Version                     = "1.4.0"
	DefaultPort                 = "5000"
	DefaultRateLimitMaxRequests = 60
)

type Config struct {
	Port                   string
	BaseURL                string
	SessionSecret          string
	SessionSecretGenerated bool
	DatabaseURL            string
	LogLevel               string
	AppVersion             string
	RateLimitMaxRequests   int
	MaintenanceNote        string
	ConfigFile             string
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 DefaultPort,
		LogLevel:             "info",
		AppVersion:           Version,
		RateLimitMaxRequests: DefaultRateLimitMaxRequests,
	}

	explicit := os.Getenv("LLMSGEN_CONFIG")
	if path := FindConfigFile(explicit); path != "" {
		f, err := LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.applyFile(f)
		cfg.ConfigFile = path
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.SessionSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = hex.EncodeToString(b)
		cfg.SessionSecretGenerated = true
	}

	return cfg, nil
}

func (c *Config) applyFile(f *File) {
	if f.Port != "" {
		c.Port = f.Port
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.SessionSecret != "" {
		c.SessionSecret = f.SessionSecret
	}
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.RateLimitMaxRequests > 0 {
		c.RateLimitMaxRequests = f.RateLimitMaxRequests
	}
	if f.MaintenanceNote != "" {
		c.MaintenanceNote = f.MaintenanceNote
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MAINTENANCE_NOTE"); v != "" {
		c.MaintenanceNote = v
	}
	if v := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: RATE_LIMIT_MAX_REQUESTS=%q", ErrInvalidRateLimit, v)
		}
		c.RateLimitMaxRequests = n
	}
	return nil
}

// SlogLevel maps LogLevel onto slog; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// XDGConfigDir returns the per-user config directory,
// e.g. ~/.config/llms-generator on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
