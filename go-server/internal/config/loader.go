// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = ".llmsgen.yaml"
	xdgConfigFile     = "config.yaml"
)

var (
	ErrConfigNotFound   = errors.New("configuration file not found")
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be a positive integer")
)

// File is the on-disk YAML configuration. Every field is optional.
type File struct {
	Port                 string `yaml:"port"`
	BaseURL              string `yaml:"base_url"`
	SessionSecret        string `yaml:"session_secret"`
	DatabaseURL          string `yaml:"database_url"`
	LogLevel             string `yaml:"log_level"`
	RateLimitMaxRequests int    `yaml:"rate_limit_max_requests"`
	MaintenanceNote      string `yaml:"maintenance_note"`
}

// LoadConfigFile parses the YAML file at path.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile returns the first existing candidate:
// the explicit path, ./.llmsgen.yaml, then the XDG config directory.
// It returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), xdgConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
