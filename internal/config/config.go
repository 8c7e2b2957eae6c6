// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package config loads layered configuration with Koanf v2:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file
//  3. Environment variables: CF_-prefixed, highest priority
//
// Example: CF_SERVER_PORT=9090 overrides server.port.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Matching  MatchingConfig  `koanf:"matching"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Storage backend names accepted by StorageConfig.Backend.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// StorageConfig holds pattern library storage settings.
type StorageConfig struct {
	// Backend selects the store implementation: "badger" or "memory".
	Backend string `koanf:"backend"`
	// Path is the BadgerDB directory. Ignored for the memory backend.
	Path string `koanf:"path"`
}

// EmbeddingConfig holds embedding provider settings. The provider is
// optional: with Enabled false, matching scores on discrete features only.
type EmbeddingConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	Model          string        `koanf:"model"`
	Timeout        time.Duration `koanf:"timeout"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Burst          int           `koanf:"burst"`
}

// MatchingConfig holds pattern matching settings.
type MatchingConfig struct {
	// DefaultThreshold applies to patterns created without an explicit
	// similarity threshold.
	DefaultThreshold float64 `koanf:"default_threshold"`
	// MaxRecommendations caps the K a recommendation request may ask for.
	MaxRecommendations int `koanf:"max_recommendations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Backend: "badger",
			Path:    "/data/courseforge",
		},
		Embedding: EmbeddingConfig{
			Enabled:        false,
			URL:            "http://localhost:11434",
			Model:          "nomic-embed-text",
			Timeout:        30 * time.Second,
			RequestsPerSec: 5,
			Burst:          5,
		},
		Matching: MatchingConfig{
			DefaultThreshold:   0.8,
			MaxRecommendations: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks cross-field configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d outside [1,65535]", c.Server.Port)
	}
	switch c.Storage.Backend {
	case BackendBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the badger backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend %q must be badger or memory", c.Storage.Backend)
	}
	if c.Embedding.Enabled {
		if c.Embedding.URL == "" {
			return fmt.Errorf("embedding.url is required when embedding is enabled")
		}
		if c.Embedding.RequestsPerSec <= 0 {
			return fmt.Errorf("embedding.requests_per_sec must be positive, got %v", c.Embedding.RequestsPerSec)
		}
	}
	if c.Matching.DefaultThreshold < 0 || c.Matching.DefaultThreshold > 1 {
		return fmt.Errorf("matching.default_threshold %v outside [0,1]", c.Matching.DefaultThreshold)
	}
	if c.Matching.MaxRecommendations < 1 {
		return fmt.Errorf("matching.max_recommendations must be at least 1, got %d", c.Matching.MaxRecommendations)
	}
	return nil
}
