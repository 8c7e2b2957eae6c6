// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package main is the entry point for the CourseForge analytics server.
//
// CourseForge captures course-design patterns from AI-generated course
// outlines, tracks their real-world success, and serves similarity matches,
// ranked recommendations, and longitudinal quality trends over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Store: Open the BadgerDB pattern library (or the in-memory store for dev)
//  3. Embedding client: Optional Ollama-backed embedding provider
//  4. Matcher and recommendation engine
//  5. HTTP Server: REST API plus /health and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (CF_ prefix, e.g. CF_SERVER_PORT)
//   - Config file (CF_CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests up to the
// configured shutdown timeout, then closes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/courseforge/courseforge/internal/api"
	"github.com/courseforge/courseforge/internal/config"
	"github.com/courseforge/courseforge/internal/embed"
	"github.com/courseforge/courseforge/internal/logging"
	"github.com/courseforge/courseforge/internal/metrics"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/recommend"
	"github.com/courseforge/courseforge/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("storage_backend", cfg.Storage.Backend).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Msg("Starting CourseForge")
	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	var embedder embed.Embedder
	if cfg.Embedding.Enabled {
		embedder = embed.NewClient(cfg.Embedding, logging.Logger())
		logging.Info().
			Str("url", cfg.Embedding.URL).
			Str("model", cfg.Embedding.Model).
			Msg("Embedding provider configured")
	} else {
		logging.Info().Msg("Embedding disabled, similarity uses features only")
	}

	matcher := pattern.NewMatcher(logging.Logger())
	engine := recommend.NewEngine(store.NewRecommendationSource(st), logging.Logger())

	handler := api.NewHandler(st, matcher, engine, embedder, cfg.Matching, logging.Logger())
	router := api.NewRouter(handler, cfg.Server)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	uptimeDone := make(chan struct{})
	go trackUptime(uptimeDone)
	defer close(uptimeDone)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Forced shutdown, in-flight requests dropped")
		return err
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// openStore opens the configured storage backend. The returned close func is
// safe to call once; errors on close are logged, not returned.
func openStore(cfg *config.Config) (api.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		bs, err := store.OpenBadger(cfg.Storage.Path, logging.Logger())
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("path", cfg.Storage.Path).Msg("Pattern store opened")
		return bs, func() {
			if err := bs.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing pattern store")
			}
		}, nil
	case config.BackendMemory:
		logging.Warn().Msg("In-memory store selected, patterns will not survive restart")
		return store.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// trackUptime updates the uptime gauge until the done channel closes.
func trackUptime(done <-chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
