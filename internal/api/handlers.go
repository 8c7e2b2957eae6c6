// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package api exposes the pattern library, matching, recommendation, and
// quality analytics over HTTP with a Chi router.
package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/config"
	"github.com/courseforge/courseforge/internal/embed"
	"github.com/courseforge/courseforge/internal/logging"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/recommend"
	"github.com/courseforge/courseforge/internal/store"
)

// Store is the combined persistence contract the handlers need.
type Store interface {
	store.PatternStore
	store.ReportStore
}

// Handler carries the wired components behind the HTTP surface.
type Handler struct {
	store    Store
	matcher  *pattern.Matcher
	engine   *recommend.Engine
	embedder embed.Embedder // nil when embedding is disabled
	matching config.MatchingConfig
	logger   zerolog.Logger
}

// NewHandler wires the HTTP handlers. embedder may be nil; matching then
// scores on discrete features only.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(s Store, matcher *pattern.Matcher, engine *recommend.Engine, embedder embed.Embedder, matching config.MatchingConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    s,
		matcher:  matcher,
		engine:   engine,
		embedder: embedder,
		matching: matching,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// embedDescription generates an embedding for free text, best effort. A
// provider failure degrades to feature-only scoring rather than failing
// the request.
func (h *Handler) embedDescription(ctx context.Context, text string) []float64 {
	if h.embedder == nil || text == "" {
		return nil
	}
	vec, err := h.embedder.Embed(ctx, text)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Embedding unavailable, scoring on features only")
		return nil
	}
	return vec
}
