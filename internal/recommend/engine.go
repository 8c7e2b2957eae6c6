// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package recommend ranks captured course-design patterns against a set of
// course requirements and a user preference profile, and explains why each
// recommendation was made.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/similarity"
)

// collaborativeMinRate is the EMA success rate another author's pattern
// needs before it is offered across user boundaries.
const collaborativeMinRate = 0.7

// Engine gathers candidates from the user's own library and from other
// users' proven patterns, then delegates to the ranker. Safe for
// concurrent use; it holds no mutable state.
type Engine struct {
	source PatternSource
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine backed by the given source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(source PatternSource, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend produces the ranked, explained recommendation list for a
// request. Read-only: no pattern statistics are updated here.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	own, err := e.source.OwnPatterns(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load own patterns: %w", err)
	}
	shared, err := e.source.CollaborativePatterns(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load collaborative patterns: %w", err)
	}

	candidates := make([]Candidate, 0, len(own)+len(shared))
	for _, rec := range own {
		candidates = append(candidates, e.candidate(rec, req, false))
	}
	for _, rec := range shared {
		// Only patterns with a proven record cross user boundaries.
		if rec.Level != models.SuccessHigh && rec.SuccessRate < collaborativeMinRate {
			continue
		}
		candidates = append(candidates, e.candidate(rec, req, true))
	}

	ranked := Rank(candidates, req.Requirements, req.Preferences)
	filtered := len(candidates) - len(ranked)
	if req.K > 0 && len(ranked) > req.K {
		ranked = ranked[:req.K]
	}

	e.logger.Debug().
		Str("user_id", req.UserID).
		Int("candidates", len(candidates)).
		Int("returned", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations generated")

	return &Response{
		Recommendations: ranked,
		TotalCandidates: len(candidates),
		Filtered:        filtered,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

func (e *Engine) candidate(rec *models.PatternRecord, req Request, collaborative bool) Candidate {
	return Candidate{
		Record:        rec.Clone(),
		Similarity:    similarity.Combined(req.Requirements, req.Embedding, rec.Features, rec.Embedding),
		Collaborative: collaborative,
	}
}
