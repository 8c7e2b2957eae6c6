// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package pattern

import (
	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/similarity"
)

// Match pairs a qualifying pattern with the score it matched at. Ranking is
// the recommender's job; the matcher only filters.
type Match struct {
	Record *models.PatternRecord `json:"pattern"`
	Score  float64               `json:"score"`
}

// Matcher scans a pattern library for candidates similar to a query course.
type Matcher struct {
	logger zerolog.Logger
}

// NewMatcher creates a matcher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMatcher(logger zerolog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With().Str("component", "matcher").Logger(),
	}
}

// FindMatches scores every candidate against the query and keeps those whose
// combined score reaches the candidate's own similarity threshold. Library
// records are not mutated; returned matches reference clones.
//
// An embedding dimension mismatch on one candidate degrades that candidate's
// embedding term to 0 inside similarity.Combined; it never aborts the scan.
func (m *Matcher) FindMatches(query models.FeatureVector, queryEmbedding []float64, library []*models.PatternRecord) []Match {
	matches := make([]Match, 0)
	for _, rec := range library {
		if rec == nil {
			continue
		}
		score := similarity.Combined(query, queryEmbedding, rec.Features, rec.Embedding)
		if score >= rec.SimilarityThreshold {
			matches = append(matches, Match{Record: rec.Clone(), Score: score})
		}
	}

	m.logger.Debug().
		Int("library_size", len(library)).
		Int("matches", len(matches)).
		Msg("Pattern scan complete")

	return matches
}

// MatchesCourse reports whether a single pattern matches a course's
// extracted features using the pattern's own threshold. Feature similarity
// only; course queries carry no embedding at this call site.
func (m *Matcher) MatchesCourse(rec *models.PatternRecord, courseFeatures models.FeatureVector) bool {
	return similarity.Features(rec.Features, courseFeatures) >= rec.SimilarityThreshold
}
