// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package recommend

import (
	"context"
	"time"

	"github.com/courseforge/courseforge/internal/models"
)

// Preferences is the user profile applied when ranking candidate patterns.
type Preferences struct {
	// Approaches lists the user's preferred pedagogical approaches.
	// Empty means no preference; candidates are not filtered on approach.
	Approaches []string `json:"preferred_approaches,omitempty"`

	// ComplexityTarget is the preferred complexity on a [0,1] scale.
	// Candidates further than ComplexityTolerance from it are dropped.
	ComplexityTarget *float64 `json:"complexity_target,omitempty" validate:"omitempty,min=0,max=1"`

	// MinDuration and MaxDuration bound acceptable course duration in
	// hours. Zero values leave the corresponding bound open.
	MinDuration float64 `json:"min_duration,omitempty" validate:"min=0"`
	MaxDuration float64 `json:"max_duration,omitempty" validate:"min=0"`
}

// ComplexityTolerance is the widest acceptable distance between a
// candidate's complexity estimate and the user's target.
const ComplexityTolerance = 0.3

// Candidate is a pattern under consideration, with the similarity it scored
// against the requirements and where it was sourced from.
type Candidate struct {
	Record *models.PatternRecord `json:"pattern"`

	// Similarity is the candidate's similarity to the requirements
	// vector, computed by the matcher before ranking.
	Similarity float64 `json:"similarity"`

	// Collaborative marks candidates sourced from other users' libraries.
	Collaborative bool `json:"collaborative,omitempty"`
}

// Request asks for ranked pattern recommendations for a set of course
// requirements.
type Request struct {
	UserID       string               `json:"user_id" validate:"required"`
	Requirements models.FeatureVector `json:"requirements" validate:"required"`
	Embedding    []float64            `json:"embedding,omitempty"`
	Preferences  Preferences          `json:"preferences"`

	// K caps the number of recommendations returned. Zero means all.
	K int `json:"k,omitempty" validate:"min=0"`
}

// Recommendation is one ranked result with a human-readable explanation.
type Recommendation struct {
	Pattern     *models.PatternRecord `json:"pattern"`
	Score       float64               `json:"score"`
	Explanation string                `json:"explanation"`
}

// Response carries the ranked list plus diagnostics.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalCandidates int              `json:"total_candidates"`
	Filtered        int              `json:"filtered"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// PatternSource supplies candidate patterns for a user. Implemented by the
// store layer; the interface keeps this package free of storage imports.
type PatternSource interface {
	// OwnPatterns returns the user's captured patterns.
	OwnPatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error)

	// CollaborativePatterns returns other users' patterns that have a
	// proven success record and may serve similar requirements.
	CollaborativePatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error)
}
