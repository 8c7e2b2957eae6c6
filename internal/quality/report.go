// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package quality turns per-assessment quality reports into levels, ranked
// recommendations, and longitudinal trend classifications.
package quality

import (
	"fmt"
	"sort"
	"time"
)

// Dimension is one of the fixed assessment dimensions.
type Dimension string

const (
	DimensionPedagogical   Dimension = "pedagogical"
	DimensionContent       Dimension = "content"
	DimensionStructural    Dimension = "structural"
	DimensionAccessibility Dimension = "accessibility"
	DimensionTechnical     Dimension = "technical"
)

// DimensionOrder fixes the scan order for best/worst lookups so ties always
// break the same way.
var DimensionOrder = []Dimension{
	DimensionPedagogical,
	DimensionContent,
	DimensionStructural,
	DimensionAccessibility,
	DimensionTechnical,
}

// DimensionScore holds the score for one assessment dimension.
type DimensionScore struct {
	Score float64 `json:"score" validate:"min=0,max=100"`
}

// Priority orders recommendations by urgency.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// priorityRank maps priorities to sortable weights, highest first.
var priorityRank = map[Priority]int{
	PriorityCritical: 4,
	PriorityHigh:     3,
	PriorityMedium:   2,
	PriorityLow:      1,
}

// Rank returns the numeric weight of the priority; unknown priorities rank
// below low.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Recommendation is one actionable item attached to a report.
type Recommendation struct {
	Category string   `json:"category" validate:"required"`
	Priority Priority `json:"priority" validate:"required,oneof=critical high medium low"`
	Message  string   `json:"message" validate:"required"`
}

// Level is the coarse quality bucket of an overall score.
type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelFair      Level = "fair"
	LevelPoor      Level = "poor"
	LevelCritical  Level = "critical"
)

// LevelFor buckets a [0,100] score into the fixed, contiguous bands:
// excellent [90,100], good [80,90), fair [70,80), poor [50,70),
// critical [0,50).
func LevelFor(score float64) Level {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 80:
		return LevelGood
	case score >= 70:
		return LevelFair
	case score >= 50:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// Report is one quality assessment of a course. Reports are immutable once
// created; a course accumulates a time-ordered series of them.
type Report struct {
	ID                 string                       `json:"id"`
	CourseID           string                       `json:"course_id" validate:"required"`
	CourseTitle        string                       `json:"course_title" validate:"required"`
	AssessmentDate     time.Time                    `json:"assessment_date"`
	OverallScore       float64                      `json:"overall_score" validate:"min=0,max=100"`
	DimensionScores    map[Dimension]DimensionScore `json:"dimension_scores"`
	Recommendations    []Recommendation             `json:"recommendations"`
	PassesQualityGates bool                         `json:"passes_quality_gates"`
}

// Validate checks report invariants that validator tags cannot express.
// Field problems are collected at the API boundary; a report failing here is
// never partially saved.
func (r *Report) Validate() error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return fmt.Errorf("overall_score %v outside [0,100]", r.OverallScore)
	}
	for dim, ds := range r.DimensionScores {
		if !knownDimension(dim) {
			return fmt.Errorf("dimension %q is not a known assessment dimension", dim)
		}
		if ds.Score < 0 || ds.Score > 100 {
			return fmt.Errorf("dimension %q score %v outside [0,100]", dim, ds.Score)
		}
	}
	for i, rec := range r.Recommendations {
		if rec.Priority.Rank() == 0 {
			return fmt.Errorf("recommendation %d has unknown priority %q", i, rec.Priority)
		}
	}
	return nil
}

func knownDimension(d Dimension) bool {
	for _, known := range DimensionOrder {
		if d == known {
			return true
		}
	}
	return false
}

// Level buckets the overall score.
func (r *Report) Level() Level {
	return LevelFor(r.OverallScore)
}

// WorstDimension returns the lowest-scoring dimension. Ties break toward the
// dimension encountered first in DimensionOrder. ok is false when the report
// carries no dimension scores.
func (r *Report) WorstDimension() (dim Dimension, score float64, ok bool) {
	return r.scanDimensions(func(candidate, current float64) bool {
		return candidate < current
	})
}

// BestDimension returns the highest-scoring dimension with the same fixed
// tie-break ordering.
func (r *Report) BestDimension() (dim Dimension, score float64, ok bool) {
	return r.scanDimensions(func(candidate, current float64) bool {
		return candidate > current
	})
}

func (r *Report) scanDimensions(better func(candidate, current float64) bool) (Dimension, float64, bool) {
	var (
		found bool
		dim   Dimension
		score float64
	)
	for _, d := range DimensionOrder {
		ds, ok := r.DimensionScores[d]
		if !ok {
			continue
		}
		if !found || better(ds.Score, score) {
			found = true
			dim = d
			score = ds.Score
		}
	}
	return dim, score, found
}

// SortedRecommendations returns the recommendations ordered by descending
// priority rank. The sort is stable: equal priorities keep their original
// relative order.
func (r *Report) SortedRecommendations() []Recommendation {
	out := make([]Recommendation, len(r.Recommendations))
	copy(out, r.Recommendations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// RecommendationsByCategory groups recommendations by category, each group
// priority-sorted.
func (r *Report) RecommendationsByCategory() map[string][]Recommendation {
	grouped := make(map[string][]Recommendation)
	for _, rec := range r.SortedRecommendations() {
		grouped[rec.Category] = append(grouped[rec.Category], rec)
	}
	return grouped
}
