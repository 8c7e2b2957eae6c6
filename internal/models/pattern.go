// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package models

import (
	"fmt"
	"time"
)

// PatternType classifies what aspect of course design a pattern captures.
type PatternType string

const (
	PatternStructural  PatternType = "structural"
	PatternContent     PatternType = "content"
	PatternProgression PatternType = "progression"
	PatternEngagement  PatternType = "engagement"
	PatternAssessment  PatternType = "assessment"
)

// Valid reports whether the pattern type is one of the enumerated values.
func (t PatternType) Valid() bool {
	switch t {
	case PatternStructural, PatternContent, PatternProgression, PatternEngagement, PatternAssessment:
		return true
	default:
		return false
	}
}

// PatternCategory narrows a pattern to the part of a course it applies to.
type PatternCategory string

const (
	CategoryIntroStructure      PatternCategory = "intro_structure"
	CategorySectionFlow         PatternCategory = "section_flow"
	CategoryLessonPacing        PatternCategory = "lesson_pacing"
	CategoryContentMix          PatternCategory = "content_mix"
	CategoryAssessmentPlacement PatternCategory = "assessment_placement"
	CategoryConclusionStyle     PatternCategory = "conclusion_style"
)

// Valid reports whether the category is one of the enumerated values.
func (c PatternCategory) Valid() bool {
	switch c {
	case CategoryIntroStructure, CategorySectionFlow, CategoryLessonPacing,
		CategoryContentMix, CategoryAssessmentPlacement, CategoryConclusionStyle:
		return true
	default:
		return false
	}
}

// SuccessLevel is the coarse bucket derived from the three success metrics.
type SuccessLevel string

const (
	SuccessHigh    SuccessLevel = "high"
	SuccessMedium  SuccessLevel = "medium"
	SuccessLow     SuccessLevel = "low"
	SuccessUnknown SuccessLevel = "unknown"
)

// SuccessMetrics holds the three normalized quality signals for a pattern.
// Observed is false until the first metrics update lands; until then the
// derived level is SuccessUnknown.
type SuccessMetrics struct {
	CompletionRate     float64 `json:"completion_rate" validate:"min=0,max=1"`
	EngagementScore    float64 `json:"engagement_score" validate:"min=0,max=1"`
	SatisfactionRating float64 `json:"satisfaction_rating" validate:"min=0,max=1"`
	Observed           bool    `json:"observed"`
}

// Level derives the success bucket from the metric average.
// average >= 0.8 -> high, >= 0.6 -> medium, else low; unknown before any
// metric has been observed.
func (m SuccessMetrics) Level() SuccessLevel {
	if !m.Observed {
		return SuccessUnknown
	}
	avg := (m.CompletionRate + m.EngagementScore + m.SatisfactionRating) / 3
	switch {
	case avg >= 0.8:
		return SuccessHigh
	case avg >= 0.6:
		return SuccessMedium
	default:
		return SuccessLow
	}
}

// UsageStatistics tracks how often and where a pattern has been applied.
// Courses has set semantics: a course id appears at most once.
type UsageStatistics struct {
	TimesUsed       int64      `json:"times_used"`
	Courses         []string   `json:"courses_with_pattern"`
	LastUsed        *time.Time `json:"last_used,omitempty"`
	FirstIdentified *time.Time `json:"first_identified,omitempty"`
}

// HasCourse reports whether the course id is already recorded.
func (u UsageStatistics) HasCourse(courseID string) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// DefaultSimilarityThreshold is the per-pattern match threshold applied when
// a pattern is captured without an explicit one.
const DefaultSimilarityThreshold = 0.8

// PatternRecord is the stored unit of the pattern library: a captured,
// reusable course-design shape with identity, success and usage statistics.
type PatternRecord struct {
	ID          string          `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Version     string          `json:"version"`
	Type        PatternType     `json:"pattern_type" validate:"required"`
	Category    PatternCategory `json:"category" validate:"required"`

	Features  FeatureVector `json:"features" validate:"required"`
	Embedding []float64     `json:"embedding,omitempty"`

	Metrics SuccessMetrics `json:"success_metrics"`
	Level   SuccessLevel   `json:"success_level"`

	// SuccessRate is the exponential-moving-average reuse outcome signal.
	// It is independent of the three-metric Level and both are reported.
	SuccessRate float64 `json:"success_rate" validate:"min=0,max=1"`

	Usage UsageStatistics `json:"usage_statistics"`

	// SimilarityThreshold is the minimum combined similarity for this
	// pattern to qualify as a match. Per-pattern, not a global constant.
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"min=0,max=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
}

// Validate checks structural invariants before a record is saved.
// Errors are field-level and collected by the validation package at the API
// boundary; this covers the invariants validator tags cannot express.
func (p *PatternRecord) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("pattern_type %q is not a known pattern type", p.Type)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("category %q is not a known category", p.Category)
	}
	if len(p.Features) == 0 {
		return fmt.Errorf("features must not be empty")
	}
	if err := p.Features.Validate(); err != nil {
		return err
	}
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold %v outside [0,1]", p.SimilarityThreshold)
	}
	return nil
}

// Clone returns a deep copy of the record. Mutating operations work on
// copies so a published version is never modified in place.
func (p *PatternRecord) Clone() *PatternRecord {
	out := *p
	out.Features = p.Features.Clone()
	if p.Embedding != nil {
		out.Embedding = make([]float64, len(p.Embedding))
		copy(out.Embedding, p.Embedding)
	}
	if p.Usage.Courses != nil {
		out.Usage.Courses = make([]string, len(p.Usage.Courses))
		copy(out.Usage.Courses, p.Usage.Courses)
	}
	if p.Usage.LastUsed != nil {
		t := *p.Usage.LastUsed
		out.Usage.LastUsed = &t
	}
	if p.Usage.FirstIdentified != nil {
		t := *p.Usage.FirstIdentified
		out.Usage.FirstIdentified = &t
	}
	return &out
}
