// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package pattern

import (
	"time"

	"github.com/courseforge/courseforge/internal/models"
)

// successAlpha is the EMA learning rate for the scalar success-rate signal.
// One observation moves the rate 10% of the way toward the outcome, so the
// rate decays toward 0 or 1 but never reaches either from the inside.
const successAlpha = 0.1

// SuccessUpdate carries a partial metrics update. Nil fields are left
// untouched; set fields replace the stored value (last write per field,
// never averaged).
type SuccessUpdate struct {
	CompletionRate     *float64 `json:"completion_rate,omitempty" validate:"omitempty,min=0,max=1"`
	EngagementScore    *float64 `json:"engagement_score,omitempty" validate:"omitempty,min=0,max=1"`
	SatisfactionRating *float64 `json:"satisfaction_rating,omitempty" validate:"omitempty,min=0,max=1"`
}

// Empty reports whether the update carries no fields.
func (u SuccessUpdate) Empty() bool {
	return u.CompletionRate == nil && u.EngagementScore == nil && u.SatisfactionRating == nil
}

// ApplySuccessMetrics merges the update into the record's metrics and
// recomputes the derived success level. The record is mutated in place;
// callers hold a private copy obtained from the store's mutate cycle.
func ApplySuccessMetrics(rec *models.PatternRecord, update SuccessUpdate, now time.Time) {
	if update.CompletionRate != nil {
		rec.Metrics.CompletionRate = *update.CompletionRate
	}
	if update.EngagementScore != nil {
		rec.Metrics.EngagementScore = *update.EngagementScore
	}
	if update.SatisfactionRating != nil {
		rec.Metrics.SatisfactionRating = *update.SatisfactionRating
	}
	if !update.Empty() {
		rec.Metrics.Observed = true
	}
	rec.Level = rec.Metrics.Level()
	rec.UpdatedAt = now
}

// ApplySuccessOutcome folds one reuse outcome into the EMA success rate:
// new = old + alpha*(target - old), target 1 on success and 0 on failure.
// This scalar is independent of the three-metric success level; both are
// stored and reported together.
func ApplySuccessOutcome(rec *models.PatternRecord, wasSuccessful bool, now time.Time) {
	target := 0.0
	if wasSuccessful {
		target = 1.0
	}
	rec.SuccessRate += successAlpha * (target - rec.SuccessRate)
	rec.UpdatedAt = now
}

// ApplyUsage records one application of the pattern to a course. TimesUsed
// increases by exactly 1, the course id is added with set semantics, and
// LastUsed advances. FirstIdentified is stamped on first use if the capture
// path did not set it.
func ApplyUsage(rec *models.PatternRecord, courseID string, now time.Time) {
	rec.Usage.TimesUsed++
	if courseID != "" && !rec.Usage.HasCourse(courseID) {
		rec.Usage.Courses = append(rec.Usage.Courses, courseID)
	}
	t := now
	rec.Usage.LastUsed = &t
	if rec.Usage.FirstIdentified == nil {
		first := now
		rec.Usage.FirstIdentified = &first
	}
	rec.UpdatedAt = now
}
