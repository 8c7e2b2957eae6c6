// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/quality"
)

// fullStore is the combined contract both implementations satisfy.
type fullStore interface {
	PatternStore
	ReportStore
}

func testPattern(sections float64) *models.PatternRecord {
	return &models.PatternRecord{
		Type:     models.PatternStructural,
		Category: models.CategorySectionFlow,
		Features: models.FeatureVector{
			models.FeatureSectionCount: models.Number(sections),
			models.FeatureHasQuiz:      models.Bool(true),
		},
		SimilarityThreshold: models.DefaultSimilarityThreshold,
	}
}

// runStoreSuite exercises the repository contract against one
// implementation. Behavior must be identical across backends.
func runStoreSuite(t *testing.T, open func(t *testing.T) fullStore) {
	ctx := context.Background()

	t.Run("CreateAssignsIdentity", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if saved.ID == "" {
			t.Error("Create did not assign an ID")
		}
		if saved.Version != pattern.InitialVersion {
			t.Errorf("Version = %q, want %q", saved.Version, pattern.InitialVersion)
		}
		if saved.Fingerprint == "" {
			t.Error("Create did not compute a fingerprint")
		}
		if saved.Level != models.SuccessUnknown {
			t.Errorf("Level = %q, want unknown before any observation", saved.Level)
		}
		if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
			t.Error("Create did not stamp timestamps")
		}
	})

	t.Run("DuplicateFingerprintRejected", func(t *testing.T) {
		s := open(t)
		if _, err := s.Create(ctx, testPattern(5)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := s.Create(ctx, testPattern(5))
		if !errors.Is(err, ErrDuplicateFingerprint) {
			t.Errorf("second Create error = %v, want ErrDuplicateFingerprint", err)
		}
		// Different content is a different fingerprint.
		if _, err := s.Create(ctx, testPattern(7)); err != nil {
			t.Errorf("Create with different features: %v", err)
		}
	})

	t.Run("GetRoundTrip", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := s.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != saved.ID || got.Fingerprint != saved.Fingerprint {
			t.Errorf("Get returned different record: %+v", got)
		}
		if !got.Features.Equal(saved.Features) {
			t.Errorf("features did not round-trip: %v vs %v", got.Features, saved.Features)
		}

		byFP, err := s.GetByFingerprint(ctx, saved.Fingerprint)
		if err != nil {
			t.Fatalf("GetByFingerprint: %v", err)
		}
		if byFP.ID != saved.ID {
			t.Errorf("GetByFingerprint returned %q, want %q", byFP.ID, saved.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		s := open(t)
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get missing = %v, want ErrNotFound", err)
		}
		if _, err := s.GetByFingerprint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByFingerprint missing = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete missing = %v, want ErrNotFound", err)
		}
		if _, err := s.Mutate(ctx, "missing", func(*models.PatternRecord) error { return nil }); !errors.Is(err, ErrNotFound) {
			t.Errorf("Mutate missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("Queries", func(t *testing.T) {
		s := open(t)

		structural := testPattern(5)
		if _, err := s.Create(ctx, structural); err != nil {
			t.Fatalf("Create: %v", err)
		}

		engagement := testPattern(9)
		engagement.Type = models.PatternEngagement
		engagement.Metrics = models.SuccessMetrics{
			CompletionRate:     0.9,
			EngagementScore:    0.9,
			SatisfactionRating: 0.9,
			Observed:           true,
		}
		if _, err := s.Create(ctx, engagement); err != nil {
			t.Fatalf("Create: %v", err)
		}

		all, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("List returned %d records, want 2", len(all))
		}

		byType, err := s.FindByType(ctx, models.PatternEngagement)
		if err != nil {
			t.Fatalf("FindByType: %v", err)
		}
		if len(byType) != 1 || byType[0].Type != models.PatternEngagement {
			t.Errorf("FindByType returned %v", byType)
		}

		high, err := s.FindBySuccessLevel(ctx, models.SuccessHigh)
		if err != nil {
			t.Fatalf("FindBySuccessLevel: %v", err)
		}
		if len(high) != 1 || high[0].Type != models.PatternEngagement {
			t.Errorf("FindBySuccessLevel(high) returned %v", high)
		}
	})

	t.Run("MutateCommitsAndReindexes", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		oldFingerprint := saved.Fingerprint

		updated, err := s.Mutate(ctx, saved.ID, func(rec *models.PatternRecord) error {
			rec.Features[models.FeatureSectionCount] = models.Number(8)
			rec.Fingerprint = pattern.Fingerprint(rec.Type, rec.Category, rec.Features)
			return nil
		})
		if err != nil {
			t.Fatalf("Mutate: %v", err)
		}
		if updated.Fingerprint == oldFingerprint {
			t.Error("fingerprint unchanged after feature edit")
		}

		// Index follows the new fingerprint; the old one is gone.
		if _, err := s.GetByFingerprint(ctx, updated.Fingerprint); err != nil {
			t.Errorf("GetByFingerprint(new): %v", err)
		}
		if _, err := s.GetByFingerprint(ctx, oldFingerprint); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByFingerprint(old) = %v, want ErrNotFound", err)
		}
	})

	t.Run("MutateRejectsInvalidEdit", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		_, err = s.Mutate(ctx, saved.ID, func(rec *models.PatternRecord) error {
			rec.SimilarityThreshold = 1.5
			return nil
		})
		if err == nil {
			t.Fatal("Mutate accepted an out-of-range threshold")
		}

		// The stored record is untouched.
		got, err := s.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.SimilarityThreshold != models.DefaultSimilarityThreshold {
			t.Errorf("threshold = %v after failed mutation", got.SimilarityThreshold)
		}
	})

	t.Run("RecordUsage", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		for i := 0; i < 3; i++ {
			if _, err := s.RecordUsage(ctx, saved.ID, "course-a"); err != nil {
				t.Fatalf("RecordUsage: %v", err)
			}
		}
		updated, err := s.RecordUsage(ctx, saved.ID, "course-b")
		if err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}

		if updated.Usage.TimesUsed != 4 {
			t.Errorf("TimesUsed = %d, want 4", updated.Usage.TimesUsed)
		}
		// Course list is a set.
		if len(updated.Usage.Courses) != 2 {
			t.Errorf("Courses = %v, want two distinct entries", updated.Usage.Courses)
		}
		if updated.Usage.LastUsed == nil || updated.Usage.FirstIdentified == nil {
			t.Error("usage timestamps not stamped")
		}
	})

	t.Run("UsageContinuesAcrossVersions", func(t *testing.T) {
		s := open(t)
		base, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		for i := 0; i < 3; i++ {
			if _, err := s.RecordUsage(ctx, base.ID, "course-a"); err != nil {
				t.Fatalf("RecordUsage: %v", err)
			}
		}

		used, err := s.Get(ctx, base.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		next, err := pattern.CreateVersion(used, pattern.Changes{
			Features: models.FeatureVector{
				models.FeatureSectionCount: models.Number(8),
				models.FeatureHasQuiz:      models.Bool(true),
			},
		}, time.Now().UTC())
		if err != nil {
			t.Fatalf("CreateVersion: %v", err)
		}

		savedVersion, err := s.Create(ctx, next)
		if err != nil {
			t.Fatalf("Create version: %v", err)
		}
		if savedVersion.Usage.TimesUsed != 3 {
			t.Fatalf("version TimesUsed = %d, want inherited 3", savedVersion.Usage.TimesUsed)
		}

		// The first usage of the version continues from the inherited
		// count; times-used never decreases.
		updated, err := s.RecordUsage(ctx, savedVersion.ID, "course-b")
		if err != nil {
			t.Fatalf("RecordUsage on version: %v", err)
		}
		if updated.Usage.TimesUsed != 4 {
			t.Errorf("version TimesUsed after usage = %d, want 4", updated.Usage.TimesUsed)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		saved, err := s.Create(ctx, testPattern(5))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, saved.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete = %v, want ErrNotFound", err)
		}
		// Fingerprint slot is free again.
		if _, err := s.Create(ctx, testPattern(5)); err != nil {
			t.Errorf("Create after delete: %v", err)
		}
	})

	t.Run("ReportsOrderedByDate", func(t *testing.T) {
		s := open(t)
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		// Saved newest first; read back ascending.
		for _, day := range []int{20, 5, 12} {
			rep := &quality.Report{
				CourseID:       "course-1",
				CourseTitle:    "Intro to Statistics",
				AssessmentDate: base.AddDate(0, 0, day),
				OverallScore:   70 + float64(day),
			}
			if _, err := s.SaveReport(ctx, rep); err != nil {
				t.Fatalf("SaveReport: %v", err)
			}
		}

		series, err := s.ReportsForCourse(ctx, "course-1")
		if err != nil {
			t.Fatalf("ReportsForCourse: %v", err)
		}
		if len(series) != 3 {
			t.Fatalf("got %d reports, want 3", len(series))
		}
		for i := 1; i < len(series); i++ {
			if series[i].AssessmentDate.Before(series[i-1].AssessmentDate) {
				t.Errorf("reports out of order at %d: %v before %v",
					i, series[i].AssessmentDate, series[i-1].AssessmentDate)
			}
		}

		other, err := s.ReportsForCourse(ctx, "course-2")
		if err != nil {
			t.Fatalf("ReportsForCourse: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("unrelated course has %d reports", len(other))
		}
	})

	t.Run("ReportsOrderedWithinOneSecond", func(t *testing.T) {
		s := open(t)
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		// A whole-second date and a fractional one inside the same second,
		// saved newest first. Ordering must hold at sub-second resolution.
		for _, offset := range []time.Duration{500 * time.Millisecond, 0} {
			rep := &quality.Report{
				CourseID:       "course-1",
				CourseTitle:    "Intro to Statistics",
				AssessmentDate: base.Add(offset),
				OverallScore:   70,
			}
			if _, err := s.SaveReport(ctx, rep); err != nil {
				t.Fatalf("SaveReport: %v", err)
			}
		}

		series, err := s.ReportsForCourse(ctx, "course-1")
		if err != nil {
			t.Fatalf("ReportsForCourse: %v", err)
		}
		if len(series) != 2 {
			t.Fatalf("got %d reports, want 2", len(series))
		}
		if !series[0].AssessmentDate.Equal(base) || !series[1].AssessmentDate.Equal(base.Add(500*time.Millisecond)) {
			t.Errorf("sub-second reports out of order: %v, %v",
				series[0].AssessmentDate, series[1].AssessmentDate)
		}
	})
}
