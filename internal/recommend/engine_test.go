// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/models"
)

// mockSource implements PatternSource for testing.
type mockSource struct {
	own       []*models.PatternRecord
	shared    []*models.PatternRecord
	ownErr    error
	sharedErr error
}

func (m *mockSource) OwnPatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error) {
	if m.ownErr != nil {
		return nil, m.ownErr
	}
	return m.own, nil
}

func (m *mockSource) CollaborativePatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error) {
	if m.sharedErr != nil {
		return nil, m.sharedErr
	}
	return m.shared, nil
}

func libraryRecord(id string, successRate float64, level models.SuccessLevel) *models.PatternRecord {
	return &models.PatternRecord{
		ID:       id,
		Type:     models.PatternStructural,
		Category: models.CategorySectionFlow,
		Features: models.FeatureVector{
			models.FeatureSectionCount: models.Number(5),
		},
		SuccessRate:         successRate,
		Level:               level,
		SimilarityThreshold: models.DefaultSimilarityThreshold,
	}
}

func TestEngineRecommend(t *testing.T) {
	source := &mockSource{
		own: []*models.PatternRecord{
			libraryRecord("own-1", 0.5, models.SuccessMedium),
		},
		shared: []*models.PatternRecord{
			libraryRecord("shared-proven", 0.9, models.SuccessHigh),
			libraryRecord("shared-unproven", 0.2, models.SuccessLow),
		},
	}
	engine := NewEngine(source, zerolog.Nop())

	resp, err := engine.Recommend(context.Background(), Request{
		UserID: "user-1",
		Requirements: models.FeatureVector{
			models.FeatureSectionCount: models.Number(5),
		},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// Unproven collaborative pattern is excluded before ranking.
	if resp.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}
	if resp.Recommendations[0].Pattern.ID != "shared-proven" {
		t.Errorf("top recommendation = %q, want shared-proven", resp.Recommendations[0].Pattern.ID)
	}
}

func TestEngineRecommendLimitsK(t *testing.T) {
	source := &mockSource{
		own: []*models.PatternRecord{
			libraryRecord("a", 0.9, models.SuccessHigh),
			libraryRecord("b", 0.8, models.SuccessHigh),
			libraryRecord("c", 0.7, models.SuccessMedium),
		},
	}
	engine := NewEngine(source, zerolog.Nop())

	resp, err := engine.Recommend(context.Background(), Request{
		UserID:       "user-1",
		Requirements: models.FeatureVector{},
		K:            2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(resp.Recommendations))
	}
}

func TestEngineRecommendSourceError(t *testing.T) {
	wantErr := errors.New("store down")
	engine := NewEngine(&mockSource{ownErr: wantErr}, zerolog.Nop())

	_, err := engine.Recommend(context.Background(), Request{UserID: "u"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}

func TestEngineDoesNotMutateSource(t *testing.T) {
	rec := libraryRecord("own-1", 0.5, models.SuccessMedium)
	engine := NewEngine(&mockSource{own: []*models.PatternRecord{rec}}, zerolog.Nop())

	resp, err := engine.Recommend(context.Background(), Request{
		UserID:       "user-1",
		Requirements: models.FeatureVector{},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	resp.Recommendations[0].Pattern.Features["injected"] = models.Bool(true)
	if _, ok := rec.Features["injected"]; ok {
		t.Error("source record mutated through recommendation")
	}
}
