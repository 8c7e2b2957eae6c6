// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package store

import (
	"context"
	"fmt"

	"github.com/courseforge/courseforge/internal/models"
)

// RecommendationSource adapts a PatternStore to the recommendation
// engine's view of the library: the user's own patterns plus everyone
// else's as collaborative candidates. The engine applies its own proven-
// success gating to the collaborative side.
type RecommendationSource struct {
	store PatternStore
}

// NewRecommendationSource wraps a pattern store.
func NewRecommendationSource(store PatternStore) *RecommendationSource {
	return &RecommendationSource{store: store}
}

// OwnPatterns returns patterns created by the user.
func (s *RecommendationSource) OwnPatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error) {
	return s.byCreator(ctx, userID, true)
}

// CollaborativePatterns returns patterns created by other users.
func (s *RecommendationSource) CollaborativePatterns(ctx context.Context, userID string) ([]*models.PatternRecord, error) {
	return s.byCreator(ctx, userID, false)
}

func (s *RecommendationSource) byCreator(ctx context.Context, userID string, own bool) ([]*models.PatternRecord, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	out := make([]*models.PatternRecord, 0, len(all))
	for _, rec := range all {
		if (rec.CreatedBy == userID) == own {
			out = append(out, rec)
		}
	}
	return out, nil
}
