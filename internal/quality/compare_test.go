// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package quality

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	previous := &Report{
		CourseID:     "c1",
		OverallScore: 70,
		DimensionScores: map[Dimension]DimensionScore{
			DimensionContent:    {Score: 60},
			DimensionStructural: {Score: 80},
		},
	}
	current := &Report{
		CourseID:     "c1",
		OverallScore: 77,
		DimensionScores: map[Dimension]DimensionScore{
			DimensionContent:    {Score: 75},
			DimensionStructural: {Score: 72},
		},
	}

	cmp := Compare(current, previous)

	if cmp.Overall.Delta != 7 {
		t.Errorf("overall delta = %v, want 7", cmp.Overall.Delta)
	}
	if !cmp.Overall.Improvement {
		t.Error("overall improvement flag not set for a positive delta")
	}
	if math.Abs(cmp.Overall.PercentChange-10) > 1e-9 {
		t.Errorf("overall percent change = %v, want 10", cmp.Overall.PercentChange)
	}

	content := cmp.Dimensions[DimensionContent]
	if content.Delta != 15 || !content.Improvement {
		t.Errorf("content delta = %+v, want +15 improvement", content)
	}
	structural := cmp.Dimensions[DimensionStructural]
	if structural.Delta != -8 || structural.Improvement {
		t.Errorf("structural delta = %+v, want -8 regression", structural)
	}
}

func TestCompareZeroPrevious(t *testing.T) {
	previous := &Report{CourseID: "c1", OverallScore: 0}
	current := &Report{CourseID: "c1", OverallScore: 50}

	cmp := Compare(current, previous)
	if cmp.Overall.PercentChange != 0 {
		t.Errorf("percent change from zero = %v, want 0", cmp.Overall.PercentChange)
	}
	if cmp.Overall.Delta != 50 {
		t.Errorf("delta = %v, want 50", cmp.Overall.Delta)
	}
}

func TestCompareMissingDimension(t *testing.T) {
	previous := &Report{
		CourseID: "c1",
		DimensionScores: map[Dimension]DimensionScore{
			DimensionContent: {Score: 60},
		},
	}
	current := &Report{
		CourseID: "c1",
		DimensionScores: map[Dimension]DimensionScore{
			DimensionTechnical: {Score: 40},
		},
	}

	cmp := Compare(current, previous)

	// Dimension dropped from the assessment shows as a regression to 0.
	if d := cmp.Dimensions[DimensionContent]; d.Delta != -60 {
		t.Errorf("dropped dimension delta = %v, want -60", d.Delta)
	}
	// Newly assessed dimension shows as an improvement from 0.
	if d := cmp.Dimensions[DimensionTechnical]; d.Delta != 40 || !d.Improvement {
		t.Errorf("new dimension delta = %+v, want +40 improvement", d)
	}
	// Never-present dimensions are omitted.
	if _, ok := cmp.Dimensions[DimensionPedagogical]; ok {
		t.Error("absent dimension appeared in comparison")
	}
}
