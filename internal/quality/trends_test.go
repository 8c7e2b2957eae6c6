// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package quality

import (
	"math"
	"testing"
	"time"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Trend
	}{
		{"gentle climb is improvement", []float64{70, 71, 72, 73, 74.5}, TrendImprovement},
		{"steep climb is strong improvement", []float64{60, 65, 70, 75, 80}, TrendStrongImprovement},
		{"flat series is stable", []float64{80, 79, 80, 81, 79}, TrendStable},
		{"gentle fall is decline", []float64{80, 79, 78, 77, 76}, TrendDecline},
		{"steep fall is strong decline", []float64{90, 80, 70, 60, 50}, TrendStrongDecline},
		{"single point has no trend", []float64{75}, TrendInsufficientData},
		{"empty series has no trend", nil, TrendInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyTrend(tt.scores)
			if got != tt.want {
				t.Errorf("ClassifyTrend(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestSlope(t *testing.T) {
	t.Run("exact linear series", func(t *testing.T) {
		// y = 5x + 55 over indices 1..5.
		got := Slope([]float64{60, 65, 70, 75, 80})
		if math.Abs(got-5) > 1e-9 {
			t.Errorf("Slope = %v, want 5", got)
		}
	})

	t.Run("constant series", func(t *testing.T) {
		if got := Slope([]float64{80, 80, 80}); math.Abs(got) > 1e-9 {
			t.Errorf("Slope = %v, want 0", got)
		}
	})

	t.Run("near-linear series", func(t *testing.T) {
		got := Slope([]float64{70, 71, 72, 73, 74.5})
		if got < 1.0 || got > 1.2 {
			t.Errorf("Slope = %v, want ~1.1", got)
		}
	})
}

func TestClassifyVolatility(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   VolatilityLevel
	}{
		{"tight series is low", []float64{80, 81, 79, 80, 82}, VolatilityLow},
		{"wider series is moderate", []float64{70, 80, 85, 72, 88}, VolatilityModerate},
		{"wild series is high", []float64{40, 90, 50, 95, 45}, VolatilityHigh},
		{"single point", []float64{80}, VolatilityInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyVolatility(tt.scores)
			if got != tt.want {
				t.Errorf("ClassifyVolatility(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestStdDevPopulation(t *testing.T) {
	// Population (not sample) standard deviation: mean 80.4,
	// variance (0.16+0.36+1.96+0.16+2.56)/5.
	got := StdDev([]float64{80, 81, 79, 80, 82})
	want := math.Sqrt(5.2 / 5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", got, want)
	}
}

func TestImprovementRate(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"steady improvement", []float64{60, 65, 70, 75, 80}, 8.33},
		{"no change", []float64{70, 70}, 0},
		{"regression", []float64{80, 60}, -25},
		{"single point", []float64{70}, 0},
		{"zero first score", []float64{0, 50}, 0},
		{"negative first score", []float64{-10, 50}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImprovementRate(tt.scores); got != tt.want {
				t.Errorf("ImprovementRate(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestAnalyzeTrendOrdersByDate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Supplied newest-first; analysis must re-order ascending before
	// fitting, otherwise the improving series reads as a decline.
	reports := []Report{
		{CourseID: "c1", OverallScore: 80, AssessmentDate: base.AddDate(0, 0, 4)},
		{CourseID: "c1", OverallScore: 75, AssessmentDate: base.AddDate(0, 0, 3)},
		{CourseID: "c1", OverallScore: 70, AssessmentDate: base.AddDate(0, 0, 2)},
		{CourseID: "c1", OverallScore: 65, AssessmentDate: base.AddDate(0, 0, 1)},
		{CourseID: "c1", OverallScore: 60, AssessmentDate: base},
	}

	summary := AnalyzeTrend(reports)
	if summary.Trend != TrendStrongImprovement {
		t.Errorf("Trend = %v, want strong_improvement", summary.Trend)
	}
	if summary.Assessments != 5 {
		t.Errorf("Assessments = %d, want 5", summary.Assessments)
	}
	if summary.ImprovementRate != 8.33 {
		t.Errorf("ImprovementRate = %v, want 8.33", summary.ImprovementRate)
	}
}

func TestAnalyzeTrendSinglePoint(t *testing.T) {
	summary := AnalyzeTrend([]Report{{CourseID: "c1", OverallScore: 70}})
	if summary.Trend != TrendInsufficientData {
		t.Errorf("Trend = %v, want insufficient_data", summary.Trend)
	}
	if summary.Volatility != VolatilityInsufficient {
		t.Errorf("Volatility = %v, want insufficient_data", summary.Volatility)
	}
}
