// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package quality

import (
	"math"
	"sort"
)

// Trend classifies the direction of a score series.
type Trend string

const (
	TrendStrongImprovement Trend = "strong_improvement"
	TrendImprovement       Trend = "improvement"
	TrendStable            Trend = "stable"
	TrendDecline           Trend = "decline"
	TrendStrongDecline     Trend = "strong_decline"

	// TrendInsufficientData is the explicit sentinel for series shorter
	// than two points. It is an expected case, not an error.
	TrendInsufficientData Trend = "insufficient_data"
)

// VolatilityLevel classifies the spread of a score series.
type VolatilityLevel string

const (
	VolatilityLow          VolatilityLevel = "low"
	VolatilityModerate     VolatilityLevel = "moderate"
	VolatilityHigh         VolatilityLevel = "high"
	VolatilityInsufficient VolatilityLevel = "insufficient_data"
)

// Slope thresholds for trend classification (score points per assessment).
const (
	strongImprovementSlope = 2.0
	improvementSlope       = 0.5
	declineSlope           = -0.5
	strongDeclineSlope     = -2.0
)

// Standard-deviation thresholds for volatility classification.
const (
	lowVolatilityStdDev      = 5.0
	moderateVolatilityStdDev = 10.0
)

// Slope fits an ordinary-least-squares line of score against 1-based
// assessment index and returns its slope. Series shorter than two points
// have no meaningful slope; callers gate on length first.
func Slope(scores []float64) float64 {
	n := float64(len(scores))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// ClassifyTrend maps the regression slope onto the discrete trend buckets.
func ClassifyTrend(scores []float64) (Trend, float64) {
	if len(scores) < 2 {
		return TrendInsufficientData, 0
	}
	slope := Slope(scores)
	switch {
	case slope > strongImprovementSlope:
		return TrendStrongImprovement, slope
	case slope > improvementSlope:
		return TrendImprovement, slope
	case slope > declineSlope:
		return TrendStable, slope
	case slope > strongDeclineSlope:
		return TrendDecline, slope
	default:
		return TrendStrongDecline, slope
	}
}

// StdDev computes the population standard deviation of the series.
func StdDev(scores []float64) float64 {
	n := float64(len(scores))
	if n == 0 {
		return 0
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / n

	var sq float64
	for _, s := range scores {
		d := s - mean
		sq += d * d
	}
	return math.Sqrt(sq / n)
}

// ClassifyVolatility maps the population standard deviation onto discrete
// volatility buckets.
func ClassifyVolatility(scores []float64) (VolatilityLevel, float64) {
	if len(scores) < 2 {
		return VolatilityInsufficient, 0
	}
	sd := StdDev(scores)
	switch {
	case sd < lowVolatilityStdDev:
		return VolatilityLow, sd
	case sd < moderateVolatilityStdDev:
		return VolatilityModerate, sd
	default:
		return VolatilityHigh, sd
	}
}

// ImprovementRate is the per-assessment relative change between the first
// and last score, as a percentage rounded to two decimals. Zero when the
// series is shorter than two points or starts at or below zero.
func ImprovementRate(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	first := scores[0]
	last := scores[len(scores)-1]
	if first <= 0 {
		return 0
	}
	rate := (last/first - 1) / float64(len(scores)-1) * 100
	return math.Round(rate*100) / 100
}

// TrendSummary is the full longitudinal classification of a course's
// quality history.
type TrendSummary struct {
	Trend           Trend           `json:"trend"`
	Slope           float64         `json:"slope"`
	Volatility      VolatilityLevel `json:"volatility"`
	StdDev          float64         `json:"std_dev"`
	ImprovementRate float64         `json:"improvement_rate"`
	Assessments     int             `json:"assessments"`
}

// AnalyzeTrend classifies a course's report history. Reports are ordered by
// ascending assessment date before scoring, so callers may pass storage
// order.
func AnalyzeTrend(reports []Report) TrendSummary {
	sorted := make([]Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AssessmentDate.Before(sorted[j].AssessmentDate)
	})

	scores := make([]float64, len(sorted))
	for i, r := range sorted {
		scores[i] = r.OverallScore
	}

	trend, slope := ClassifyTrend(scores)
	volatility, sd := ClassifyVolatility(scores)
	return TrendSummary{
		Trend:           trend,
		Slope:           slope,
		Volatility:      volatility,
		StdDev:          sd,
		ImprovementRate: ImprovementRate(scores),
		Assessments:     len(scores),
	}
}
