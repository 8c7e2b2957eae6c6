// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package recommend

import (
	"math"
	"sort"
	"strings"

	"github.com/courseforge/courseforge/internal/models"
)

// Ranking weights. Success history dominates, then fit to the stated
// requirements, then preference alignment, with a small popularity nudge
// capped at 100 uses.
const (
	successWeight    = 0.4
	similarityWeight = 0.3
	preferenceWeight = 0.2
	popularityWeight = 0.1

	popularityCap = 100
)

// Explanation trigger thresholds.
const (
	strongSuccessRate    = 0.8
	popularUsageCount    = 50
	strongSimilarity     = 0.8
)

// FilterCandidates applies the user's hard constraints. A candidate is
// dropped when its pedagogical approach is outside the preferred set, its
// complexity estimate is further than the tolerance from the target, or its
// duration falls outside the user's bounds. Candidates that do not declare
// a constrained feature are kept; constraints only reject declared
// mismatches.
func FilterCandidates(candidates []Candidate, prefs Preferences) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Record == nil {
			continue
		}
		if !approachAllowed(c.Record.Features, prefs.Approaches) {
			continue
		}
		if !complexityAllowed(c.Record.Features, prefs.ComplexityTarget) {
			continue
		}
		if !durationAllowed(c.Record.Features, prefs.MinDuration, prefs.MaxDuration) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func approachAllowed(features models.FeatureVector, preferred []string) bool {
	if len(preferred) == 0 {
		return true
	}
	approach, ok := features[models.FeatureApproach].Str()
	if !ok {
		return true
	}
	for _, p := range preferred {
		if strings.EqualFold(p, approach) {
			return true
		}
	}
	return false
}

func complexityAllowed(features models.FeatureVector, target *float64) bool {
	if target == nil {
		return true
	}
	complexity, ok := features[models.FeatureComplexity].Num()
	if !ok {
		return true
	}
	return math.Abs(complexity-*target) <= ComplexityTolerance
}

func durationAllowed(features models.FeatureVector, minDur, maxDur float64) bool {
	duration, ok := features[models.FeatureEstimatedDuration].Num()
	if !ok {
		return true
	}
	if minDur > 0 && duration < minDur {
		return false
	}
	if maxDur > 0 && duration > maxDur {
		return false
	}
	return true
}

// Score combines the four ranking signals for one candidate:
// 0.4*success_rate + 0.3*similarity + 0.2*preference alignment +
// 0.1*min(1, times_used/100).
func Score(c Candidate, prefs Preferences) float64 {
	rec := c.Record
	popularity := math.Min(1, float64(rec.Usage.TimesUsed)/popularityCap)

	return successWeight*rec.SuccessRate +
		similarityWeight*c.Similarity +
		preferenceWeight*preferenceAlignment(rec.Features, prefs) +
		popularityWeight*popularity
}

// preferenceAlignment measures how well a surviving candidate fits the soft
// side of the preferences: exact approach match, closeness to the
// complexity target, and sitting inside the duration window. Components the
// candidate does not declare are excluded from the mean rather than scored
// as zero, so sparse feature vectors are not penalized twice.
func preferenceAlignment(features models.FeatureVector, prefs Preferences) float64 {
	var sum float64
	n := 0

	if len(prefs.Approaches) > 0 {
		if approach, ok := features[models.FeatureApproach].Str(); ok {
			n++
			for _, p := range prefs.Approaches {
				if strings.EqualFold(p, approach) {
					sum++
					break
				}
			}
		}
	}

	if prefs.ComplexityTarget != nil {
		if complexity, ok := features[models.FeatureComplexity].Num(); ok {
			n++
			diff := math.Abs(complexity - *prefs.ComplexityTarget)
			if diff < ComplexityTolerance {
				sum += 1 - diff/ComplexityTolerance
			}
		}
	}

	if prefs.MinDuration > 0 || prefs.MaxDuration > 0 {
		if _, ok := features[models.FeatureEstimatedDuration].Num(); ok {
			n++
			if durationAllowed(features, prefs.MinDuration, prefs.MaxDuration) {
				sum++
			}
		}
	}

	if n == 0 {
		// No stated preferences: every candidate aligns fully.
		return 1
	}
	return sum / float64(n)
}

// Rank filters, scores, and orders candidates. Ties on score break toward
// the more-used pattern. Explanations are generated from fixed templates so
// identical inputs always produce identical output.
func Rank(candidates []Candidate, requirements models.FeatureVector, prefs Preferences) []Recommendation {
	kept := FilterCandidates(candidates, prefs)

	recs := make([]Recommendation, 0, len(kept))
	for _, c := range kept {
		recs = append(recs, Recommendation{
			Pattern:     c.Record,
			Score:       Score(c, prefs),
			Explanation: explain(c, requirements),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Pattern.Usage.TimesUsed > recs[j].Pattern.Usage.TimesUsed
	})
	return recs
}

// Explanation templates, in the order the reasons are emitted.
const (
	reasonSuccess       = "strong success record across prior courses"
	reasonPopular       = "widely reused by course authors"
	reasonSimilar       = "closely matches your course requirements"
	reasonSubjectMatch  = "covers the same subject"
	reasonAudienceMatch = "targets the same audience"
	reasonCollaborative = "proven in other authors' courses with similar requirements"
	reasonDefault       = "matches your course requirements"
)

// explain builds the explanation from whichever scoring components were
// strong. Reason order is fixed, so the output is deterministic for a given
// candidate and requirements vector.
func explain(c Candidate, requirements models.FeatureVector) string {
	reasons := make([]string, 0, 4)

	if c.Record.SuccessRate > strongSuccessRate {
		reasons = append(reasons, reasonSuccess)
	}
	if c.Record.Usage.TimesUsed > popularUsageCount {
		reasons = append(reasons, reasonPopular)
	}
	if c.Similarity > strongSimilarity {
		reasons = append(reasons, reasonSimilar)
	}
	if featureStringsEqual(c.Record.Features, requirements, models.FeatureSubject) {
		reasons = append(reasons, reasonSubjectMatch)
	}
	if featureStringsEqual(c.Record.Features, requirements, models.FeatureAudience) {
		reasons = append(reasons, reasonAudienceMatch)
	}
	if c.Collaborative {
		reasons = append(reasons, reasonCollaborative)
	}

	if len(reasons) == 0 {
		return reasonDefault
	}
	return strings.Join(reasons, "; ")
}

func featureStringsEqual(a, b models.FeatureVector, key string) bool {
	va, aok := a[key].Str()
	vb, bok := b[key].Str()
	return aok && bok && strings.EqualFold(va, vb)
}
