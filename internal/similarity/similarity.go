// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package similarity scores how alike two course patterns are.
//
// Two signals are combined: a discrete feature-by-feature comparison over
// FeatureVectors and cosine similarity over externally supplied embedding
// vectors. All scores are bounded to [0, 1] and the feature comparison is
// symmetric, so callers may cache scores under either argument order.
package similarity

import (
	"errors"
	"math"

	"github.com/courseforge/courseforge/internal/models"
)

// ErrDimensionMismatch is returned when two embeddings of different lengths
// are compared. Embeddings are never truncated to force comparability.
var ErrDimensionMismatch = errors.New("embedding vectors have different dimensions")

// Combined-score weights. These are fixed by contract: downstream match
// thresholds and stored success statistics were calibrated against them,
// so changing them silently invalidates every stored threshold.
const (
	featureWeight   = 0.6
	embeddingWeight = 0.4
)

// Numeric features within 20% relative difference of each other count as a
// near match worth 0.8.
const (
	numericTolerance = 0.2
	numericNearScore = 0.8
)

// Features computes the discrete similarity of two feature vectors.
//
// For each key in the union of both key sets: equal values contribute 1,
// numeric values within tolerance contribute 0.8, string values contribute
// a normalized Levenshtein ratio, and everything else (including keys
// present on only one side) contributes 0. The result is the mean
// contribution over the union. Two empty vectors score 0, not NaN.
func Features(a, b models.FeatureVector) float64 {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0
	}

	var sum float64
	total := 0
	for k := range keys {
		va, aok := a[k]
		vb, bok := b[k]
		if !aok && !bok {
			continue
		}
		total++
		if !aok || !bok {
			continue
		}
		sum += valueSimilarity(va, vb)
	}
	if total == 0 {
		return 0
	}
	return sum / float64(total)
}

// valueSimilarity scores a single pair of present values.
func valueSimilarity(a, b models.FeatureValue) float64 {
	if a.Equal(b) {
		return 1
	}
	if na, ok := a.Num(); ok {
		if nb, ok := b.Num(); ok {
			avg := (na + nb) / 2
			if avg > 0 && math.Abs(na-nb)/avg <= numericTolerance {
				return numericNearScore
			}
			return 0
		}
	}
	if sa, ok := a.Str(); ok {
		if sb, ok := b.Str(); ok {
			return stringSimilarity(sa, sb)
		}
	}
	return 0
}

// stringSimilarity converts edit distance into a [0,1] ratio.
func stringSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	d := levenshtein(a, b)
	s := 1 - float64(d)/float64(maxLen)
	if s < 0 {
		return 0
	}
	return s
}

// levenshtein computes edit distance with a two-row dynamic program.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Embeddings computes cosine similarity between two embedding vectors.
// Returns ErrDimensionMismatch if the lengths differ and 0 if either
// vector has zero magnitude.
func Embeddings(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Combined blends feature and embedding similarity with fixed 0.6/0.4
// weights. When either side has no embedding, or the embeddings are not
// comparable, the embedding term is 0. The sum is deliberately not
// renormalized in that case: keeping the formula stable across patterns
// with and without embeddings is what makes stored thresholds reproducible.
func Combined(featA models.FeatureVector, embA []float64, featB models.FeatureVector, embB []float64) float64 {
	score := featureWeight * Features(featA, featB)

	if len(embA) > 0 && len(embB) > 0 {
		cos, err := Embeddings(embA, embB)
		if err == nil {
			score += embeddingWeight * clamp01(cos)
		}
		// A dimension mismatch degrades this one comparison to the
		// feature score alone; it never aborts a batch scan.
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
