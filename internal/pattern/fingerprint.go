// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/courseforge/courseforge/internal/models"
)

// Fingerprint produces a stable content hash over {type, category, features}.
// Feature keys are sorted before serialization so two vectors with the same
// key/value pairs in different insertion order always hash identically.
func Fingerprint(pType models.PatternType, category models.PatternCategory, features models.FeatureVector) string {
	h := sha256.New()
	h.Write([]byte(pType))
	h.Write([]byte{0})
	h.Write([]byte(category))
	h.Write([]byte{0})

	fh := featuresHash(features)
	h.Write(fh[:])

	return hex.EncodeToString(h.Sum(nil))
}

// featuresHash hashes the canonical serialization of a feature vector.
func featuresHash(features models.FeatureVector) [sha256.Size]byte {
	var sb strings.Builder
	for _, key := range features.SortedKeys() {
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(canonicalValue(features[key]))
		sb.WriteByte(';')
	}
	return sha256.Sum256([]byte(sb.String()))
}

// canonicalValue renders a feature value with a kind prefix so that the
// number 1, the string "1", and the boolean true never collide.
func canonicalValue(v models.FeatureValue) string {
	if n, ok := v.Num(); ok {
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	}
	if b, ok := v.Boolean(); ok {
		return "b:" + strconv.FormatBool(b)
	}
	s, _ := v.Str()
	return "s:" + s
}

// InitialVersion is the version stamped on a freshly captured pattern.
const InitialVersion = "1.0"

// BumpMinor increments the minor component of a "major.minor" version.
// The minor component only ever increases; version strings never move
// backwards through edits.
func BumpMinor(version string) (string, error) {
	major, minor, err := parseVersion(version)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}

func parseVersion(version string) (major, minor int, err error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("version %q is not in major.minor form", version)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has non-numeric major component", version)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has non-numeric minor component", version)
	}
	if major < 0 || minor < 0 {
		return 0, 0, fmt.Errorf("version %q has negative components", version)
	}
	return major, minor, nil
}

// Changes describes the edits applied when versioning a pattern. Nil fields
// leave the copied record unchanged.
type Changes struct {
	Features            models.FeatureVector `json:"features,omitempty"`
	Embedding           []float64            `json:"embedding,omitempty"`
	SimilarityThreshold *float64             `json:"similarity_threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

// CreateVersion deep-copies the record, applies the changes, bumps the minor
// version, stamps a fresh creation time, and recomputes the fingerprint.
// The original record is never touched; published versions are append-only.
// The returned record has no ID so the store assigns a fresh one on save.
func CreateVersion(rec *models.PatternRecord, changes Changes, now time.Time) (*models.PatternRecord, error) {
	next, err := BumpMinor(rec.Version)
	if err != nil {
		return nil, err
	}

	out := rec.Clone()
	out.ID = ""
	out.Version = next
	out.CreatedAt = now
	out.UpdatedAt = now

	if changes.Features != nil {
		out.Features = changes.Features.Clone()
	}
	if changes.Embedding != nil {
		out.Embedding = make([]float64, len(changes.Embedding))
		copy(out.Embedding, changes.Embedding)
	}
	if changes.SimilarityThreshold != nil {
		out.SimilarityThreshold = *changes.SimilarityThreshold
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.Fingerprint = Fingerprint(out.Type, out.Category, out.Features)
	return out, nil
}
