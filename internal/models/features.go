// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package models

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// FeatureKind identifies the value type carried by a FeatureValue.
type FeatureKind int

const (
	// KindNumber is a float64-valued feature.
	KindNumber FeatureKind = iota
	// KindBool is a boolean-valued feature.
	KindBool
	// KindString is a string-valued feature.
	KindString
)

// String returns a human-readable kind name.
func (k FeatureKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// FeatureValue is a tagged union over the three value types a course feature
// may carry. The zero value is the number 0.
type FeatureValue struct {
	kind FeatureKind
	num  float64
	b    bool
	str  string
}

// Number creates a numeric feature value.
func Number(v float64) FeatureValue {
	return FeatureValue{kind: KindNumber, num: v}
}

// Bool creates a boolean feature value.
func Bool(v bool) FeatureValue {
	return FeatureValue{kind: KindBool, b: v}
}

// String creates a string feature value.
func String(v string) FeatureValue {
	return FeatureValue{kind: KindString, str: v}
}

// Kind returns the value type of the feature.
func (v FeatureValue) Kind() FeatureKind {
	return v.kind
}

// Num returns the numeric payload and whether the value is numeric.
func (v FeatureValue) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Boolean returns the boolean payload and whether the value is boolean.
func (v FeatureValue) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Str returns the string payload and whether the value is a string.
func (v FeatureValue) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Equal reports whether two feature values have the same kind and payload.
func (v FeatureValue) Equal(other FeatureValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.str == other.str
	default:
		return false
	}
}

// MarshalJSON encodes the underlying payload without a type wrapper, so
// vectors serialize as plain JSON objects ({"section_count": 5, ...}).
func (v FeatureValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.str)
	default:
		return nil, fmt.Errorf("unknown feature kind %d", v.kind)
	}
}

// UnmarshalJSON decodes a bare JSON scalar into the matching kind.
func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case float64:
		*v = Number(val)
	case bool:
		*v = Bool(val)
	case string:
		*v = String(val)
	default:
		return fmt.Errorf("feature value must be a number, bool, or string, got %T", raw)
	}
	return nil
}

// FeatureVector maps feature names to values. Two vectors may have disjoint
// key sets; absent keys are treated as "no value" by the similarity engine.
// Vectors are treated as immutable once handed to a similarity computation;
// edits produce a new vector via Clone.
type FeatureVector map[string]FeatureValue

// Well-known feature keys produced by course feature extraction. Free-form
// extension keys are allowed alongside these, but a known key must carry the
// registered kind (validated at the boundary, not at use sites).
const (
	FeatureSectionCount      = "section_count"
	FeatureLessonCount       = "lesson_count"
	FeatureHasVideo          = "has_video"
	FeatureHasQuiz           = "has_quiz"
	FeatureHasDownloads      = "has_downloads"
	FeatureDifficultyLevel   = "difficulty_level"
	FeatureEstimatedDuration = "estimated_duration"
	FeatureIntroPresent      = "intro_section_present"
	FeatureConclusionPresent = "conclusion_section_present"
	FeatureApproach          = "pedagogical_approach"
	FeatureComplexity        = "complexity"
	FeatureSubject           = "subject"
	FeatureAudience          = "target_audience"
)

// knownFeatureKinds registers the expected kind for well-known keys.
var knownFeatureKinds = map[string]FeatureKind{
	FeatureSectionCount:      KindNumber,
	FeatureLessonCount:       KindNumber,
	FeatureHasVideo:          KindBool,
	FeatureHasQuiz:           KindBool,
	FeatureHasDownloads:      KindBool,
	FeatureDifficultyLevel:   KindString,
	FeatureEstimatedDuration: KindNumber,
	FeatureIntroPresent:      KindBool,
	FeatureConclusionPresent: KindBool,
	FeatureApproach:          KindString,
	FeatureComplexity:        KindNumber,
	FeatureSubject:           KindString,
	FeatureAudience:          KindString,
}

// Validate checks that every well-known key carries its registered kind.
// Extension keys are accepted with any kind.
func (fv FeatureVector) Validate() error {
	for key, val := range fv {
		want, known := knownFeatureKinds[key]
		if !known {
			continue
		}
		if val.Kind() != want {
			return fmt.Errorf("feature %q must be a %s, got %s", key, want, val.Kind())
		}
	}
	return nil
}

// Clone returns an independent copy of the vector.
func (fv FeatureVector) Clone() FeatureVector {
	if fv == nil {
		return nil
	}
	out := make(FeatureVector, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}

// Equal reports whether both vectors carry the same keys with equal values.
func (fv FeatureVector) Equal(other FeatureVector) bool {
	if len(fv) != len(other) {
		return false
	}
	for k, v := range fv {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// SortedKeys returns the feature names in lexicographic order. Canonical key
// ordering is what makes fingerprints insertion-order independent.
func (fv FeatureVector) SortedKeys() []string {
	keys := make([]string, 0, len(fv))
	for k := range fv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
