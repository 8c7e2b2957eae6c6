// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package pattern

import (
	"strings"

	"github.com/courseforge/courseforge/internal/models"
)

// Lesson is one unit of course content inside a section.
type Lesson struct {
	Title        string  `json:"title"`
	Type         string  `json:"type,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	HasVideo     bool    `json:"has_video,omitempty"`
	HasQuiz      bool    `json:"has_quiz,omitempty"`
	HasDownloads bool    `json:"has_downloads,omitempty"`
}

// Section groups lessons under a heading.
type Section struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// CourseStructure is the raw course shape supplied by the authoring
// subsystem. The analytics engine only ever reads it.
type CourseStructure struct {
	ID                string    `json:"id,omitempty"`
	Title             string    `json:"title" validate:"required"`
	Sections          []Section `json:"sections"`
	DifficultyLevel   string    `json:"difficulty_level,omitempty"`
	EstimatedDuration float64   `json:"estimated_duration,omitempty"`
}

// Title markers for structural section detection, matched case-insensitively.
var (
	introMarkers      = []string{"intro", "welcome", "getting started"}
	conclusionMarkers = []string{"conclusion", "wrap up", "next steps", "summary"}
)

// ExtractFeatures reduces a course structure to its comparable feature
// vector. Pure function: the same structure always yields the same vector.
func ExtractFeatures(course CourseStructure) models.FeatureVector {
	lessonCount := 0
	hasVideo := false
	hasQuiz := false
	hasDownloads := false

	for _, section := range course.Sections {
		lessonCount += len(section.Lessons)
		for _, lesson := range section.Lessons {
			hasVideo = hasVideo || lesson.HasVideo
			hasQuiz = hasQuiz || lesson.HasQuiz
			hasDownloads = hasDownloads || lesson.HasDownloads
		}
	}

	fv := models.FeatureVector{
		models.FeatureSectionCount:      models.Number(float64(len(course.Sections))),
		models.FeatureLessonCount:       models.Number(float64(lessonCount)),
		models.FeatureHasVideo:          models.Bool(hasVideo),
		models.FeatureHasQuiz:           models.Bool(hasQuiz),
		models.FeatureHasDownloads:      models.Bool(hasDownloads),
		models.FeatureIntroPresent:      models.Bool(hasIntroSection(course.Sections)),
		models.FeatureConclusionPresent: models.Bool(hasConclusionSection(course.Sections)),
	}
	if course.DifficultyLevel != "" {
		fv[models.FeatureDifficultyLevel] = models.String(course.DifficultyLevel)
	}
	if course.EstimatedDuration > 0 {
		fv[models.FeatureEstimatedDuration] = models.Number(course.EstimatedDuration)
	}
	return fv
}

// hasIntroSection reports whether any section title carries an intro marker.
func hasIntroSection(sections []Section) bool {
	for _, section := range sections {
		if titleContainsAny(section.Title, introMarkers) {
			return true
		}
	}
	return false
}

// hasConclusionSection checks the last section only; a "summary" in the
// middle of a course is recap material, not a conclusion.
func hasConclusionSection(sections []Section) bool {
	if len(sections) == 0 {
		return false
	}
	return titleContainsAny(sections[len(sections)-1].Title, conclusionMarkers)
}

func titleContainsAny(title string, markers []string) bool {
	lowered := strings.ToLower(title)
	for _, marker := range markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
