// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge/internal/logging"
	"github.com/courseforge/courseforge/internal/metrics"
	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/store"
)

// createPatternRequest captures a new pattern into the library.
type createPatternRequest struct {
	Type                models.PatternType     `json:"pattern_type" validate:"required,oneof=structural content progression engagement assessment"`
	Category            models.PatternCategory `json:"category" validate:"required,oneof=intro_structure section_flow lesson_pacing content_mix assessment_placement conclusion_style"`
	Features            models.FeatureVector   `json:"features" validate:"required"`
	Description         string                 `json:"description,omitempty"`
	Embedding           []float64              `json:"embedding,omitempty"`
	SimilarityThreshold *float64               `json:"similarity_threshold,omitempty" validate:"omitempty,min=0,max=1"`
	CreatedBy           string                 `json:"created_by,omitempty"`
}

// CreatePattern handles POST /api/v1/patterns.
func (h *Handler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	var req createPatternRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	threshold := h.matching.DefaultThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	embedding := req.Embedding
	if embedding == nil {
		embedding = h.embedDescription(r.Context(), req.Description)
	}

	rec := &models.PatternRecord{
		Type:                req.Type,
		Category:            req.Category,
		Features:            req.Features,
		Embedding:           embedding,
		SimilarityThreshold: threshold,
		CreatedBy:           req.CreatedBy,
	}
	if err := rec.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	start := time.Now()
	saved, err := h.store.Create(r.Context(), rec)
	metrics.RecordStoreOperation("create", time.Since(start), err)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFingerprint) {
			respondError(w, http.StatusConflict, codeDuplicate, "A pattern with identical content already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to save pattern", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("pattern_id", saved.ID).
		Str("pattern_type", string(saved.Type)).
		Msg("Pattern captured")
	respondData(w, http.StatusCreated, saved)
}

// ListPatterns handles GET /api/v1/patterns with optional type and
// success_level filters.
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	var (
		recs []*models.PatternRecord
		err  error
	)

	switch {
	case r.URL.Query().Get("type") != "":
		t := models.PatternType(r.URL.Query().Get("type"))
		if !t.Valid() {
			respondError(w, http.StatusBadRequest, codeValidation, "Unknown pattern type", nil)
			return
		}
		recs, err = h.store.FindByType(r.Context(), t)
	case r.URL.Query().Get("success_level") != "":
		level := models.SuccessLevel(r.URL.Query().Get("success_level"))
		switch level {
		case models.SuccessHigh, models.SuccessMedium, models.SuccessLow, models.SuccessUnknown:
		default:
			respondError(w, http.StatusBadRequest, codeValidation, "Unknown success level", nil)
			return
		}
		recs, err = h.store.FindBySuccessLevel(r.Context(), level)
	default:
		recs, err = h.store.List(r.Context())
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to list patterns", err)
		return
	}
	respondList(w, recs, len(recs))
}

// GetPattern handles GET /api/v1/patterns/{id}.
func (h *Handler) GetPattern(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "Pattern not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load pattern", err)
		return
	}
	respondData(w, http.StatusOK, rec)
}

// DeletePattern handles DELETE /api/v1/patterns/{id}.
func (h *Handler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "Pattern not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to delete pattern", err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("pattern_id", id).Msg("Pattern deleted")
	respondData(w, http.StatusOK, map[string]string{"id": id})
}

// CreateVersion handles POST /api/v1/patterns/{id}/versions. The original
// record is never modified; the new version is saved as its own record.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var changes pattern.Changes
	if err := decodeJSON(r, &changes); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&changes); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	base, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "Pattern not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load pattern", err)
		return
	}

	next, err := pattern.CreateVersion(base, changes, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	saved, err := h.store.Create(r.Context(), next)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFingerprint) {
			respondError(w, http.StatusConflict, codeDuplicate, "A pattern with identical content already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to save version", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("base_id", base.ID).
		Str("version_id", saved.ID).
		Str("version", saved.Version).
		Msg("Pattern version created")
	respondData(w, http.StatusCreated, saved)
}

// usageRequest records one application of a pattern to a course.
type usageRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// RecordUsage handles POST /api/v1/patterns/{id}/usage.
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	start := time.Now()
	updated, err := h.store.RecordUsage(r.Context(), chi.URLParam(r, "id"), req.CourseID)
	metrics.RecordStoreOperation("record_usage", time.Since(start), err)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, codeNotFound, "Pattern not found", nil)
		case errors.Is(err, store.ErrConflict):
			respondError(w, http.StatusConflict, codeConflict, "Pattern was updated concurrently, retry", nil)
		default:
			respondError(w, http.StatusInternalServerError, codeInternal, "Failed to record usage", err)
		}
		return
	}
	respondData(w, http.StatusOK, updated)
}

// successRequest updates a pattern's success signals: any of the three
// metrics, a single reuse outcome, or both.
type successRequest struct {
	pattern.SuccessUpdate
	Successful *bool `json:"successful,omitempty"`
}

// UpdateSuccess handles POST /api/v1/patterns/{id}/success.
func (h *Handler) UpdateSuccess(w http.ResponseWriter, r *http.Request) {
	var req successRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if req.SuccessUpdate.Empty() && req.Successful == nil {
		respondError(w, http.StatusBadRequest, codeValidation, "At least one success field is required", nil)
		return
	}

	now := time.Now().UTC()
	start := time.Now()
	updated, err := h.store.Mutate(r.Context(), chi.URLParam(r, "id"), func(rec *models.PatternRecord) error {
		if !req.SuccessUpdate.Empty() {
			pattern.ApplySuccessMetrics(rec, req.SuccessUpdate, now)
		}
		if req.Successful != nil {
			pattern.ApplySuccessOutcome(rec, *req.Successful, now)
		}
		return nil
	})
	metrics.RecordStoreOperation("update_success", time.Since(start), err)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, codeNotFound, "Pattern not found", nil)
		case errors.Is(err, store.ErrConflict):
			metrics.StoreMutationConflicts.Inc()
			respondError(w, http.StatusConflict, codeConflict, "Pattern was updated concurrently, retry", nil)
		default:
			respondError(w, http.StatusInternalServerError, codeInternal, "Failed to update success metrics", err)
		}
		return
	}
	respondData(w, http.StatusOK, updated)
}

// matchRequest scores the library against a query course.
type matchRequest struct {
	Features    models.FeatureVector `json:"features" validate:"required"`
	Embedding   []float64            `json:"embedding,omitempty"`
	Description string               `json:"description,omitempty"`
}

// matchResponse carries the qualifying patterns, best match first.
type matchResponse struct {
	Matches []pattern.Match `json:"matches"`
	Scanned int             `json:"scanned"`
}

// MatchPatterns handles POST /api/v1/patterns/match.
func (h *Handler) MatchPatterns(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if err := req.Features.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	embedding := req.Embedding
	if embedding == nil {
		embedding = h.embedDescription(r.Context(), req.Description)
	}

	library, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load pattern library", err)
		return
	}

	start := time.Now()
	matches := h.matcher.FindMatches(req.Features, embedding, library)
	metrics.RecordMatch(time.Since(start), len(library))

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.ID < matches[j].Record.ID
	})

	respondData(w, http.StatusOK, matchResponse{Matches: matches, Scanned: len(library)})
}

// ExtractFeatures handles POST /api/v1/patterns/extract: reduce a course
// structure to its comparable feature vector.
func (h *Handler) ExtractFeatures(w http.ResponseWriter, r *http.Request) {
	var course pattern.CourseStructure
	if err := decodeJSON(r, &course); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&course); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	respondData(w, http.StatusOK, pattern.ExtractFeatures(course))
}
