// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package api

import (
	"net/http"
	"time"

	"github.com/courseforge/courseforge/internal/metrics"
	"github.com/courseforge/courseforge/internal/recommend"
)

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	// K is capped by configuration; zero asks for the full ranked list up
	// to the cap.
	if req.K == 0 || req.K > h.matching.MaxRecommendations {
		req.K = h.matching.MaxRecommendations
	}

	if req.Embedding == nil {
		req.Embedding = h.embedDescription(r.Context(), describeRequirements(req))
	}

	start := time.Now()
	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to generate recommendations", err)
		return
	}
	metrics.RecordRecommendation(time.Since(start), len(resp.Recommendations))

	respondData(w, http.StatusOK, resp)
}

// describeRequirements renders the requirement vector as text for the
// embedding provider. Only string-valued features carry semantic content
// worth embedding.
func describeRequirements(req recommend.Request) string {
	text := ""
	for _, key := range req.Requirements.SortedKeys() {
		if s, ok := req.Requirements[key].Str(); ok {
			if text != "" {
				text += ", "
			}
			text += key + ": " + s
		}
	}
	return text
}
