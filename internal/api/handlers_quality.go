// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge/internal/logging"
	"github.com/courseforge/courseforge/internal/metrics"
	"github.com/courseforge/courseforge/internal/quality"
)

// reportEnvelope is a saved report with its derived classifications.
type reportEnvelope struct {
	Report       *quality.Report `json:"report"`
	QualityLevel quality.Level   `json:"quality_level"`
}

// SaveReport handles POST /api/v1/courses/{courseID}/quality/reports.
func (h *Handler) SaveReport(w http.ResponseWriter, r *http.Request) {
	var rep quality.Report
	if err := decodeJSON(r, &rep); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body", err)
		return
	}
	rep.CourseID = chi.URLParam(r, "courseID")
	if apiErr := validateRequest(&rep); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if err := rep.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	start := time.Now()
	saved, err := h.store.SaveReport(r.Context(), &rep)
	metrics.RecordStoreOperation("save_report", time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to save report", err)
		return
	}
	metrics.QualityReportsSaved.Inc()

	logging.Ctx(r.Context()).Info().
		Str("course_id", saved.CourseID).
		Float64("overall_score", saved.OverallScore).
		Str("quality_level", string(saved.Level())).
		Msg("Quality report saved")
	respondData(w, http.StatusCreated, reportEnvelope{Report: saved, QualityLevel: saved.Level()})
}

// ListReports handles GET /api/v1/courses/{courseID}/quality/reports,
// returning the series in ascending assessment-date order.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.ReportsForCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load reports", err)
		return
	}
	respondList(w, reports, len(reports))
}

// Trends handles GET /api/v1/courses/{courseID}/quality/trends.
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.ReportsForCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load reports", err)
		return
	}

	summary := quality.AnalyzeTrend(reports)
	metrics.TrendAnalysesTotal.WithLabelValues(string(summary.Trend)).Inc()
	respondData(w, http.StatusOK, summary)
}

// CompareReports handles GET /api/v1/courses/{courseID}/quality/compare,
// comparing the two most recent assessments.
func (h *Handler) CompareReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.ReportsForCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load reports", err)
		return
	}
	if len(reports) < 2 {
		respondError(w, http.StatusBadRequest, codeValidation, "Comparison needs at least two reports", nil)
		return
	}

	current := reports[len(reports)-1]
	previous := reports[len(reports)-2]
	respondData(w, http.StatusOK, quality.Compare(&current, &previous))
}
