// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/courseforge/courseforge/internal/metrics"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var startTime = time.Now()

type healthResponse struct {
	Status              string  `json:"status"`
	Version             string  `json:"version"`
	GoVersion           string  `json:"go_version"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
	Store               string  `json:"store"`
	Patterns            int     `json:"patterns"`
	EmbeddingConfigured bool    `json:"embedding_configured"`
	EmbeddingAvailable  bool    `json:"embedding_available"`
}

// Health handles GET /health. The embedding probe is informational; the
// service is healthy without it. A failing store is not: it degrades the
// overall status so orchestrators restart the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:              "ok",
		Version:             Version,
		GoVersion:           runtime.Version(),
		UptimeSeconds:       time.Since(startTime).Seconds(),
		Store:               "ok",
		EmbeddingConfigured: h.embedder != nil,
	}

	status := http.StatusOK
	recs, err := h.store.List(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.Store = "error"
		status = http.StatusServiceUnavailable
	} else {
		resp.Patterns = len(recs)
		metrics.PatternLibrarySize.Set(float64(len(recs)))
	}

	if h.embedder != nil {
		resp.EmbeddingAvailable = h.embedder.Available(r.Context())
	}
	respondData(w, status, resp)
}
