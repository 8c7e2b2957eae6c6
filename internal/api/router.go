// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courseforge/courseforge/internal/config"
)

// NewRouter assembles the Chi router with the standard middleware stack.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware. CORS stays global so OPTIONS preflight works.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(SecurityHeaders())
	r.Use(AccessLog())

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg))
		r.Use(PrometheusMetrics())

		r.Route("/patterns", func(r chi.Router) {
			r.Post("/", h.CreatePattern)
			r.Get("/", h.ListPatterns)
			r.Post("/match", h.MatchPatterns)
			r.Post("/extract", h.ExtractFeatures)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPattern)
				r.Delete("/", h.DeletePattern)
				r.Post("/versions", h.CreateVersion)
				r.Post("/usage", h.RecordUsage)
				r.Post("/success", h.UpdateSuccess)
			})
		})

		r.Post("/recommendations", h.Recommend)

		r.Route("/courses/{courseID}/quality", func(r chi.Router) {
			r.Post("/reports", h.SaveReport)
			r.Get("/reports", h.ListReports)
			r.Get("/trends", h.Trends)
			r.Get("/compare", h.CompareReports)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, codeBadRequest, "Method not allowed", nil)
	})

	return r
}
