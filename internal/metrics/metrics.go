// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package metrics provides Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Pattern store operation performance and conflict rates
// - Matching and recommendation throughput
// - Embedding provider calls and circuit breaker state
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Pattern Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pattern_store_operation_duration_seconds",
			Help:    "Duration of pattern store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pattern_store_operation_errors_total",
			Help: "Total number of pattern store operation errors",
		},
		[]string{"operation", "error_type"},
	)

	StoreMutationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pattern_store_mutation_conflicts_total",
			Help: "Total number of mutations that exhausted their conflict retries",
		},
	)

	PatternLibrarySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pattern_library_size",
			Help: "Current number of patterns in the library",
		},
	)

	// Matching Metrics
	MatchRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pattern_match_requests_total",
			Help: "Total number of pattern match requests",
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pattern_match_duration_seconds",
			Help:    "Duration of pattern matching across the library in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MatchCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pattern_match_candidates_scored",
			Help:    "Number of library patterns scored per match request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// Recommendation Metrics
	RecommendationRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation ranking in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 25, 50},
		},
	)

	// Quality Report Metrics
	QualityReportsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quality_reports_saved_total",
			Help: "Total number of quality reports saved",
		},
	)

	TrendAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quality_trend_analyses_total",
			Help: "Total number of trend analyses by resulting direction",
		},
		[]string{"direction"},
	)

	// Embedding Provider Metrics
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Total number of embedding provider requests",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	EmbeddingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Duration of embedding provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreOperation records a store operation metric
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		StoreOperationErrors.WithLabelValues(operation, errorType).Inc()
	}
}

// RecordMatch records one match request across the library
func RecordMatch(duration time.Duration, candidatesScored int) {
	MatchRequestsTotal.Inc()
	MatchDuration.Observe(duration.Seconds())
	MatchCandidatesScored.Observe(float64(candidatesScored))
}

// RecordRecommendation records one recommendation request
func RecordRecommendation(duration time.Duration, returned int) {
	RecommendationRequestsTotal.Inc()
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationsReturned.Observe(float64(returned))
}

// RecordEmbeddingRequest records one embedding provider call
func RecordEmbeddingRequest(result string, duration time.Duration) {
	EmbeddingRequestsTotal.WithLabelValues(result).Inc()
	EmbeddingRequestDuration.Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
