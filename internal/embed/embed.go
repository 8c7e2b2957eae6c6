// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package embed generates vector embeddings for course descriptions via an
// external embedding provider. The provider is optional: when unavailable,
// matching falls back to discrete feature similarity only.
package embed

import "context"

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Available reports whether the embedding service is reachable and
	// serves the configured model.
	Available(ctx context.Context) bool
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
