// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package store persists pattern records and quality reports behind a
// repository contract. Scoring components never see storage mechanics;
// they receive records and return records.
//
// Mutations follow optimistic concurrency control: read, compute, commit
// only if the stored state is unchanged, retry on conflict up to
// MaxMutateRetries, then surface ErrConflict. Usage counts additionally go
// through a dedicated counter so contended increments are never lost to
// whole-record write races.
package store

import (
	"context"
	"errors"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/quality"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a mutation lost the optimistic-concurrency
	// race MaxMutateRetries times. Retryable by the caller.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDuplicateFingerprint indicates a pattern with the same content
	// hash already exists.
	ErrDuplicateFingerprint = errors.New("pattern with identical fingerprint already exists")
)

// MaxMutateRetries bounds the read-compute-commit retry cycle.
const MaxMutateRetries = 5

// MutateFunc edits a private copy of a record inside the retry cycle. It
// must be pure apart from the record edit: it can run more than once.
type MutateFunc func(rec *models.PatternRecord) error

// PatternStore is the repository contract for the pattern library.
type PatternStore interface {
	// Create saves a new record, assigning its ID. Fails with
	// ErrDuplicateFingerprint when the content hash is already present.
	Create(ctx context.Context, rec *models.PatternRecord) (*models.PatternRecord, error)

	// Get returns the record by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.PatternRecord, error)

	// GetByFingerprint returns the record with the given content hash.
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.PatternRecord, error)

	// List returns all records.
	List(ctx context.Context) ([]*models.PatternRecord, error)

	// FindByType returns records of one pattern type.
	FindByType(ctx context.Context, t models.PatternType) ([]*models.PatternRecord, error)

	// FindBySuccessLevel returns records at one success level.
	FindBySuccessLevel(ctx context.Context, level models.SuccessLevel) ([]*models.PatternRecord, error)

	// Mutate runs fn against the current state of the record under the
	// optimistic-concurrency cycle and returns the committed result.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*models.PatternRecord, error)

	// RecordUsage applies one usage of the pattern by a course. The
	// times-used increment is atomic at the storage layer.
	RecordUsage(ctx context.Context, id, courseID string) (*models.PatternRecord, error)

	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases storage resources.
	Close() error
}

// ReportStore is the repository contract for quality report series.
type ReportStore interface {
	// SaveReport persists a new assessment, assigning its ID. Reports
	// are immutable once saved.
	SaveReport(ctx context.Context, rep *quality.Report) (*quality.Report, error)

	// ReportsForCourse returns a course's reports ordered by ascending
	// assessment date.
	ReportsForCourse(ctx context.Context, courseID string) ([]quality.Report, error)
}
