// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/quality"
)

// memEntry pairs a record with its revision counter for CAS commits.
type memEntry struct {
	rec *models.PatternRecord
	rev uint64
}

// MemoryStore is the in-memory repository. It backs tests and single-node
// deployments that opt out of durable storage; the optimistic-concurrency
// semantics are identical to the Badger store.
type MemoryStore struct {
	mu          sync.RWMutex
	patterns    map[string]*memEntry
	fingerprint map[string]string // fingerprint -> id
	reports     map[string][]quality.Report
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patterns:    make(map[string]*memEntry),
		fingerprint: make(map[string]string),
		reports:     make(map[string][]quality.Report),
	}
}

// Create saves a new record and assigns its identity.
func (s *MemoryStore) Create(ctx context.Context, rec *models.PatternRecord) (*models.PatternRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	saved := rec.Clone()
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.Version == "" {
		saved.Version = pattern.InitialVersion
	}
	if saved.Fingerprint == "" {
		saved.Fingerprint = pattern.Fingerprint(saved.Type, saved.Category, saved.Features)
	}
	saved.Level = saved.Metrics.Level()
	now := time.Now().UTC()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fingerprint[saved.Fingerprint]; exists {
		return nil, ErrDuplicateFingerprint
	}
	s.patterns[saved.ID] = &memEntry{rec: saved}
	s.fingerprint[saved.Fingerprint] = saved.ID
	return saved.Clone(), nil
}

// Get returns the record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.PatternRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.patterns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.rec.Clone(), nil
}

// GetByFingerprint returns the record with the given content hash.
func (s *MemoryStore) GetByFingerprint(ctx context.Context, fingerprint string) (*models.PatternRecord, error) {
	s.mu.RLock()
	id, ok := s.fingerprint[fingerprint]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// List returns all records.
func (s *MemoryStore) List(ctx context.Context) ([]*models.PatternRecord, error) {
	return s.filter(func(*models.PatternRecord) bool { return true })
}

// FindByType returns records of one pattern type.
func (s *MemoryStore) FindByType(ctx context.Context, t models.PatternType) ([]*models.PatternRecord, error) {
	return s.filter(func(rec *models.PatternRecord) bool { return rec.Type == t })
}

// FindBySuccessLevel returns records at one success level.
func (s *MemoryStore) FindBySuccessLevel(ctx context.Context, level models.SuccessLevel) ([]*models.PatternRecord, error) {
	return s.filter(func(rec *models.PatternRecord) bool { return rec.Level == level })
}

func (s *MemoryStore) filter(keep func(*models.PatternRecord) bool) ([]*models.PatternRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.PatternRecord, 0)
	for _, entry := range s.patterns {
		if keep(entry.rec) {
			out = append(out, entry.rec.Clone())
		}
	}
	// Deterministic order for callers and tests.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Mutate runs the read-compute-commit cycle with a revision CAS.
func (s *MemoryStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.PatternRecord, error) {
	for attempt := 0; attempt < MaxMutateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.RLock()
		entry, ok := s.patterns[id]
		if !ok {
			s.mu.RUnlock()
			return nil, ErrNotFound
		}
		snapshot := entry.rec.Clone()
		rev := entry.rev
		s.mu.RUnlock()

		if err := fn(snapshot); err != nil {
			return nil, err
		}
		if err := snapshot.Validate(); err != nil {
			return nil, err
		}
		snapshot.Level = snapshot.Metrics.Level()

		s.mu.Lock()
		entry, ok = s.patterns[id]
		if !ok {
			s.mu.Unlock()
			return nil, ErrNotFound
		}
		if entry.rev != rev {
			// Lost the race; retry against the fresh state.
			s.mu.Unlock()
			continue
		}
		if snapshot.Fingerprint != entry.rec.Fingerprint {
			delete(s.fingerprint, entry.rec.Fingerprint)
			s.fingerprint[snapshot.Fingerprint] = id
		}
		entry.rec = snapshot
		entry.rev++
		s.mu.Unlock()
		return snapshot.Clone(), nil
	}
	return nil, ErrConflict
}

// RecordUsage applies one usage under the write lock. Holding the lock for
// the whole increment is what makes the counter atomic here; the Badger
// store uses a dedicated counter key for the same guarantee.
func (s *MemoryStore) RecordUsage(ctx context.Context, id, courseID string) (*models.PatternRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.patterns[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := entry.rec.Clone()
	pattern.ApplyUsage(updated, courseID, time.Now().UTC())
	entry.rec = updated
	entry.rev++
	return updated.Clone(), nil
}

// Delete removes the record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.patterns[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.fingerprint, entry.rec.Fingerprint)
	delete(s.patterns, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// SaveReport appends an assessment to the course's series.
func (s *MemoryStore) SaveReport(ctx context.Context, rep *quality.Report) (*quality.Report, error) {
	if err := rep.Validate(); err != nil {
		return nil, err
	}

	saved := *rep
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.AssessmentDate.IsZero() {
		saved.AssessmentDate = time.Now().UTC()
	}

	s.mu.Lock()
	s.reports[saved.CourseID] = append(s.reports[saved.CourseID], saved)
	s.mu.Unlock()
	return &saved, nil
}

// ReportsForCourse returns the series ordered by ascending assessment date.
func (s *MemoryStore) ReportsForCourse(ctx context.Context, courseID string) ([]quality.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.reports[courseID]
	out := make([]quality.Report, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssessmentDate.Before(out[j].AssessmentDate)
	})
	return out, nil
}
