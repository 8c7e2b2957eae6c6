// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/models"
)

func openBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestBadgerStoreSuite(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) fullStore {
		return openBadgerStore(t)
	})
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenBadger(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	saved, err := s.Create(ctx, testPattern(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.RecordUsage(ctx, saved.ID, "course-a"); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBadger(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Fingerprint != saved.Fingerprint {
		t.Errorf("fingerprint changed across reopen")
	}
	if got.Usage.TimesUsed != 1 {
		t.Errorf("TimesUsed = %d after reopen, want 1", got.Usage.TimesUsed)
	}

	// The fingerprint index survives too.
	if _, err := reopened.GetByFingerprint(ctx, saved.Fingerprint); err != nil {
		t.Errorf("GetByFingerprint after reopen: %v", err)
	}
}

func TestBadgerStoreSeedsCounterFromInheritedUsage(t *testing.T) {
	ctx := context.Background()
	s := openBadgerStore(t)

	rec := testPattern(5)
	rec.Usage.TimesUsed = 7
	saved, err := s.Create(ctx, rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.Usage.TimesUsed != 7 {
		t.Fatalf("Create dropped inherited TimesUsed: %d", saved.Usage.TimesUsed)
	}

	updated, err := s.RecordUsage(ctx, saved.ID, "course-a")
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if updated.Usage.TimesUsed != 8 {
		t.Errorf("TimesUsed = %d, want 8", updated.Usage.TimesUsed)
	}
}

func TestBadgerStoreCounterCatchesUpToRecord(t *testing.T) {
	ctx := context.Background()
	s := openBadgerStore(t)

	saved, err := s.Create(ctx, testPattern(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A record whose stored count ran ahead of the counter key, as written
	// by versions of the store without the counter. Mutate touches only
	// the record.
	if _, err := s.Mutate(ctx, saved.ID, func(rec *models.PatternRecord) error {
		rec.Usage.TimesUsed = 5
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	updated, err := s.RecordUsage(ctx, saved.ID, "course-a")
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if updated.Usage.TimesUsed != 6 {
		t.Errorf("TimesUsed = %d, want 6", updated.Usage.TimesUsed)
	}
}

func TestBadgerStoreUsageCounterIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	s := openBadgerStore(t)

	saved, err := s.Create(ctx, testPattern(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const uses = 25
	for i := 0; i < uses; i++ {
		if _, err := s.RecordUsage(ctx, saved.ID, "course-a"); err != nil {
			t.Fatalf("RecordUsage %d: %v", i, err)
		}
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Usage.TimesUsed != uses {
		t.Errorf("TimesUsed = %d, want %d", got.Usage.TimesUsed, uses)
	}
	if len(got.Usage.Courses) != 1 {
		t.Errorf("Courses = %v, want single entry", got.Usage.Courses)
	}
}
