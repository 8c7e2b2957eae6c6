// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courseforge/courseforge/internal/models"
	"github.com/courseforge/courseforge/internal/pattern"
	"github.com/courseforge/courseforge/internal/quality"
)

// Key prefixes for BadgerDB storage.
const (
	patternKeyPrefix     = "pattern:"
	fingerprintKeyPrefix = "pattern_fp:"
	usageKeyPrefix       = "pattern_usage:"
	reportKeyPrefix      = "report:"
)

// BadgerStore is the durable repository. Badger transactions are
// serializable with conflict detection, which maps directly onto the
// optimistic-concurrency contract: a conflicting commit returns
// badger.ErrConflict and the mutation cycle retries against fresh state.
//
// Usage counts live under a dedicated counter key so the hot increment
// conflicts only with other increments of the same pattern, not with
// whole-record saves.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenBadger opens (or creates) a Badger-backed store at the given path.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadger(path string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty at INFO
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func patternKey(id string) []byte {
	return []byte(patternKeyPrefix + id)
}

func fingerprintKey(fp string) []byte {
	return []byte(fingerprintKeyPrefix + fp)
}

func usageKey(id string) []byte {
	return []byte(usageKeyPrefix + id)
}

// reportKeyTimeFormat is fixed-width: RFC3339Nano trims zero fractional
// seconds, and a trimmed "…00Z" sorts after "…00.5Z", breaking key order
// within one second.
const reportKeyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// reportKey orders a course's reports by assessment date, then ID for
// uniqueness, so a prefix scan yields the series in ascending order.
func reportKey(courseID string, date time.Time, id string) []byte {
	return []byte(reportKeyPrefix + courseID + ":" + date.UTC().Format(reportKeyTimeFormat) + ":" + id)
}

// Create saves a new record and assigns its identity.
func (s *BadgerStore) Create(ctx context.Context, rec *models.PatternRecord) (*models.PatternRecord, error) {
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

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(fingerprintKey(saved.Fingerprint)); err == nil {
			return ErrDuplicateFingerprint
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check fingerprint: %w", err)
		}

		data, err := json.Marshal(saved)
		if err != nil {
			return fmt.Errorf("marshal pattern: %w", err)
		}
		if err := txn.Set(patternKey(saved.ID), data); err != nil {
			return fmt.Errorf("set pattern: %w", err)
		}
		if err := txn.Set(fingerprintKey(saved.Fingerprint), []byte(saved.ID)); err != nil {
			return fmt.Errorf("set fingerprint index: %w", err)
		}
		// Versioned patterns inherit the base record's usage history, so
		// the counter must start from it; times-used never regresses.
		if saved.Usage.TimesUsed > 0 {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(saved.Usage.TimesUsed))
			if err := txn.Set(usageKey(saved.ID), buf[:]); err != nil {
				return fmt.Errorf("seed usage counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Get returns the record by ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (*models.PatternRecord, error) {
	var rec models.PatternRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, patternKey(id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByFingerprint resolves the fingerprint index, then the record.
func (s *BadgerStore) GetByFingerprint(ctx context.Context, fingerprint string) (*models.PatternRecord, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fingerprintKey(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get fingerprint index: %w", err)
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns all records.
func (s *BadgerStore) List(ctx context.Context) ([]*models.PatternRecord, error) {
	return s.scan(func(*models.PatternRecord) bool { return true })
}

// FindByType returns records of one pattern type.
func (s *BadgerStore) FindByType(ctx context.Context, t models.PatternType) ([]*models.PatternRecord, error) {
	return s.scan(func(rec *models.PatternRecord) bool { return rec.Type == t })
}

// FindBySuccessLevel returns records at one success level.
func (s *BadgerStore) FindBySuccessLevel(ctx context.Context, level models.SuccessLevel) ([]*models.PatternRecord, error) {
	return s.scan(func(rec *models.PatternRecord) bool { return rec.Level == level })
}

func (s *BadgerStore) scan(keep func(*models.PatternRecord) bool) ([]*models.PatternRecord, error) {
	out := make([]*models.PatternRecord, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(patternKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec models.PatternRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("unmarshal pattern: %w", err)
			}
			if keep(&rec) {
				clone := rec.Clone()
				out = append(out, clone)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Mutate runs the read-compute-commit cycle inside Badger transactions,
// retrying on commit conflicts.
func (s *BadgerStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.PatternRecord, error) {
	for attempt := 0; attempt < MaxMutateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var updated *models.PatternRecord
		err := s.db.Update(func(txn *badger.Txn) error {
			var rec models.PatternRecord
			if err := readJSON(txn, patternKey(id), &rec); err != nil {
				return err
			}
			oldFingerprint := rec.Fingerprint

			if err := fn(&rec); err != nil {
				return err
			}
			if err := rec.Validate(); err != nil {
				return err
			}
			rec.Level = rec.Metrics.Level()

			if rec.Fingerprint != oldFingerprint {
				if err := txn.Delete(fingerprintKey(oldFingerprint)); err != nil {
					return fmt.Errorf("drop fingerprint index: %w", err)
				}
				if err := txn.Set(fingerprintKey(rec.Fingerprint), []byte(id)); err != nil {
					return fmt.Errorf("set fingerprint index: %w", err)
				}
			}

			data, err := json.Marshal(&rec)
			if err != nil {
				return fmt.Errorf("marshal pattern: %w", err)
			}
			if err := txn.Set(patternKey(id), data); err != nil {
				return fmt.Errorf("set pattern: %w", err)
			}
			updated = &rec
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			s.logger.Debug().Str("pattern_id", id).Int("attempt", attempt+1).
				Msg("Mutation conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConflict
}

// RecordUsage increments the dedicated usage counter and folds the result
// into the record within one transaction. The counter key is the source of
// truth for times-used; the record field mirrors its committed value.
func (s *BadgerStore) RecordUsage(ctx context.Context, id, courseID string) (*models.PatternRecord, error) {
	for attempt := 0; attempt < MaxMutateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var updated *models.PatternRecord
		err := s.db.Update(func(txn *badger.Txn) error {
			var rec models.PatternRecord
			if err := readJSON(txn, patternKey(id), &rec); err != nil {
				return err
			}

			count, err := readCounter(txn, usageKey(id))
			if err != nil {
				return err
			}
			// Records written before the counter existed carry their count
			// in the record only; the counter catches up, never regresses.
			if inherited := uint64(rec.Usage.TimesUsed); count < inherited {
				count = inherited
			}
			count++
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], count)
			if err := txn.Set(usageKey(id), buf[:]); err != nil {
				return fmt.Errorf("set usage counter: %w", err)
			}

			pattern.ApplyUsage(&rec, courseID, time.Now().UTC())
			rec.Usage.TimesUsed = int64(count)

			data, err := json.Marshal(&rec)
			if err != nil {
				return fmt.Errorf("marshal pattern: %w", err)
			}
			if err := txn.Set(patternKey(id), data); err != nil {
				return fmt.Errorf("set pattern: %w", err)
			}
			updated = &rec
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConflict
}

// Delete removes the record, its fingerprint index, and its usage counter.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var rec models.PatternRecord
		if err := readJSON(txn, patternKey(id), &rec); err != nil {
			return err
		}
		if err := txn.Delete(patternKey(id)); err != nil {
			return fmt.Errorf("delete pattern: %w", err)
		}
		if err := txn.Delete(fingerprintKey(rec.Fingerprint)); err != nil {
			return fmt.Errorf("delete fingerprint index: %w", err)
		}
		if err := txn.Delete(usageKey(id)); err != nil {
			return fmt.Errorf("delete usage counter: %w", err)
		}
		return nil
	})
}

// SaveReport persists one assessment under a date-ordered key.
func (s *BadgerStore) SaveReport(ctx context.Context, rep *quality.Report) (*quality.Report, error) {
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

	data, err := json.Marshal(&saved)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(reportKey(saved.CourseID, saved.AssessmentDate, saved.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ReportsForCourse scans the course's key range; keys embed the assessment
// date so iteration order is already ascending.
func (s *BadgerStore) ReportsForCourse(ctx context.Context, courseID string) ([]quality.Report, error) {
	out := make([]quality.Report, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reportKeyPrefix + courseID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rep quality.Report
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rep)
			})
			if err != nil {
				return fmt.Errorf("unmarshal report: %w", err)
			}
			out = append(out, rep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readJSON loads and unmarshals one key, mapping missing keys to
// ErrNotFound.
func readJSON(txn *badger.Txn, key []byte, dst interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

// readCounter loads a big-endian uint64 counter, defaulting to 0.
func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter: %w", err)
	}
	var count uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter value of %d bytes", len(val))
		}
		count = binary.BigEndian.Uint64(val)
		return nil
	})
	return count, err
}
