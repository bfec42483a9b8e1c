package persist

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
)

// Store is the on-disk profile directory: one fixed-layout record per
// profile under profiles/, indexed by a sqlite database for fast
// list/show (spec.md §6 "Persisted Profile Format").
type Store struct {
	dir  string
	db   *db
	c, w int
}

// Open creates (if absent) and opens a Store rooted at dir. c and w are
// the call-space size and window size every record is encoded/decoded
// with — they must stay fixed for the lifetime of a given data directory.
func Open(dir string, c, w int) (*Store, error) {
	profilesDir := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(profilesDir, 0o700); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}
	d, err := openDB(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, db: d, c: c, w: w}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) blobPath(key profile.ProfileKey) string {
	return filepath.Join(s.dir, "profiles", fmt.Sprintf("%016x.bin", uint64(key)))
}

// Save writes p's current state to disk and refreshes its index row.
// Callers must hold p's lock for the duration of the snapshot so the
// encoded record is internally consistent.
func (s *Store) Save(p *profile.Profile) error {
	buf := Encode(p, s.c, s.w)
	if err := os.WriteFile(s.blobPath(p.Key), buf, 0o600); err != nil {
		return fmt.Errorf("%w: write blob: %v", domain.ErrPersistence, err)
	}
	return s.db.Upsert(IndexRow{
		Key:         p.Key,
		ExePath:     p.ExePath,
		Status:      uint8(p.Status),
		TrainCount:  p.TrainCount,
		NormalCount: p.NormalCount,
		Anomalies:   p.Anomalies,
		Sequences:   p.Sequences,
		LastSaved:   time.Now(),
	})
}

// SaveAll snapshots and persists every profile in profiles — the tick-
// cadence save loop internal/daemon drives (grounded on original_source's
// bpf_program.py on_tick, which periodically flushes profile state to
// disk rather than on every call). A failed save does not stop the
// remaining profiles from being saved; every failure is returned joined.
func (s *Store) SaveAll(profiles []*profile.Profile) error {
	var errs []error
	for _, p := range profiles {
		p.Lock()
		err := s.Save(p)
		p.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("save profile %016x: %w", uint64(p.Key), err))
		}
	}
	return errors.Join(errs...)
}

// Load reads a single profile's record back from disk.
func (s *Store) Load(key profile.ProfileKey) (*profile.Profile, error) {
	buf, err := os.ReadFile(s.blobPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: read blob: %v", domain.ErrPersistence, err)
	}
	return Decode(buf, s.c, s.w)
}

// LoadAll reads every persisted profile back from disk — used at daemon
// startup to repopulate the registry before any new calls arrive. A
// profile whose record cannot be read or decoded is logged and skipped.
func (s *Store) LoadAll() ([]*profile.Profile, error) {
	rows, err := s.db.List()
	if err != nil {
		return nil, err
	}
	out := make([]*profile.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := s.Load(row.Key)
		if err != nil {
			log.Printf("[persist] skipping profile %016x: %v", uint64(row.Key), err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Forget deletes a profile's on-disk record and index row (internal/cli's
// `rm`/`forget`, and the control surface's DELETE /profiles/{key}).
func (s *Store) Forget(key profile.ProfileKey) error {
	if err := os.Remove(s.blobPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove blob: %v", domain.ErrPersistence, err)
	}
	if err := s.db.Delete(key); err != nil && err != domain.ErrProfileNotFound {
		return err
	}
	return nil
}

// List returns the index summary of every persisted profile, without
// touching the LPT blobs.
func (s *Store) List() ([]IndexRow, error) { return s.db.List() }

// Show returns the index summary for a single profile.
func (s *Store) Show(key profile.ProfileKey) (*IndexRow, error) { return s.db.Get(key) }

// DiskUsage reports the total size of all persisted profile blobs, for
// the health checker's disk-pressure report.
func (s *Store) DiskUsage() (uint64, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "profiles"))
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total, nil
}
