// Package settings holds the process-wide tunables from spec.md §6 and
// publishes them behind a lock-free atomic pointer so the per-call hot
// path (internal/profile) never blocks on a mutex to read them (spec.md §5
// "Shared-resource policy": "readers read atomically, writers ... publish
// atomically").
package settings

import (
	"fmt"
	"sync/atomic"

	"github.com/ebph-project/ebphd/internal/domain"
)

// Settings is an immutable snapshot of every tunable in spec.md §6.
// A Store never mutates a Settings value in place — Set always builds a
// new struct and swaps the pointer, so a reader that loaded a snapshot
// keeps a internally-consistent view even if a writer runs concurrently.
type Settings struct {
	Monitoring      bool
	Enforcing       bool
	NormalWait      uint64
	NormalFactor    uint64
	NormalFactorDen uint64
	AnomalyLimit    uint64
	TolerizeLimit   uint64
	LogSequences    bool
}

// Default returns the daemon's default tunables (the same values
// internal/daemon.DefaultConfig uses).
func Default() Settings {
	return Settings{
		Monitoring:      true,
		Enforcing:       false,
		NormalWait:      128 * 4,
		NormalFactor:    3,
		NormalFactorDen: 4,
		AnomalyLimit:    30,
		TolerizeLimit:   12,
		LogSequences:    false,
	}
}

// Store publishes a Settings snapshot behind an atomic pointer.
type Store struct {
	ptr atomic.Pointer[Settings]
}

// NewStore creates a Store seeded with the given snapshot.
func NewStore(initial Settings) *Store {
	s := &Store{}
	s.ptr.Store(&initial)
	return s
}

// Get returns the current snapshot. Safe to call from the per-call hot
// path without locking.
func (s *Store) Get() Settings {
	return *s.ptr.Load()
}

// ChangeResult reports what a Set call actually did, so CLI/API layers can
// reproduce the three-way "set / already set / rejected" message the
// original ebph_admin.py / bpf_program.py produce.
type ChangeResult int

const (
	Changed ChangeResult = iota
	Unchanged
)

// Set validates and applies name=value, publishing a new snapshot on
// success. Unknown names or out-of-range values return
// domain.ErrUnknownTunable / domain.ErrTunableOutOfRange and leave the
// published snapshot untouched (spec.md §7 "TunableOutOfRange ... core
// state unchanged").
func (s *Store) Set(name string, value int64) (ChangeResult, error) {
	cur := s.Get()
	next := cur

	switch name {
	case "MONITORING":
		b, err := asBool(value)
		if err != nil {
			return 0, err
		}
		if cur.Monitoring == b {
			return Unchanged, nil
		}
		next.Monitoring = b
	case "ENFORCING":
		b, err := asBool(value)
		if err != nil {
			return 0, err
		}
		if cur.Enforcing == b {
			return Unchanged, nil
		}
		next.Enforcing = b
	case "NORMAL_WAIT":
		u, err := asUint(value)
		if err != nil {
			return 0, err
		}
		if cur.NormalWait == u {
			return Unchanged, nil
		}
		next.NormalWait = u
	case "NORMAL_FACTOR":
		u, err := asUint(value)
		if err != nil {
			return 0, err
		}
		if cur.NormalFactor == u {
			return Unchanged, nil
		}
		next.NormalFactor = u
	case "NORMAL_FACTOR_DEN":
		u, err := asUint(value)
		if err != nil {
			return 0, err
		}
		if u == 0 {
			return 0, fmt.Errorf("%w: NORMAL_FACTOR_DEN must be non-zero", domain.ErrTunableOutOfRange)
		}
		if cur.NormalFactorDen == u {
			return Unchanged, nil
		}
		next.NormalFactorDen = u
	case "ANOMALY_LIMIT":
		u, err := asUint(value)
		if err != nil {
			return 0, err
		}
		if cur.AnomalyLimit == u {
			return Unchanged, nil
		}
		next.AnomalyLimit = u
	case "TOLERIZE_LIMIT":
		u, err := asUint(value)
		if err != nil {
			return 0, err
		}
		if cur.TolerizeLimit == u {
			return Unchanged, nil
		}
		next.TolerizeLimit = u
	case "LOG_SEQUENCES":
		b, err := asBool(value)
		if err != nil {
			return 0, err
		}
		if cur.LogSequences == b {
			return Unchanged, nil
		}
		next.LogSequences = b
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownTunable, name)
	}

	s.ptr.Store(&next)
	return Changed, nil
}

func asBool(v int64) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: boolean tunable must be 0 or 1, got %d", domain.ErrTunableOutOfRange, v)
	}
}

func asUint(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: must be a non-negative integer, got %d", domain.ErrTunableOutOfRange, v)
	}
	return uint64(v), nil
}
