// Package profile implements the per-executable syscall-sequence profile
// engine: the Lookahead Pair Table, the per-task sequence window, the
// Profile state machine, and the per-call anomaly engine (spec.md §3-§5).
package profile

import "sync"

// Profile is the per-executable model: spec.md §3 "Profile". One Profile
// exists per distinct ProfileKey seen since daemon start (or since load from
// disk). All fields after Key/ExePath are protected by mu — callers that
// need the per-call critical section spec.md §5 requires should hold mu for
// the shortest span that keeps a single call's bookkeeping atomic.
type Profile struct {
	mu sync.Mutex

	Key     ProfileKey
	ExePath string
	Status  ProfileStatus

	// Training/Test Counters, spec.md §4.C.
	TrainCount   uint64 // calls observed while TRAINING
	LastModCount uint64 // calls since train_lpt was last modified
	NormalCount  uint64 // calls observed while FROZEN/NORMAL
	Anomalies    uint64 // calls with at least one LPT miss while FROZEN/NORMAL, since last promotion
	Sequences    uint64 // TRAINING calls that recorded at least one new pair into train_lpt, since the last reset

	TrainLPT *LPT
	TestLPT  *LPT
}

// NewProfile allocates a fresh Profile in TRAINING, with empty LPTs sized
// for a call space of c and window w.
func NewProfile(key ProfileKey, exePath string, c, w int) *Profile {
	return &Profile{
		Key:      key,
		ExePath:  exePath,
		Status:   StatusTraining,
		TrainLPT: NewLPT(c, w),
		TestLPT:  NewLPT(c, w),
	}
}

// Lock/Unlock expose the profile's critical section to callers that must
// span multiple field reads/writes atomically (the per-call tier, the
// state machine transitions, and persistence snapshots all need this).
func (p *Profile) Lock()   { p.mu.Lock() }
func (p *Profile) Unlock() { p.mu.Unlock() }

// NormalWaitSettings is the minimal slice of settings the maturity/
// steadiness predicates need — kept narrow so Mature, Steady and
// MaybePromote take only the three numbers they read rather than a whole
// settings.Settings (engine.go builds one from the snapshot it is given).
type NormalWaitSettings struct {
	NormalWait      uint64
	NormalFactor    uint64
	NormalFactorDen uint64
}

// Mature reports train_count ≥ NORMAL_WAIT (spec.md §4.C "Maturity").
// Caller must hold p.mu.
func (p *Profile) Mature(s NormalWaitSettings) bool {
	return p.TrainCount >= s.NormalWait
}

// Steady reports last_mod_count·NORMAL_FACTOR_DEN ≥ train_count·NORMAL_FACTOR
// (spec.md §4.C "Steadiness"). Caller must hold p.mu.
func (p *Profile) Steady(s NormalWaitSettings) bool {
	return p.LastModCount*s.NormalFactorDen >= p.TrainCount*s.NormalFactor
}
