package profile

// Transition is the result of feeding a call (or an admin action) through
// the profile's state machine — it tells the caller which event, if any,
// to publish (spec.md §4.D, §4.F).
type Transition uint8

const (
	NoTransition Transition = iota
	TransitionToFrozen
	TransitionToTraining
)

// MaybePromote checks the maturity/steadiness predicates and, if both hold,
// snapshots train_lpt into test_lpt and moves the profile TRAINING → FROZEN
// (spec.md §4.D "Promotion"). Caller must hold p.mu. No-op (returns
// NoTransition) unless the profile is currently TRAINING.
func (p *Profile) MaybePromote(s NormalWaitSettings) Transition {
	if p.Status != StatusTraining {
		return NoTransition
	}
	if !p.Mature(s) || !p.Steady(s) {
		return NoTransition
	}
	return p.promote()
}

// Normalize forces the TRAINING → FROZEN transition regardless of maturity
// or steadiness — the administrative override of spec.md §4.D
// ("explicit normalize"). Caller must hold p.mu. No-op if already
// FROZEN/NORMAL.
func (p *Profile) Normalize() Transition {
	if p.Status != StatusTraining {
		return NoTransition
	}
	return p.promote()
}

func (p *Profile) promote() Transition {
	p.TrainLPT.CopyInto(p.TestLPT)
	p.Status = StatusFrozen
	p.Anomalies = 0
	return TransitionToFrozen
}

// Sensitize forces a profile (from any status, including TRAINING) back to
// TRAINING, discarding both LPTs and every counter (spec.md §4.D "sensitize
// clears train_lpt, test_lpt, and all counters" — an Any → TRAINING
// transition). Caller must hold p.mu.
func (p *Profile) Sensitize() Transition {
	p.TrainLPT.ClearAll()
	p.TestLPT.ClearAll()
	p.resetCounters()
	p.Status = StatusTraining
	return TransitionToTraining
}

// Tolerize forces a FROZEN/NORMAL profile back to TRAINING, discarding
// train_lpt and the counters but retaining test_lpt (spec.md §4.D
// "tolerize clears train_lpt and counters, retains test_lpt so testing
// keeps using what's already been learned"). Caller must hold p.mu.
func (p *Profile) Tolerize() Transition {
	if p.Status == StatusTraining {
		return NoTransition
	}
	p.TrainLPT.ClearAll()
	p.resetCounters()
	p.Status = StatusTraining
	return TransitionToTraining
}

func (p *Profile) resetCounters() {
	p.TrainCount = 0
	p.LastModCount = 0
	p.NormalCount = 0
	p.Anomalies = 0
	p.Sequences = 0
}

// RegisterAnomaly increments the anomaly counter and reports whether it has
// now reached limit — the caller (engine.go) uses this to decide whether to
// trigger an automatic Tolerize (spec.md §4.D "anomaly-limit exceedance").
// Caller must hold p.mu.
func (p *Profile) RegisterAnomaly(limit uint64) bool {
	p.Anomalies++
	return p.Anomalies >= limit
}
