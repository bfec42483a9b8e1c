package profile

import (
	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/settings"
)

// Engine is the per-task anomaly engine of spec.md §4.E: stateless itself,
// it dispatches a single call against a Profile+TaskState pair according to
// the profile's current status. Safe for concurrent use across different
// (Profile, TaskState) pairs; callers are responsible for holding the
// profile's own lock around a single ProcessCall (spec.md §5's "per-profile
// short critical section").
type Engine struct{}

// NewEngine returns a ready-to-use anomaly engine. Kept as a constructor
// (rather than a bare zero value) so call sites read the same way other
// component constructors in this codebase do, and so it has a home for
// future per-engine configuration.
func NewEngine() *Engine { return &Engine{} }

// Result is what ProcessCall reports back to the caller: the enforcement
// decision plus whatever should be fanned out to the event bus.
type Result struct {
	Decision Decision
	Events   []domain.Event
}

func nsettings(s settings.Settings) NormalWaitSettings {
	return NormalWaitSettings{
		NormalWait:      s.NormalWait,
		NormalFactor:    s.NormalFactor,
		NormalFactorDen: s.NormalFactorDen,
	}
}

// ProcessCall feeds one intercepted call through the engine. p and ts must
// already be associated (ts.ProfileKey == p.Key); the caller (internal/
// registry) owns resolving profile key → *Profile and task id → *TaskState
// before calling in. Caller must hold p.Lock() for the duration of the call.
func (e *Engine) ProcessCall(p *Profile, ts *TaskState, call CallNumber, s settings.Settings) Result {
	if !s.Monitoring {
		return Result{Decision: Permit}
	}

	switch p.Status {
	case StatusTraining:
		return e.processTraining(p, ts, call, s)
	default: // StatusFrozen, StatusNormal
		return e.processTesting(p, ts, call, s)
	}
}

func (e *Engine) processTraining(p *Profile, ts *TaskState, call CallNumber, s settings.Settings) Result {
	lookahead := p.TrainLPT.Lookahead()
	modified := false

	for d := 0; d < lookahead; d++ {
		prev := ts.Window.At(d)
		if prev == EmptyCall {
			continue
		}
		if p.TrainLPT.Record(call, prev, d) {
			modified = true
		}
	}

	if modified {
		p.Sequences++
	}

	ts.Window.Shift(call)
	p.TrainCount++

	if modified {
		p.LastModCount = 0
	} else {
		p.LastModCount++
	}

	var events []domain.Event
	if modified && s.LogSequences {
		events = append(events, domain.NewSequenceEvent{
			Key:          p.Key,
			Pid:          ts.Pid,
			Sequence:     ts.Window.Snapshot(),
			ProfileCount: p.Sequences,
			TaskCount:    ts.Window.Count(),
		})
	}

	if p.MaybePromote(nsettings(s)) == TransitionToFrozen {
		events = append(events, domain.StartNormalEvent{
			Key:          p.Key,
			Pid:          ts.Pid,
			InTask:       true,
			TaskCount:    ts.Window.Count(),
			TrainCount:   p.TrainCount,
			LastModCount: p.LastModCount,
			ProfileCount: p.TrainCount,
			Sequences:    p.Sequences,
		})
	}

	return Result{Decision: Permit, Events: events}
}

func (e *Engine) processTesting(p *Profile, ts *TaskState, call CallNumber, s settings.Settings) Result {
	lookahead := p.TestLPT.Lookahead()
	misses := 0

	for d := 0; d < lookahead; d++ {
		prev := ts.Window.At(d)
		if prev == EmptyCall {
			continue
		}
		if !p.TestLPT.Test(call, prev, d) {
			misses++
		}
	}

	ts.Window.Shift(call)
	p.NormalCount++

	var events []domain.Event
	decision := Permit

	if misses > 0 {
		events = append(events, domain.AnomalyEvent{
			Key:       p.Key,
			Pid:       ts.Pid,
			Syscall:   call,
			Misses:    misses,
			TaskCount: ts.Window.Count(),
		})
		if s.Enforcing {
			decision = Deny
		}

		if p.Status == StatusFrozen || p.Status == StatusNormal {
			if p.RegisterAnomaly(s.AnomalyLimit) {
				p.Tolerize()
				events = append(events, domain.StopNormalEvent{
					Key:          p.Key,
					Pid:          ts.Pid,
					InTask:       true,
					TaskCount:    ts.Window.Count(),
					Anomalies:    s.AnomalyLimit,
					AnomalyLimit: s.AnomalyLimit,
				})
			}
		}
	}

	if p.Status == StatusFrozen && p.NormalCount == 1 {
		// First successful (or first, period) test-tier call after promotion
		// flips FROZEN into the actively-enforced NORMAL state.
		p.Status = StatusNormal
	}

	lfc := ts.RecordCallResult(misses > 0)
	if uint64(lfc) >= s.TolerizeLimit && p.Status == StatusNormal {
		p.Tolerize()
		events = append(events,
			domain.TolerizeLimitEvent{Key: p.Key, Pid: ts.Pid, Lfc: lfc},
			domain.StopNormalEvent{
				Key:       p.Key,
				Pid:       ts.Pid,
				InTask:    true,
				TaskCount: ts.Window.Count(),
			},
		)
	}

	return Result{Decision: decision, Events: events}
}
