package registry

import (
	"time"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/eventbus"
	"github.com/ebph-project/ebphd/internal/profile"
	"github.com/ebph-project/ebphd/internal/settings"
)

// tolerizeLimitRate caps tolerize_limit emission to 10 per second across
// the whole process — one limiter per Dispatcher, not one per core
// (spec.md §4.F, §9) — even when every task on a busy host tolerizes at once.
const tolerizeLimitRate = 10

// Dispatcher wires the anomaly engine to a Registry and a Settings store:
// internal/daemon's dispatch loop calls it for every call the event source
// delivers.
type Dispatcher struct {
	reg    *Registry
	engine *profile.Engine
	store  *settings.Store

	tolerizeLimiter *eventbus.RateLimiter
}

// NewDispatcher builds a Dispatcher over reg, using store for the
// per-call tunable snapshot.
func NewDispatcher(reg *Registry, store *settings.Store) *Dispatcher {
	return &Dispatcher{
		reg:             reg,
		engine:          profile.NewEngine(),
		store:           store,
		tolerizeLimiter: eventbus.NewRateLimiter(tolerizeLimitRate, time.Second),
	}
}

// Dispatch resolves ev's profile and task, runs one call through the
// anomaly engine, publishes whatever events it produced, and returns the
// enforcement decision (spec.md §4.E, §7 "per-call tier").
func (d *Dispatcher) Dispatch(ev domain.CallEvent) domain.Decision {
	s := d.store.Get()
	if !s.Monitoring {
		return domain.Permit
	}

	exePath := ev.ExePath
	p := d.reg.GetOrCreate(ev.ProfileKey, exePath)
	ts := d.reg.TaskFor(ev.Tid, ev.Pid, ev.ProfileKey)

	p.Lock()
	res := d.engine.ProcessCall(p, ts, ev.Call, s)
	p.Unlock()

	if d.reg.pub != nil {
		for _, e := range res.Events {
			if _, ok := e.(domain.TolerizeLimitEvent); ok {
				d.tolerizeLimiter.PublishRateLimited(d.reg.pub, e)
				continue
			}
			d.reg.pub.Publish(e)
		}
	}

	if res.Decision == profile.Deny {
		return domain.Deny
	}
	return domain.Permit
}

// Seed installs the already-running processes the event source discovered
// at daemon startup, so task state exists before their first post-boot
// call arrives (SPEC_FULL.md "boot-time bootstrap", grounded on
// original_source's _bootstrap_processes).
func (d *Dispatcher) Seed(seeds []domain.TaskSeed) {
	for _, seed := range seeds {
		d.reg.GetOrCreate(seed.ProfileKey, seed.ExePath)
		d.reg.TaskFor(seed.Tid, seed.Pid, seed.ProfileKey)
	}
}

// HandleLifecycle applies a task lifecycle notification (start/fork/exit)
// to the registry (spec.md §3 Task State lifecycle).
func (d *Dispatcher) HandleLifecycle(ev domain.TaskLifecycleEvent) {
	switch ev.Kind {
	case domain.TaskStart:
		d.reg.TaskFor(ev.Tid, ev.Pid, ev.ProfileKey)
	case domain.TaskFork:
		d.reg.Fork(ev.ParentTid, ev.Tid, ev.Pid)
	case domain.TaskExit:
		d.reg.TaskExit(ev.Tid)
	}
}
