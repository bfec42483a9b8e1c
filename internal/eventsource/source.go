// Package eventsource defines the contract between ebphd and whatever
// actually intercepts syscalls/security-hook calls on the host (spec.md
// §1 "Event Source" — explicitly out of scope for this repo to implement;
// a real source is a BPF program, an LSM hook, or an audit pipeline
// feeding CallEvents in over a ring buffer). ebphd only needs the
// consumer side of that contract, captured here as an interface so
// internal/daemon can wire a mock for tests and a real implementation
// can be swapped in without touching the profile engine.
package eventsource

import (
	"context"

	"github.com/ebph-project/ebphd/internal/domain"
)

// Source is what internal/daemon pulls call and lifecycle events from,
// and pushes enforcement decisions back into, at startup.
type Source interface {
	// Events delivers one domain.CallEvent per intercepted call. Closed
	// when the source shuts down.
	Events() <-chan domain.CallEvent

	// TaskLifecycle delivers task start/fork/exit notifications.
	TaskLifecycle() <-chan domain.TaskLifecycleEvent

	// Decide reports the enforcement outcome for a call back to the
	// source, which is responsible for actually permitting/denying it at
	// the hook point. A source that only observes (MONITORING without
	// ENFORCING) may implement this as a no-op.
	Decide(ctx context.Context, pid int32, d domain.Decision) error

	// Bootstrap returns the set of already-running processes the source
	// discovered at daemon startup, so task state can be seeded before
	// any post-boot call arrives (SPEC_FULL.md "boot-time bootstrap").
	Bootstrap(ctx context.Context) ([]domain.TaskSeed, error)

	// Close releases whatever resources the source holds (BPF program,
	// ring buffer, audit socket).
	Close() error
}
