// Package mock is a deterministic, in-process eventsource.Source used by
// tests and as the source `ebphd serve` runs with, since no real
// syscall-interception backend is wired up.
package mock

import (
	"context"
	"sync"

	"github.com/ebph-project/ebphd/internal/domain"
)

// Source is a replayable mock event source: Feed/FeedLifecycle push
// events onto the channels Events()/TaskLifecycle() expose, and Decide
// calls are recorded for assertions.
type Source struct {
	events    chan domain.CallEvent
	lifecycle chan domain.TaskLifecycleEvent
	seeds     []domain.TaskSeed

	mu        sync.Mutex
	decisions []Decision
}

// Decision records one call to Decide, for test assertions.
type Decision struct {
	Pid      int32
	Decision domain.Decision
}

// New returns a Source with the given boot-time process seeds and
// channel buffer depth.
func New(seeds []domain.TaskSeed, buffer int) *Source {
	return &Source{
		events:    make(chan domain.CallEvent, buffer),
		lifecycle: make(chan domain.TaskLifecycleEvent, buffer),
		seeds:     seeds,
	}
}

func (s *Source) Events() <-chan domain.CallEvent                 { return s.events }
func (s *Source) TaskLifecycle() <-chan domain.TaskLifecycleEvent { return s.lifecycle }

// Feed enqueues a call event for the daemon to dispatch. Blocks if the
// buffer is full — tests should size the buffer generously or drain
// concurrently.
func (s *Source) Feed(ev domain.CallEvent) { s.events <- ev }

// FeedLifecycle enqueues a task lifecycle notification.
func (s *Source) FeedLifecycle(ev domain.TaskLifecycleEvent) { s.lifecycle <- ev }

func (s *Source) Decide(ctx context.Context, pid int32, d domain.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, Decision{Pid: pid, Decision: d})
	return nil
}

// Decisions returns every Decide call recorded so far.
func (s *Source) Decisions() []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Decision, len(s.decisions))
	copy(out, s.decisions)
	return out
}

func (s *Source) Bootstrap(ctx context.Context) ([]domain.TaskSeed, error) {
	return s.seeds, nil
}

// Close closes the event channels. Feed/FeedLifecycle must not be called
// afterward.
func (s *Source) Close() error {
	close(s.events)
	close(s.lifecycle)
	return nil
}
