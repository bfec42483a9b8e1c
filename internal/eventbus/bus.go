// Package eventbus is the bounded, lossy fan-out of spec.md §4.F: the
// per-call tier never blocks on a slow consumer, so a full channel drops
// the event and bumps a counter rather than applying backpressure.
package eventbus

import (
	"sync/atomic"

	"github.com/ebph-project/ebphd/internal/domain"
)

// Bus is a multi-producer event channel; each event is received by exactly
// one reader of Events. Publish never blocks: a full buffer drops the event
// and increments Dropped.
type Bus struct {
	ch      chan domain.Event
	dropped atomic.Uint64
}

// New allocates a Bus with the given buffer depth.
func New(buffer int) *Bus {
	return &Bus{ch: make(chan domain.Event, buffer)}
}

// Publish implements domain.EventPublisher. It is safe to call from the
// per-call hot path: on a full buffer the event is dropped rather than
// blocking the caller.
func (b *Bus) Publish(ev domain.Event) {
	select {
	case b.ch <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Events returns the channel consumers should range over. The only reader
// in this codebase is internal/api's /events SSE handler, which reads this
// channel directly; with several readers, each event goes to just one.
func (b *Bus) Events() <-chan domain.Event { return b.ch }

// Dropped reports how many events have been discarded since the bus was
// created because the buffer was full when Publish was called.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }
