package eventbus

import (
	"sync"
	"time"

	"github.com/ebph-project/ebphd/internal/domain"
)

// RateLimiter gates a high-frequency event kind to at most n occurrences
// per fixed window — used by registry.Dispatcher to keep tolerize_limit
// emission to 10 per second for the whole process (one limiter shared by
// every task and profile, not one per core) even when every task on a busy
// host is tolerizing at once (spec.md §4.F "tolerize_limit is
// rate-limited"). It is a mutex-guarded counter with an injectable clock.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time

	windowStart time.Time
	count       int
}

// NewRateLimiter returns a limiter allowing up to limit events per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now}
}

// Allow reports whether one more event may pass right now, consuming one
// slot of the current window's budget if so.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.windowStart) >= r.window {
		r.windowStart = now
		r.count = 0
	}
	if r.count >= r.limit {
		return false
	}
	r.count++
	return true
}

// PublishRateLimited publishes ev on pub only if the limiter admits it; it
// reports whether the event was actually published. pub is a
// domain.EventPublisher rather than a concrete *Bus so callers holding only
// the interface (e.g. registry.Dispatcher) can use it directly.
func (r *RateLimiter) PublishRateLimited(pub domain.EventPublisher, ev domain.Event) bool {
	if !r.Allow() {
		return false
	}
	pub.Publish(ev)
	return true
}
