// Package health provides automated health checks with best-effort
// auto-recovery over the profile persistence store, its disk usage, and
// the event bus's drop rate.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ebph-project/ebphd/internal/eventbus"
	"github.com/ebph-project/ebphd/internal/persist"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// DiskBudget is the profile-blob usage above which the disk_space check
// starts warning — not a hard filesystem free-space probe (that's
// platform-specific), but a ceiling on what the profile store is allowed
// to consume before we'd rather the operator know.
const DiskBudget uint64 = 2 * uint64(humanize.GByte)

// NewChecker creates a health checker over a profile store and an event
// bus, running the standard checks every 60 seconds.
func NewChecker(store *persist.Store, bus *eventbus.Bus) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "persist_store",
				CheckFn: func(ctx context.Context) error {
					_, err := store.List()
					return err
				},
			},
			{
				Name: "disk_space",
				CheckFn: func(ctx context.Context) error {
					used, err := store.DiskUsage()
					if err != nil {
						return fmt.Errorf("check disk usage: %w", err)
					}
					if used > DiskBudget {
						return fmt.Errorf("profile store using %s, budget is %s",
							humanize.Bytes(used), humanize.Bytes(DiskBudget))
					}
					return nil
				},
			},
			{
				Name: "eventbus_drops",
				CheckFn: func(ctx context.Context) error {
					if bus == nil {
						return nil
					}
					if d := bus.Dropped(); d > 0 {
						return fmt.Errorf("event bus has dropped %d events since start", d)
					}
					return nil
				},
				RecoverFn: func(ctx context.Context) error {
					return nil // a full bus recovers on its own once consumers catch up
				},
			},
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx) // run immediately on start

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			if check.RecoverFn != nil {
				_ = check.RecoverFn(ctx)
			}
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass (vacuously true before the
// first run).
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
