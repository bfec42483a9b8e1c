// Package registry is the process-wide map from ProfileKey to the live
// *profile.Profile, and from (tid) to the live *profile.TaskState
// (spec.md §3 "Profile Registry", "Task creation/lookup"). It is the one
// place that creates a Profile on first sight of an executable and fires
// the resulting new_profile event.
package registry

import (
	"sync"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
)

const shardCount = 32

type profileShard struct {
	mu       sync.Mutex
	profiles map[profile.ProfileKey]*profile.Profile
}

// Registry owns every live Profile and TaskState for the daemon's
// lifetime. Profile lookups are sharded by key to keep the create-on-
// first-sight path from serializing unrelated executables against each
// other (spec.md §5 "concurrent profile access").
type Registry struct {
	shards [shardCount]*profileShard
	pub    domain.EventPublisher

	c, w, l int // call-space size, window size, locality-frame length new profiles are built with

	tasksMu sync.Mutex
	tasks   map[int32]*profile.TaskState
}

// New creates an empty Registry. c/w/l size every Profile/TaskState it
// creates; pub receives the new_profile event fired on first sight of a
// profile key.
func New(pub domain.EventPublisher, c, w, l int) *Registry {
	r := &Registry{pub: pub, c: c, w: w, l: l, tasks: make(map[int32]*profile.TaskState)}
	for i := range r.shards {
		r.shards[i] = &profileShard{profiles: make(map[profile.ProfileKey]*profile.Profile)}
	}
	return r
}

func (r *Registry) shardFor(key profile.ProfileKey) *profileShard {
	return r.shards[uint64(key)%uint64(shardCount)]
}

// GetOrCreate returns the Profile for key, creating (and publishing a
// new_profile event for) one if this is the first time key has been seen.
func (r *Registry) GetOrCreate(key profile.ProfileKey, exePath string) *profile.Profile {
	shard := r.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if p, ok := shard.profiles[key]; ok {
		return p
	}
	p := profile.NewProfile(key, exePath, r.c, r.w)
	shard.profiles[key] = p
	if r.pub != nil {
		r.pub.Publish(domain.NewProfileEvent{Key: key, Pathname: exePath})
	}
	return p
}

// Lookup returns the Profile for key without creating one.
func (r *Registry) Lookup(key profile.ProfileKey) (*profile.Profile, bool) {
	shard := r.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	p, ok := shard.profiles[key]
	return p, ok
}

// Forget removes a profile from the registry entirely — an operational
// affordance the original admin tooling didn't expose (it could only
// sensitize/tolerize/normalize a profile, never delete its in-memory
// state), added here so the control surface's DELETE /profiles/{key} can
// drop a stale profile without a daemon restart.
func (r *Registry) Forget(key profile.ProfileKey) bool {
	shard := r.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.profiles[key]; !ok {
		return false
	}
	delete(shard.profiles, key)
	return true
}

// All returns a snapshot slice of every profile currently registered —
// used by persistence's SaveAll and by the API's profile-list handler.
func (r *Registry) All() []*profile.Profile {
	out := make([]*profile.Profile, 0)
	for _, shard := range r.shards {
		shard.mu.Lock()
		for _, p := range shard.profiles {
			out = append(out, p)
		}
		shard.mu.Unlock()
	}
	return out
}

// Restore installs a Profile loaded from disk into the registry, for use
// at daemon startup (internal/persist.Store.LoadAll feeds this).
func (r *Registry) Restore(p *profile.Profile) {
	shard := r.shardFor(p.Key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.profiles[p.Key] = p
}

// Count reports how many distinct profiles are currently registered.
func (r *Registry) Count() int {
	n := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		n += len(shard.profiles)
		shard.mu.Unlock()
	}
	return n
}
