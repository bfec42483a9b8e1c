package registry

import (
	"testing"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
	"github.com/ebph-project/ebphd/internal/settings"
)

type recordingPublisher struct {
	events []domain.Event
}

func (r *recordingPublisher) Publish(ev domain.Event) { r.events = append(r.events, ev) }

func TestGetOrCreatePublishesOnce(t *testing.T) {
	pub := &recordingPublisher{}
	reg := New(pub, 64, 9, 128)

	p1 := reg.GetOrCreate(42, "/usr/bin/sshd")
	p2 := reg.GetOrCreate(42, "/usr/bin/sshd")

	if p1 != p2 {
		t.Fatalf("GetOrCreate returned different Profile pointers for the same key")
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected exactly one new_profile event, got %d", len(pub.events))
	}
	if _, ok := pub.events[0].(domain.NewProfileEvent); !ok {
		t.Fatalf("expected a NewProfileEvent, got %T", pub.events[0])
	}
}

func TestForgetRemovesProfile(t *testing.T) {
	reg := New(nil, 64, 9, 128)
	reg.GetOrCreate(1, "/bin/a")

	if !reg.Forget(1) {
		t.Fatalf("Forget on an existing profile returned false")
	}
	if reg.Forget(1) {
		t.Fatalf("Forget on an already-forgotten profile returned true")
	}
	if reg.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after Forget", reg.Count())
	}
}

func TestTaskForkInheritsWindow(t *testing.T) {
	reg := New(nil, 64, 9, 128)
	parent := reg.TaskFor(10, 10, 1)
	parent.Window.Shift(5)
	parent.Window.Shift(6)

	child := reg.Fork(10, 11, 10)
	if child.Window.At(0) != 6 || child.Window.At(1) != 5 {
		t.Fatalf("forked child did not inherit parent window contents")
	}

	// Mutating the child afterward must not affect the parent.
	child.Window.Shift(7)
	if parent.Window.At(0) != 6 {
		t.Fatalf("mutating child window affected parent")
	}

	if reg.TaskCount() != 2 {
		t.Fatalf("TaskCount() = %d, want 2", reg.TaskCount())
	}
}

func TestTaskExitDropsState(t *testing.T) {
	reg := New(nil, 64, 9, 128)
	reg.TaskFor(5, 5, 1)
	reg.TaskExit(5)
	if reg.TaskCount() != 0 {
		t.Fatalf("TaskCount() = %d, want 0 after exit", reg.TaskCount())
	}
}

func TestDispatchDenyWhenEnforcingOnAnomaly(t *testing.T) {
	pub := &recordingPublisher{}
	reg := New(pub, 64, 9, 128)
	snap := settings.Default()
	snap.Enforcing = true
	st := settings.NewStore(snap)
	d := NewDispatcher(reg, st)

	p := reg.GetOrCreate(9, "/bin/x")
	p.Normalize()

	d.Dispatch(domain.CallEvent{ProfileKey: 9, Tid: 1, Pid: 1, Call: profile.CallNumber(1)})
	decision := d.Dispatch(domain.CallEvent{ProfileKey: 9, Tid: 1, Pid: 1, Call: profile.CallNumber(2)})

	if decision != domain.Deny {
		t.Fatalf("Dispatch decision = %v, want Deny", decision)
	}
}
