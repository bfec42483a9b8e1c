// Package domain holds the types and sentinel errors shared across
// ebphd's layers. It has no infrastructure dependency: everything here is
// pure data plus the interfaces that let the profile engine, the event bus,
// and the registry stay decoupled from each other's concrete types.
package domain

import "time"

// CallNumber identifies an intercepted hook point (a classic syscall number
// or a security-hook identifier — the engine is agnostic to which).
// EmptyCall is the reserved sentinel meaning "no call yet" inside a window.
type CallNumber uint16

// EmptyCall denotes an empty window slot (spec.md §3 "Call Number").
const EmptyCall CallNumber = ^CallNumber(0)

// ProfileKey is the 64-bit stable identifier derived from an executable's
// filesystem identity (device + inode, or equivalent).
type ProfileKey uint64

// ProfileStatus is one of the three states a Profile's state machine can be in.
type ProfileStatus uint8

const (
	StatusTraining ProfileStatus = iota
	StatusFrozen
	StatusNormal
)

func (s ProfileStatus) String() string {
	switch s {
	case StatusTraining:
		return "TRAINING"
	case StatusFrozen:
		return "FROZEN"
	case StatusNormal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

// Decision is the enforcement outcome for a single call (spec.md §4.E
// "Enforcement output").
type Decision uint8

const (
	Permit Decision = iota
	Deny
)

func (d Decision) String() string {
	if d == Deny {
		return "DENY"
	}
	return "PERMIT"
}

// CallEvent is what the Event Source contract (spec.md §6) delivers for
// every intercepted call.
type CallEvent struct {
	ProfileKey  ProfileKey
	Tid         int32
	Pid         int32
	Call        CallNumber
	ExePath     string // only meaningful when the profile is new
	HasExePath  bool
}

// TaskLifecycleKind distinguishes task creation, fork inheritance, and exit.
type TaskLifecycleKind uint8

const (
	TaskStart TaskLifecycleKind = iota
	TaskFork
	TaskExit
)

// TaskLifecycleEvent notifies the registry that a task was created, forked,
// or has exited (spec.md §3 "Task State" lifecycle, §6 Event Source contract).
type TaskLifecycleEvent struct {
	Kind       TaskLifecycleKind
	Tid        int32
	Pid        int32
	ParentTid  int32 // set when Kind == TaskFork
	ProfileKey ProfileKey
}

// TaskSeed describes an already-running process discovered at daemon
// startup (spec.md "Design Notes" / SPEC_FULL.md "boot-time bootstrap",
// grounded on original_source/ebph's _bootstrap_processes).
type TaskSeed struct {
	Tid        int32
	Pid        int32
	ProfileKey ProfileKey
	ExePath    string
}

// EventPublisher decouples producers (the profile engine, the registry)
// from the concrete event bus implementation.
type EventPublisher interface {
	Publish(Event)
}

// Event is the marker interface implemented by every typed event-bus record
// in spec.md §4.F.
type Event interface {
	EventKind() string
}

// NewProfileEvent fires when the registry creates a Profile for a
// previously-unseen profile key.
type NewProfileEvent struct {
	Key      ProfileKey
	Pathname string
}

func (NewProfileEvent) EventKind() string { return "new_profile" }

// AnomalyEvent fires when the anomaly engine detects one or more LPT misses
// while a profile is FROZEN/NORMAL.
type AnomalyEvent struct {
	Key       ProfileKey
	Pid       int32
	Syscall   CallNumber
	Misses    int
	TaskCount uint64
}

func (AnomalyEvent) EventKind() string { return "anomaly" }

// NewSequenceEvent fires (optionally, when LOG_SEQUENCES is set) during
// training whenever a call introduces at least one never-before-seen pair.
type NewSequenceEvent struct {
	Key          ProfileKey
	Pid          int32
	Sequence     []CallNumber // oldest-to-newest, EmptyCall entries omitted
	ProfileCount uint64       // profile.sequences after this call
	TaskCount    uint64       // task.count after this call
}

func (NewSequenceEvent) EventKind() string { return "new_sequence" }

// StartNormalEvent fires on the TRAINING → FROZEN transition.
type StartNormalEvent struct {
	Key           ProfileKey
	Pid           int32
	InTask        bool
	TaskCount     uint64
	TrainCount    uint64
	LastModCount  uint64
	ProfileCount  uint64 // the profile's train_count at promotion
	Sequences     uint64
	At            time.Time
}

func (StartNormalEvent) EventKind() string { return "start_normal" }

// StopNormalEvent fires whenever a profile leaves NORMAL for any reason.
type StopNormalEvent struct {
	Key          ProfileKey
	Pid          int32
	InTask       bool
	TaskCount    uint64
	Anomalies    uint64
	AnomalyLimit uint64
	At           time.Time
}

func (StopNormalEvent) EventKind() string { return "stop_normal" }

// TolerizeLimitEvent fires when a task's LFC reaches TOLERIZE_LIMIT.
type TolerizeLimitEvent struct {
	Key ProfileKey
	Pid int32
	Lfc int
}

func (TolerizeLimitEvent) EventKind() string { return "tolerize_limit" }
