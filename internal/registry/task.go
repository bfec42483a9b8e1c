package registry

import "github.com/ebph-project/ebphd/internal/profile"

// TaskFor returns the TaskState for tid, creating one bound to
// profileKey if this is the first time tid has been seen (spec.md §3
// "Task State ... created on first call from a task, or inherited from
// parent on fork").
func (r *Registry) TaskFor(tid, pid int32, profileKey profile.ProfileKey) *profile.TaskState {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()

	if ts, ok := r.tasks[tid]; ok {
		return ts
	}
	ts := profile.NewTaskState(tid, pid, profileKey, r.w, r.l)
	r.tasks[tid] = ts
	return ts
}

// Fork registers a child task that inherits parentTid's window contents
// (spec.md §3 "window inherited from parent task on fork").
func (r *Registry) Fork(parentTid, childTid, childPid int32) *profile.TaskState {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()

	parent, ok := r.tasks[parentTid]
	if !ok {
		child := profile.NewTaskState(childTid, childPid, 0, r.w, r.l)
		r.tasks[childTid] = child
		return child
	}
	child := parent.Fork(childTid)
	child.Pid = childPid
	r.tasks[childTid] = child
	return child
}

// TaskExit drops a task's state once it has exited — the window and LFC
// ring serve no further purpose (spec.md §3 "Task State" lifecycle).
func (r *Registry) TaskExit(tid int32) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	delete(r.tasks, tid)
}

// TaskCount reports how many live tasks the registry is tracking.
func (r *Registry) TaskCount() int {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	return len(r.tasks)
}

// Tasks returns a snapshot slice of every live task — used by the `ps`
// control-surface route.
func (r *Registry) Tasks() []*profile.TaskState {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	out := make([]*profile.TaskState, 0, len(r.tasks))
	for _, ts := range r.tasks {
		out = append(out, ts)
	}
	return out
}
