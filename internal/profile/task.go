package profile

// lfcRing is the locality-frame ring: the last L hit/miss bits observed by a
// task while its profile is FROZEN/NORMAL, plus a running popcount.
// spec.md describes T.lfc as "the popcount of the locality frame ring",
// recomputed every call; we instead track the count incrementally — flip
// the outgoing bit out of the running total, flip the incoming bit in — so
// a call's LFC update stays O(1) regardless of L, matching the non-blocking
// per-call-tier requirement (spec.md §5).
type lfcRing struct {
	bits  []bool
	pos   int
	count int // running popcount of bits
}

func newLFCRing(l int) *lfcRing {
	return &lfcRing{bits: make([]bool, l)}
}

// push records one hit/miss bit and returns the ring's updated popcount.
func (r *lfcRing) push(miss bool) int {
	outgoing := r.bits[r.pos]
	if outgoing {
		r.count--
	}
	if miss {
		r.count++
	}
	r.bits[r.pos] = miss
	r.pos = (r.pos + 1) % len(r.bits)
	return r.count
}

func (r *lfcRing) value() int { return r.count }

// TaskState is the per-task tracking record of spec.md §3 "Task State":
// a sequence window, the task's own call count, and (once its profile has
// left TRAINING) a locality-frame miss count used to drive tolerize-by-LFC.
type TaskState struct {
	Tid        int32
	Pid        int32
	ProfileKey ProfileKey

	Window *Window
	LFC    *lfcRing
}

// NewTaskState allocates a fresh task state with an empty window and a
// zeroed locality-frame ring of length l.
func NewTaskState(tid, pid int32, key ProfileKey, w, l int) *TaskState {
	return &TaskState{
		Tid:        tid,
		Pid:        pid,
		ProfileKey: key,
		Window:     NewWindow(w),
		LFC:        newLFCRing(l),
	}
}

// Fork produces a child TaskState that inherits the parent's window
// contents verbatim (spec.md §3 "window inherited from parent task on
// fork") and starts with a fresh locality-frame ring — the child hasn't
// made any FROZEN/NORMAL-tier calls of its own yet.
func (ts *TaskState) Fork(childTid int32) *TaskState {
	return &TaskState{
		Tid:        childTid,
		Pid:        ts.Pid,
		ProfileKey: ts.ProfileKey,
		Window:     ts.Window.Clone(),
		LFC:        newLFCRing(len(ts.LFC.bits)),
	}
}

// RecordCallResult pushes a hit (false) or miss (true) into the task's
// locality-frame ring and returns the ring's current popcount.
func (ts *TaskState) RecordCallResult(miss bool) int {
	return ts.LFC.push(miss)
}
