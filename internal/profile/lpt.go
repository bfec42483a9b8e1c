package profile

import "fmt"

// MaxLookahead is the number of lookahead-distance bits a single LPT cell
// can hold. spec.md §4.A: canonical W = 9 gives a lookahead depth of W-1 = 8,
// "which fits one byte per (curr,prev) cell — a core size optimization".
// That optimization is the reason W-1 is bounded here rather than packed
// across bytes.
const MaxLookahead = 8

// LPT is the Lookahead Pair Table of spec.md §4.A: a dense bitmap over
// (current call, prior call, lookahead distance) of shape
// [C][C][W-1], stored as a flat C*C byte array with one byte per
// (curr, prev) cell holding the W-1 lookahead bits.
type LPT struct {
	c         int
	lookahead int // W - 1
	bits      []byte
}

// NewLPT allocates a zeroed LPT for a call space of size c and window size w.
func NewLPT(c, w int) *LPT {
	lookahead := w - 1
	if lookahead < 1 || lookahead > MaxLookahead {
		panic(fmt.Sprintf("profile: window size %d gives lookahead depth %d, must be in [1,%d]", w, lookahead, MaxLookahead))
	}
	return &LPT{
		c:         c,
		lookahead: lookahead,
		bits:      make([]byte, c*c),
	}
}

func (t *LPT) cellIndex(curr, prev CallNumber) int {
	return int(curr)*t.c + int(prev)
}

// Record sets the bit at [curr][prev][d]. It returns true iff the bit was
// previously unset — callers use this to drive last_mod_count resets and
// the `sequences` counter (spec.md §4.A, §4.E, §9 "Sequence-new detection").
func (t *LPT) Record(curr, prev CallNumber, d int) bool {
	idx := t.cellIndex(curr, prev)
	bit := byte(1) << uint(d)
	if t.bits[idx]&bit != 0 {
		return false
	}
	t.bits[idx] |= bit
	return true
}

// Test reports whether [curr][prev][d] has ever been recorded.
func (t *LPT) Test(curr, prev CallNumber, d int) bool {
	idx := t.cellIndex(curr, prev)
	bit := byte(1) << uint(d)
	return t.bits[idx]&bit != 0
}

// ClearRow zeroes every bit with first index curr (used by a per-call-
// granularity sensitize; spec.md §4.A notes the canonical implementation
// may instead ClearAll — see SPEC_FULL / DESIGN for that choice).
func (t *LPT) ClearRow(curr CallNumber) {
	start := int(curr) * t.c
	row := t.bits[start : start+t.c]
	for i := range row {
		row[i] = 0
	}
}

// ClearAll zeroes the entire table.
func (t *LPT) ClearAll() {
	for i := range t.bits {
		t.bits[i] = 0
	}
}

// CopyInto bitwise-copies t into other. Both must share the same dimensions
// (true for train_lpt/test_lpt of a single Profile). Used to promote
// train_lpt into test_lpt at the TRAINING → FROZEN transition.
func (t *LPT) CopyInto(other *LPT) {
	copy(other.bits, t.bits)
}

// Equal reports whether two LPTs hold identical bits — used by the
// TRAINING→FROZEN property test (spec.md §8) and by persistence round-trip
// tests.
func (t *LPT) Equal(other *LPT) bool {
	if t.c != other.c || t.lookahead != other.lookahead {
		return false
	}
	if len(t.bits) != len(other.bits) {
		return false
	}
	for i := range t.bits {
		if t.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every bit in the table is unset — used by the
// "test_lpt remains all-zero during TRAINING" property test.
func (t *LPT) IsZero() bool {
	for _, b := range t.bits {
		if b != 0 {
			return false
		}
	}
	return true
}

// Bytes exposes the raw backing array for persistence encode/decode.
// Callers must not retain the slice across a ClearAll/Record.
func (t *LPT) Bytes() []byte { return t.bits }

// LoadBytes replaces the table's contents from a persisted blob of the
// same length.
func (t *LPT) LoadBytes(b []byte) error {
	if len(b) != len(t.bits) {
		return fmt.Errorf("profile: LPT blob has %d bytes, want %d", len(b), len(t.bits))
	}
	copy(t.bits, b)
	return nil
}

// Lookahead returns W-1, the configured lookahead depth.
func (t *LPT) Lookahead() int { return t.lookahead }

// CallSpace returns C, the configured call-space size.
func (t *LPT) CallSpace() int { return t.c }
