package profile

import "testing"

func TestLPTRecordReturnsNewlySetOnly(t *testing.T) {
	lpt := NewLPT(8, 9)

	if !lpt.Record(2, 1, 0) {
		t.Fatalf("first Record(2,1,0) = false, want true (newly set)")
	}
	if lpt.Record(2, 1, 0) {
		t.Fatalf("second Record(2,1,0) = true, want false (already set)")
	}
	if !lpt.Test(2, 1, 0) {
		t.Fatalf("Test(2,1,0) = false after Record, want true")
	}
	if lpt.Test(2, 1, 1) {
		t.Fatalf("Test(2,1,1) = true, distance 1 was never recorded")
	}
}

func TestLPTDistinctCellsIndependent(t *testing.T) {
	lpt := NewLPT(8, 9)
	lpt.Record(3, 4, 2)

	if lpt.Test(4, 3, 2) {
		t.Fatalf("Test(4,3,2) = true, (curr,prev) swapped must be independent")
	}
	if lpt.Test(3, 4, 1) {
		t.Fatalf("Test(3,4,1) = true, distance must be independent")
	}
}

func TestLPTClearRowOnlyAffectsThatRow(t *testing.T) {
	lpt := NewLPT(4, 9)
	lpt.Record(1, 2, 0)
	lpt.Record(2, 1, 0)

	lpt.ClearRow(1)

	if lpt.Test(1, 2, 0) {
		t.Fatalf("ClearRow(1) left bit set in row 1")
	}
	if !lpt.Test(2, 1, 0) {
		t.Fatalf("ClearRow(1) cleared an unrelated row")
	}
}

func TestLPTClearAll(t *testing.T) {
	lpt := NewLPT(4, 9)
	lpt.Record(1, 2, 0)
	lpt.Record(3, 0, 5)
	lpt.ClearAll()
	if !lpt.IsZero() {
		t.Fatalf("ClearAll() did not zero every bit")
	}
}

func TestLPTCopyIntoAndEqual(t *testing.T) {
	src := NewLPT(8, 9)
	dst := NewLPT(8, 9)

	src.Record(5, 6, 3)
	src.Record(1, 1, 7)

	if src.Equal(dst) {
		t.Fatalf("freshly-copied dst already equal before CopyInto")
	}
	src.CopyInto(dst)
	if !src.Equal(dst) {
		t.Fatalf("CopyInto did not produce a bitwise-identical table")
	}

	// Mutating src afterward must not affect dst (it's a copy, not a view).
	src.Record(2, 2, 2)
	if dst.Test(2, 2, 2) {
		t.Fatalf("dst observed a mutation to src after CopyInto")
	}
}

func TestLPTLookaheadBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewLPT with W=1 should panic (lookahead depth 0)")
		}
	}()
	NewLPT(8, 1)
}

func TestLPTBytesRoundTrip(t *testing.T) {
	lpt := NewLPT(4, 9)
	lpt.Record(0, 0, 0)
	lpt.Record(3, 2, 7)

	blob := make([]byte, len(lpt.Bytes()))
	copy(blob, lpt.Bytes())

	dst := NewLPT(4, 9)
	if err := dst.LoadBytes(blob); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if !lpt.Equal(dst) {
		t.Fatalf("LoadBytes round trip produced a different table")
	}
}
