package persist

import (
	"errors"
	"testing"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const c, w = 16, 9

	p := profile.NewProfile(777, "/usr/sbin/sshd", c, w)
	p.TrainLPT.Record(2, 1, 0)
	p.TrainLPT.Record(5, 3, 4)
	p.TrainCount = 1000
	p.LastModCount = 900
	p.Sequences = 2
	p.Normalize()
	p.TestLPT.Record(9, 9, 7)

	buf := Encode(p, c, w)
	got, err := Decode(buf, c, w)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Key != p.Key || got.ExePath != p.ExePath || got.Status != p.Status {
		t.Fatalf("round trip lost identity fields: %+v", got)
	}
	if got.TrainCount != p.TrainCount || got.LastModCount != p.LastModCount || got.Sequences != p.Sequences {
		t.Fatalf("round trip lost counters: %+v", got)
	}
	if !got.TrainLPT.Equal(p.TrainLPT) {
		t.Fatalf("round trip lost train_lpt contents")
	}
	if !got.TestLPT.Equal(p.TestLPT) {
		t.Fatalf("round trip lost test_lpt contents")
	}
}

func TestDecodeRejectsMagicMismatch(t *testing.T) {
	p := profile.NewProfile(1, "/bin/a", 8, 9)
	buf := Encode(p, 8, 9)

	_, err := Decode(buf, 16, 9) // different call-space size -> different magic
	if !errors.Is(err, domain.ErrMagicMismatch) {
		t.Fatalf("Decode err = %v, want ErrMagicMismatch", err)
	}
}

func TestDecodeRejectsTruncatedRecord(t *testing.T) {
	p := profile.NewProfile(1, "/bin/a", 8, 9)
	buf := Encode(p, 8, 9)

	_, err := Decode(buf[:len(buf)-10], 8, 9)
	if !errors.Is(err, domain.ErrCorruptRecord) {
		t.Fatalf("Decode err = %v, want ErrCorruptRecord", err)
	}
}

func TestExePathLongerThanFieldIsTruncatedNotCorrupted(t *testing.T) {
	long := make([]byte, ExePathFieldLen+20)
	for i := range long {
		long[i] = 'a'
	}
	p := profile.NewProfile(1, string(long), 4, 9)
	buf := Encode(p, 4, 9)
	got, err := Decode(buf, 4, 9)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.ExePath) != ExePathFieldLen {
		t.Fatalf("ExePath len = %d, want %d (silently truncated)", len(got.ExePath), ExePathFieldLen)
	}
}
