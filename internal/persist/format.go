// Package persist implements the on-disk profile record format of
// spec.md §6 and the sqlite-backed index used to list/show profiles
// without loading their full LPT blobs.
package persist

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
)

// ExePathFieldLen is the fixed, NUL-padded width of the exe_path field in a
// persisted record (spec.md §6 "128-byte NUL-padded exe_path").
const ExePathFieldLen = 128

const headerLen = 8 + 8 + 1 + 8*5 + ExePathFieldLen // magic + key + status + 5 counters + exe_path

// magic ties a record to the exact (call-space size, window size, cell
// width, layout version) it was written with, so a config change that
// would silently misinterpret an old record is instead caught on load
// (domain.ErrMagicMismatch). Cell width is always 1 byte per (curr,prev)
// — spec.md §4.A's "fits one byte per cell" optimization is the one
// layout this codebase has ever produced, given as the 3rd component here
// for forward compatibility.
const layoutVersion = 1

func magic(c, w int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "ebph-profile:%d:%d:%d:%d", c, w, 1, layoutVersion)
	return h.Sum64()
}

// Encode serializes p into the fixed-layout record format of spec.md §6.
// c and w must match the dimensions p's LPTs were allocated with.
func Encode(p *profile.Profile, c, w int) []byte {
	lptLen := c * c
	buf := make([]byte, headerLen+2*lptLen)

	off := 0
	binary.LittleEndian.PutUint64(buf[off:], magic(c, w))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(p.Key))
	off += 8
	buf[off] = byte(p.Status)
	off++

	for _, v := range []uint64{p.TrainCount, p.LastModCount, p.NormalCount, p.Anomalies, p.Sequences} {
		binary.LittleEndian.PutUint64(buf[off:], v)
		off += 8
	}

	copy(buf[off:off+ExePathFieldLen], []byte(p.ExePath))
	off += ExePathFieldLen

	copy(buf[off:off+lptLen], p.TrainLPT.Bytes())
	off += lptLen
	copy(buf[off:off+lptLen], p.TestLPT.Bytes())

	return buf
}

// Decode parses a record written by Encode back into a *profile.Profile,
// allocating LPTs sized for call-space c and window w.
func Decode(buf []byte, c, w int) (*profile.Profile, error) {
	lptLen := c * c
	want := headerLen + 2*lptLen
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", domain.ErrCorruptRecord, len(buf), want)
	}

	off := 0
	got := binary.LittleEndian.Uint64(buf[off:])
	if got != magic(c, w) {
		return nil, fmt.Errorf("%w: got %#x, want %#x", domain.ErrMagicMismatch, got, magic(c, w))
	}
	if len(buf) < want {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", domain.ErrCorruptRecord, len(buf), want)
	}
	off += 8

	key := profile.ProfileKey(binary.LittleEndian.Uint64(buf[off:]))
	off += 8

	status := profile.ProfileStatus(buf[off])
	off++

	counters := make([]uint64, 5)
	for i := range counters {
		counters[i] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}

	exePath := trimNUL(buf[off : off+ExePathFieldLen])
	off += ExePathFieldLen

	p := profile.NewProfile(key, exePath, c, w)
	p.Status = status
	p.TrainCount, p.LastModCount, p.NormalCount, p.Anomalies, p.Sequences =
		counters[0], counters[1], counters[2], counters[3], counters[4]

	if err := p.TrainLPT.LoadBytes(buf[off : off+lptLen]); err != nil {
		return nil, fmt.Errorf("%w: train_lpt: %v", domain.ErrCorruptRecord, err)
	}
	off += lptLen
	if err := p.TestLPT.LoadBytes(buf[off : off+lptLen]); err != nil {
		return nil, fmt.Errorf("%w: test_lpt: %v", domain.ErrCorruptRecord, err)
	}

	return p, nil
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
