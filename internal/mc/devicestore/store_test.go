package devicestore

import (
	"testing"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

func TestWordDeviceRoundTrip(t *testing.T) {
	s := New(devtype.SeriesQ)
	if err := s.WriteWord(devtype.D, 10, 1234); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	if got := s.ReadWord(devtype.D, 10); got != 1234 {
		t.Errorf("ReadWord = %d, want 1234", got)
	}
}

func TestUnmappedReadsAreZero(t *testing.T) {
	s := New(devtype.SeriesQ)
	if got := s.ReadWord(devtype.D, 999); got != 0 {
		t.Errorf("ReadWord of unmapped addr = %d, want 0", got)
	}
	if got := s.ReadBit(devtype.M, 5); got != false {
		t.Errorf("ReadBit of unmapped addr = %v, want false", got)
	}
}

func TestBitAsWordDuality(t *testing.T) {
	s := New(devtype.SeriesQ)
	bits := []bool{true, false, true, true, false, false, false, false,
		false, false, false, false, false, false, false, true}
	for i, b := range bits {
		if err := s.WriteBit(devtype.M, 16+i, b); err != nil {
			t.Fatalf("WriteBit(%d): %v", i, err)
		}
	}
	var want uint16
	for i, b := range bits {
		if b {
			want |= 1 << uint(i)
		}
	}
	if got := s.ReadWord(devtype.M, 16); got != want {
		t.Errorf("ReadWord bit-as-word = 0x%04X, want 0x%04X", got, want)
	}
}

func TestWriteWordMirrorsIntoBits(t *testing.T) {
	s := New(devtype.SeriesQ)
	if err := s.WriteWord(devtype.M, 0, 0x0005); err != nil { // 0b0000000000000101
		t.Fatalf("WriteWord: %v", err)
	}
	if !s.ReadBit(devtype.M, 0) {
		t.Errorf("bit 0 should be set")
	}
	if s.ReadBit(devtype.M, 1) {
		t.Errorf("bit 1 should be clear")
	}
	if !s.ReadBit(devtype.M, 2) {
		t.Errorf("bit 2 should be set")
	}
}

func TestBatchWriteIsAtomicOnRangeFailure(t *testing.T) {
	s := New(devtype.SeriesQ)
	if err := s.BatchWriteWords(devtype.D, 0, []uint16{1, 2, 3}); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	before := s.BatchReadWords(devtype.D, 0, 3)

	// D's Q-series range tops out at 12287; push the batch past it so
	// the range check fails partway through.
	bad := make([]uint16, 20000)
	if err := s.BatchWriteWords(devtype.D, 0, bad); err == nil {
		t.Fatalf("expected range-check failure")
	}

	after := s.BatchReadWords(devtype.D, 0, 3)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("word %d changed after failed batch write: %d -> %d", i, before[i], after[i])
		}
	}
}

func TestResetClearsStore(t *testing.T) {
	s := New(devtype.SeriesQ)
	_ = s.WriteWord(devtype.D, 0, 42)
	_ = s.WriteBit(devtype.M, 0, true)
	s.Reset()
	if got := s.ReadWord(devtype.D, 0); got != 0 {
		t.Errorf("ReadWord after reset = %d, want 0", got)
	}
	if got := s.ReadBit(devtype.M, 0); got {
		t.Errorf("ReadBit after reset = true, want false")
	}
}

func TestOutOfRangeWordWriteRejected(t *testing.T) {
	s := New(devtype.SeriesQ)
	if err := s.WriteWord(devtype.D, 999999, 1); err == nil {
		t.Errorf("expected range error for out-of-range write")
	}
}
