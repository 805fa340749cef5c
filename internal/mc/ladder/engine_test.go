package ladder

import (
	"testing"
	"time"

	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

// selfHoldProgram mirrors the classic "LD X0, OR Y0, ANI X1, OUT Y0"
// self-hold rung: Y0 latches on X0 and stays on until X1 breaks it.
func selfHoldProgram() Program {
	return Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpOR, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpANI, Operands: []Operand{Dev(devtype.X, 1)}},
		{Op: OpOUT, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpEND},
	}
}

func TestLadderSelfHold(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(selfHoldProgram())

	// X0 rises: Y0 latches true.
	store.WriteBit(devtype.X, 0, true)
	e.scan(time.Now())
	if !store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 = false after X0 rise, want true")
	}

	// X0 falls: Y0 stays latched via its own OR contact.
	store.WriteBit(devtype.X, 0, false)
	e.scan(time.Now())
	if !store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 = false after X0 release, want still latched true")
	}

	// X1 rises: self-hold broken, Y0 drops.
	store.WriteBit(devtype.X, 1, true)
	e.scan(time.Now())
	if store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 = true after X1 rise, want false")
	}
}

func timerProgram() Program {
	return Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpOutT, Operands: []Operand{Num(0), Imm(20)}},
		{Op: OpEND},
	}
}

func TestLadderTimerReachesSetpoint(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(timerProgram())

	store.WriteBit(devtype.X, 0, true)
	start := time.Now()
	e.scan(start)

	if store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 true immediately after timer start, want false")
	}

	// Advance past the 2.0s setpoint (20 * 100ms).
	e.scan(start.Add(2100 * time.Millisecond))

	if !store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 false after setpoint elapsed, want true")
	}
	if got := store.ReadWord(devtype.TN, 0); got != 20 {
		t.Fatalf("TN0 = %d, want 20 (capped at setpoint)", got)
	}

	// Further scans must not push TN0 past its setpoint.
	e.scan(start.Add(5 * time.Second))
	if got := store.ReadWord(devtype.TN, 0); got != 20 {
		t.Fatalf("TN0 = %d after long overrun, want capped at 20", got)
	}
}

func TestLadderTimerResetsOnInputDrop(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(timerProgram())

	start := time.Now()
	store.WriteBit(devtype.X, 0, true)
	e.scan(start)
	e.scan(start.Add(2100 * time.Millisecond))
	if !store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 false after setpoint elapsed, want true")
	}

	store.WriteBit(devtype.X, 0, false)
	e.scan(start.Add(2200 * time.Millisecond))

	if store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 true after input dropped, want false")
	}
	if got := store.ReadWord(devtype.TN, 0); got != 0 {
		t.Fatalf("TN0 = %d after input dropped, want 0", got)
	}
}

func counterProgram() Program {
	return Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpOutC, Operands: []Operand{Num(0), Imm(5)}},
		{Op: OpEND},
	}
}

func TestLadderCounterCountsOnPositiveEdgeOnly(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(counterProgram())

	now := time.Now()
	store.WriteBit(devtype.X, 0, true)

	// Held true across several scans without a falling edge: counts once.
	for i := 0; i < 5; i++ {
		e.scan(now)
	}
	if got := store.ReadWord(devtype.CN, 0); got != 1 {
		t.Fatalf("CN0 = %d after held-true scans, want 1 (single edge)", got)
	}
	if store.ReadBit(devtype.CC, 0) {
		t.Fatalf("CC0 true at count 1/5, want false")
	}

	for n := 1; n < 5; n++ {
		store.WriteBit(devtype.X, 0, false)
		e.scan(now)
		store.WriteBit(devtype.X, 0, true)
		e.scan(now)
	}

	if got := store.ReadWord(devtype.CN, 0); got != 5 {
		t.Fatalf("CN0 = %d after 5 edges, want 5", got)
	}
	if !store.ReadBit(devtype.CC, 0) {
		t.Fatalf("CC0 false at count 5/5, want true")
	}
}

func TestEngineStartStopIdempotent(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(selfHoldProgram())

	e.Start()
	e.Start()
	if !e.Running() {
		t.Fatalf("Running() = false after Start, want true")
	}

	time.Sleep(20 * time.Millisecond)
	e.Stop()
	e.Stop()
	if e.Running() {
		t.Fatalf("Running() = true after Stop, want false")
	}
	if e.ScanCount() == 0 {
		t.Fatalf("ScanCount() = 0 after running, want > 0")
	}
}

func TestEngineResetClearsTimerState(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)
	e.AddProgram(timerProgram())

	start := time.Now()
	store.WriteBit(devtype.X, 0, true)
	e.scan(start)
	e.scan(start.Add(2100 * time.Millisecond))
	if !store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 false before reset, want true")
	}

	e.Reset()
	if e.ScanCount() != 0 {
		t.Fatalf("ScanCount() = %d after Reset, want 0", e.ScanCount())
	}

	// Reset clears the engine's own timer bookkeeping; the device
	// memory it had written stays until whoever owns the store clears
	// it (the dispatcher's RESET command does this via store.Reset()).
	store.Reset()
	if store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 true after store.Reset, want false")
	}

	// Programs were cleared too: a further scan does nothing.
	e.scan(start.Add(3 * time.Second))
	if store.ReadBit(devtype.TC, 0) {
		t.Fatalf("TC0 true after Reset and a further scan, want false (no programs loaded)")
	}
}
