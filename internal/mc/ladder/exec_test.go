package ladder

import (
	"testing"
	"time"

	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

func runOnce(e *Engine, prog Program) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runProgram(time.Now(), prog)
}

func TestBlockAND(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	// (X0 AND X1) ANB (X2 AND X3) -> Y0
	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpAND, Operands: []Operand{Dev(devtype.X, 1)}},
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 2)}},
		{Op: OpAND, Operands: []Operand{Dev(devtype.X, 3)}},
		{Op: OpANB},
		{Op: OpOUT, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpEND},
	}

	store.WriteBit(devtype.X, 0, true)
	store.WriteBit(devtype.X, 1, true)
	store.WriteBit(devtype.X, 2, true)
	store.WriteBit(devtype.X, 3, false)
	runOnce(e, prog)
	if store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 true with one block false, want false")
	}

	store.WriteBit(devtype.X, 3, true)
	runOnce(e, prog)
	if !store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 false with both blocks true, want true")
	}
}

func TestBlockOR(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	// (X0 AND X1) ORB (X2 AND X3) -> Y0
	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpAND, Operands: []Operand{Dev(devtype.X, 1)}},
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 2)}},
		{Op: OpAND, Operands: []Operand{Dev(devtype.X, 3)}},
		{Op: OpORB},
		{Op: OpOUT, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpEND},
	}

	store.WriteBit(devtype.X, 2, true)
	store.WriteBit(devtype.X, 3, true)
	runOnce(e, prog)
	if !store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 false with second block true, want true")
	}
}

func TestMemoryStackBranch(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	// X0 drives both Y0 and Y1 via MPS/MPP so the first branch's
	// extra AND doesn't leak into the second.
	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpMPS},
		{Op: OpAND, Operands: []Operand{Dev(devtype.X, 1)}},
		{Op: OpOUT, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpMPP},
		{Op: OpOUT, Operands: []Operand{Dev(devtype.Y, 1)}},
		{Op: OpEND},
	}

	store.WriteBit(devtype.X, 0, true)
	store.WriteBit(devtype.X, 1, false)
	runOnce(e, prog)

	if store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 true despite X1 false, want false")
	}
	if !store.ReadBit(devtype.Y, 1) {
		t.Fatalf("Y1 false, want true (restored from memory stack, unaffected by the AND)")
	}
}

func TestPulseOnRisingAndFallingEdge(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpPLS, Operands: []Operand{Dev(devtype.Y, 0)}},
		{Op: OpLD, Operands: []Operand{Dev(devtype.X, 0)}},
		{Op: OpPLF, Operands: []Operand{Dev(devtype.Y, 1)}},
		{Op: OpEND},
	}

	runOnce(e, prog) // X0 false -> false: neither pulses
	if store.ReadBit(devtype.Y, 0) || store.ReadBit(devtype.Y, 1) {
		t.Fatalf("Y0/Y1 pulsed with no edge")
	}

	store.WriteBit(devtype.X, 0, true)
	runOnce(e, prog) // rising edge
	if !store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 false on rising edge, want true")
	}
	if store.ReadBit(devtype.Y, 1) {
		t.Fatalf("Y1 true on rising edge, want false")
	}

	runOnce(e, prog) // held true: PLS is one-shot
	if store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 true on second scan held high, want false (one-shot)")
	}

	store.WriteBit(devtype.X, 0, false)
	runOnce(e, prog) // falling edge
	if store.ReadBit(devtype.Y, 0) {
		t.Fatalf("Y0 true on falling edge, want false")
	}
	if !store.ReadBit(devtype.Y, 1) {
		t.Fatalf("Y1 false on falling edge, want true")
	}
}

func TestArithmeticInstructions(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	store.WriteWord(devtype.D, 0, 10)
	store.WriteWord(devtype.D, 1, 3)

	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.M, 0)}},
		{Op: OpADD, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 2)}},
		{Op: OpSUB, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 3)}},
		{Op: OpMUL, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 4)}},
		{Op: OpDIV, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 5)}},
		{Op: OpMOV, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 6)}},
		{Op: OpEND},
	}

	// Rung condition (M0) is false: nothing executes.
	runOnce(e, prog)
	if got := store.ReadWord(devtype.D, 2); got != 0 {
		t.Fatalf("D2 = %d with rung off, want 0 (untouched)", got)
	}

	store.WriteBit(devtype.M, 0, true)
	runOnce(e, prog)

	if got := store.ReadWord(devtype.D, 2); got != 13 {
		t.Fatalf("D2 (ADD) = %d, want 13", got)
	}
	if got := store.ReadWord(devtype.D, 3); got != 7 {
		t.Fatalf("D3 (SUB) = %d, want 7", got)
	}
	if got := store.ReadWord(devtype.D, 4); got != 30 {
		t.Fatalf("D4 (MUL) = %d, want 30", got)
	}
	if got := store.ReadWord(devtype.D, 5); got != 3 {
		t.Fatalf("D5 (DIV) = %d, want 3", got)
	}
	if got := store.ReadWord(devtype.D, 6); got != 10 {
		t.Fatalf("D6 (MOV) = %d, want 10", got)
	}
}

func TestDivideByZeroIsSkipped(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	store.WriteWord(devtype.D, 0, 10)
	store.WriteWord(devtype.D, 1, 0)
	store.WriteWord(devtype.D, 2, 99)

	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.M, 0)}},
		{Op: OpDIV, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 2)}},
		{Op: OpEND},
	}
	store.WriteBit(devtype.M, 0, true)
	runOnce(e, prog)

	if got := store.ReadWord(devtype.D, 2); got != 99 {
		t.Fatalf("D2 = %d after divide by zero, want unchanged 99", got)
	}
}

func TestArithmeticWraps16Bit(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	store.WriteWord(devtype.D, 0, 65535)
	store.WriteWord(devtype.D, 1, 2)

	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.M, 0)}},
		{Op: OpADD, Operands: []Operand{Dev(devtype.D, 0), Dev(devtype.D, 1), Dev(devtype.D, 2)}},
		{Op: OpEND},
	}
	store.WriteBit(devtype.M, 0, true)
	runOnce(e, prog)

	if got := store.ReadWord(devtype.D, 2); got != 1 {
		t.Fatalf("D2 = %d, want 1 (65535+2 wraps to 1)", got)
	}
}

func TestResetTimerAndCounter(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	e := New(store, time.Millisecond)

	store.WriteWord(devtype.TN, 0, 15)
	store.WriteBit(devtype.TC, 0, true)
	store.WriteWord(devtype.CN, 0, 4)
	store.WriteBit(devtype.CC, 0, false)
	e.timers[0] = &TimerState{Running: true, Current: 15, Setpoint: 20}
	e.counters[0] = &CounterState{Count: 4, Setpoint: 5}

	prog := Program{
		{Op: OpLD, Operands: []Operand{Dev(devtype.M, 0)}},
		{Op: OpRstT, Operands: []Operand{Num(0)}},
		{Op: OpRstC, Operands: []Operand{Num(0)}},
		{Op: OpEND},
	}
	store.WriteBit(devtype.M, 0, true)
	runOnce(e, prog)

	if store.ReadBit(devtype.TC, 0) || store.ReadWord(devtype.TN, 0) != 0 {
		t.Fatalf("timer 0 not fully cleared by RST_T")
	}
	if store.ReadBit(devtype.CC, 0) || store.ReadWord(devtype.CN, 0) != 0 {
		t.Fatalf("counter 0 not fully cleared by RST_C")
	}
	if _, ok := e.timers[0]; ok {
		t.Fatalf("timer 0 bookkeeping survived RST_T")
	}
	if _, ok := e.counters[0]; ok {
		t.Fatalf("counter 0 bookkeeping survived RST_C")
	}
}
