package ladder

import (
	"time"

	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

// runProgram executes one program's instruction list head-to-tail
// using a logic accumulator plus a block stack (ANB/ORB) and a memory
// stack (MPS/MRD/MPP).
func (e *Engine) runProgram(now time.Time, prog Program) {
	var acc bool
	var blockStack []bool
	var memStack []bool

	for _, ins := range prog {
		switch ins.Op {
		case OpLD:
			acc = e.readBit(ins.Operands[0])
			blockStack = append(blockStack, acc)
		case OpLDI:
			acc = !e.readBit(ins.Operands[0])
			blockStack = append(blockStack, acc)
		case OpAND:
			acc = acc && e.readBit(ins.Operands[0])
		case OpANI:
			acc = acc && !e.readBit(ins.Operands[0])
		case OpOR:
			acc = acc || e.readBit(ins.Operands[0])
		case OpORI:
			acc = acc || !e.readBit(ins.Operands[0])

		case OpANB:
			acc = popTwoCombine(&blockStack, func(a, b bool) bool { return a && b })
			blockStack = append(blockStack, acc)
		case OpORB:
			acc = popTwoCombine(&blockStack, func(a, b bool) bool { return a || b })
			blockStack = append(blockStack, acc)

		case OpMPS:
			memStack = append(memStack, acc)
		case OpMRD:
			if len(memStack) > 0 {
				acc = memStack[len(memStack)-1]
			}
		case OpMPP:
			if len(memStack) > 0 {
				acc = memStack[len(memStack)-1]
				memStack = memStack[:len(memStack)-1]
			}

		case OpOUT:
			e.writeBit(ins.Operands[0], acc)
		case OpSET:
			if acc {
				e.writeBit(ins.Operands[0], true)
			}
		case OpRST:
			if acc {
				e.writeBit(ins.Operands[0], false)
			}

		case OpPLS:
			d := ins.Operands[0]
			key := deviceKey{d.Device, d.Addr}
			prev := e.prevBits[key]
			e.writeBit(d, acc && !prev)
			e.prevBits[key] = acc
		case OpPLF:
			d := ins.Operands[0]
			key := deviceKey{d.Device, d.Addr}
			prev := e.prevBits[key]
			e.writeBit(d, !acc && prev)
			e.prevBits[key] = acc

		case OpOutT:
			e.execOutT(now, ins, acc)
		case OpOutC:
			e.execOutC(ins, acc)
		case OpRstT:
			if acc {
				e.execRstT(ins.Operands[0].Number)
			}
		case OpRstC:
			if acc {
				e.execRstC(ins.Operands[0].Number)
			}

		case OpMOV:
			if acc {
				v := e.readWordOperand(ins.Operands[0])
				e.writeWordOperand(ins.Operands[1], v)
			}
		case OpADD, OpSUB, OpMUL, OpDIV:
			e.execArith(ins, acc)

		case OpEND:
			return
		case OpNOP:
			// no effect
		}
		// The top of the block stack holds the current block's result, so
		// ANB/ORB combine whole blocks rather than their first contacts.
		if n := len(blockStack); n > 0 {
			blockStack[n-1] = acc
		}
	}
}

func popTwoCombine(stack *[]bool, combine func(a, b bool) bool) bool {
	s := *stack
	if len(s) < 2 {
		if len(s) == 1 {
			return s[0]
		}
		return false
	}
	b := s[len(s)-1]
	a := s[len(s)-2]
	*stack = s[:len(s)-2]
	return combine(a, b)
}

func (e *Engine) readBit(op Operand) bool {
	if op.Kind != OperandDevice {
		return false
	}
	return e.store.ReadBit(op.Device, op.Addr)
}

func (e *Engine) writeBit(op Operand, v bool) {
	if op.Kind != OperandDevice {
		return
	}
	_ = e.store.WriteBit(op.Device, op.Addr, v)
}

func (e *Engine) readWordOperand(op Operand) uint16 {
	switch op.Kind {
	case OperandImmediate:
		return uint16(op.Immediate)
	case OperandDevice:
		return e.store.ReadWord(op.Device, op.Addr)
	default:
		return 0
	}
}

func (e *Engine) writeWordOperand(op Operand, v uint16) {
	if op.Kind != OperandDevice {
		return
	}
	_ = e.store.WriteWord(op.Device, op.Addr, v)
}

func (e *Engine) execArith(ins Instruction, acc bool) {
	if !acc {
		return
	}
	s1 := e.readWordOperand(ins.Operands[0])
	s2 := e.readWordOperand(ins.Operands[1])
	dst := ins.Operands[2]

	var result uint16
	switch ins.Op {
	case OpADD:
		result = s1 + s2 // 16-bit wrap by construction
	case OpSUB:
		result = s1 - s2
	case OpMUL:
		result = uint16(uint32(s1) * uint32(s2))
	case OpDIV:
		if s2 == 0 {
			return // DIV by zero silently skipped
		}
		result = s1 / s2
	}
	e.writeWordOperand(dst, result)
}

func (e *Engine) execOutT(now time.Time, ins Instruction, acc bool) {
	n := ins.Operands[0].Number
	setpoint := int(e.readWordOperand(ins.Operands[1]))
	t := e.timer(n)

	e.store.WithLock(func(l *devicestore.Locked) {
		l.WriteBit(devtype.TS, n, acc) // coil mirrors input every scan
	})

	if acc {
		if !t.Running {
			t.Running = true
			t.StartNs = now.UnixNano()
			t.Setpoint = setpoint
		}
		return
	}
	t.Running = false
	t.Current = 0
	e.store.WithLock(func(l *devicestore.Locked) {
		l.WriteWord(devtype.TN, n, 0)
		l.WriteBit(devtype.TC, n, false)
	})
}

func (e *Engine) execOutC(ins Instruction, acc bool) {
	n := ins.Operands[0].Number
	setpoint := int(e.readWordOperand(ins.Operands[1]))
	c := e.counter(n)
	c.Setpoint = setpoint

	if acc && !c.PrevInput && c.Count < setpoint {
		c.Count++
	}
	c.PrevInput = acc

	e.store.WithLock(func(l *devicestore.Locked) {
		l.WriteWord(devtype.CN, n, uint16(c.Count))
		l.WriteBit(devtype.CC, n, c.Count >= setpoint)
	})
}

func (e *Engine) execRstT(n int) {
	delete(e.timers, n)
	e.store.WithLock(func(l *devicestore.Locked) {
		l.WriteWord(devtype.TN, n, 0)
		l.WriteBit(devtype.TC, n, false)
		l.WriteBit(devtype.TS, n, false)
	})
}

func (e *Engine) execRstC(n int) {
	delete(e.counters, n)
	e.store.WithLock(func(l *devicestore.Locked) {
		l.WriteWord(devtype.CN, n, 0)
		l.WriteBit(devtype.CC, n, false)
	})
}
