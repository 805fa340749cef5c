package ladder

import (
	"fmt"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

// Opcode identifies a single ladder instruction.
type Opcode int

const (
	OpLD Opcode = iota
	OpLDI
	OpAND
	OpANI
	OpOR
	OpORI
	OpANB
	OpORB
	OpMPS
	OpMRD
	OpMPP
	OpOUT
	OpSET
	OpRST
	OpPLS
	OpPLF
	OpOutT
	OpOutC
	OpRstT
	OpRstC
	OpMOV
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpEND
	OpNOP
)

var opcodeNames = map[Opcode]string{
	OpLD: "LD", OpLDI: "LDI", OpAND: "AND", OpANI: "ANI",
	OpOR: "OR", OpORI: "ORI", OpANB: "ANB", OpORB: "ORB",
	OpMPS: "MPS", OpMRD: "MRD", OpMPP: "MPP",
	OpOUT: "OUT", OpSET: "SET", OpRST: "RST",
	OpPLS: "PLS", OpPLF: "PLF",
	OpOutT: "OUT_T", OpOutC: "OUT_C", OpRstT: "RST_T", OpRstC: "RST_C",
	OpMOV: "MOV", OpADD: "ADD", OpSUB: "SUB", OpMUL: "MUL", OpDIV: "DIV",
	OpEND: "END", OpNOP: "NOP",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	OperandDevice OperandKind = iota
	OperandImmediate
	OperandNumber // timer/counter number
)

// Operand is one instruction argument: a device reference, an
// immediate integer, or a timer/counter number.
type Operand struct {
	Kind      OperandKind
	Device    devtype.Type
	Addr      int
	Immediate int
	Number    int
}

// Dev builds a device-reference operand.
func Dev(t devtype.Type, addr int) Operand {
	return Operand{Kind: OperandDevice, Device: t, Addr: addr}
}

// Imm builds an immediate-integer operand.
func Imm(v int) Operand {
	return Operand{Kind: OperandImmediate, Immediate: v}
}

// Num builds a timer/counter-number operand.
func Num(n int) Operand {
	return Operand{Kind: OperandNumber, Number: n}
}

// Instruction is one ladder step: an opcode plus its operand list.
type Instruction struct {
	Op       Opcode
	Operands []Operand
}

// Program is an ordered, compiled instruction list. Programs are
// added and cleared wholesale, never mutated in place.
type Program []Instruction
