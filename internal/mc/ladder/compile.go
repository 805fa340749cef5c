package ladder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

// Compile parses one ladder program from text, one instruction per
// line, e.g.:
//
//	LD X0
//	OR M10
//	ANI X1
//	OUT M10
//	OUT_T T0 K50
//	END
//
// Blank lines and lines starting with "//" are ignored. Device
// operands are a device code immediately followed by a decimal (or,
// for X/Y/B/W, hex) address, e.g. X0, Y1A; timer/counter numbers use
// "T"/"C" plus a decimal number; immediates use a leading "K".
func Compile(r io.Reader) (Program, error) {
	var prog Program
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		ins, err := compileLine(line)
		if err != nil {
			return nil, fmt.Errorf("ladder: line %d: %w", lineNo, err)
		}
		prog = append(prog, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ladder: %w", err)
	}
	return prog, nil
}

var mnemonics = map[string]Opcode{
	"LD": OpLD, "LDI": OpLDI, "AND": OpAND, "ANI": OpANI,
	"OR": OpOR, "ORI": OpORI, "ANB": OpANB, "ORB": OpORB,
	"MPS": OpMPS, "MRD": OpMRD, "MPP": OpMPP,
	"OUT": OpOUT, "SET": OpSET, "RST": OpRST,
	"PLS": OpPLS, "PLF": OpPLF,
	"OUT_T": OpOutT, "OUT_C": OpOutC, "RST_T": OpRstT, "RST_C": OpRstC,
	"MOV": OpMOV, "ADD": OpADD, "SUB": OpSUB, "MUL": OpMUL, "DIV": OpDIV,
	"END": OpEND, "NOP": OpNOP,
}

func compileLine(line string) (Instruction, error) {
	fields := strings.Fields(line)
	op, ok := mnemonics[strings.ToUpper(fields[0])]
	if !ok {
		return Instruction{}, fmt.Errorf("unknown instruction %q", fields[0])
	}

	var operands []Operand
	for _, raw := range fields[1:] {
		operand, err := compileOperand(op, raw)
		if err != nil {
			return Instruction{}, fmt.Errorf("operand %q: %w", raw, err)
		}
		operands = append(operands, operand)
	}
	return Instruction{Op: op, Operands: operands}, nil
}

func compileOperand(op Opcode, raw string) (Operand, error) {
	switch {
	case strings.HasPrefix(raw, "K"):
		n, err := strconv.Atoi(raw[1:])
		if err != nil {
			return Operand{}, fmt.Errorf("bad immediate: %w", err)
		}
		return Imm(n), nil

	case (op == OpOutT || op == OpOutC || op == OpRstT || op == OpRstC) && len(raw) > 0 && (raw[0] == 'T' || raw[0] == 'C'):
		n, err := strconv.Atoi(raw[1:])
		if err != nil {
			return Operand{}, fmt.Errorf("bad timer/counter number: %w", err)
		}
		return Num(n), nil

	default:
		t, addr, err := splitDeviceOperand(raw)
		if err != nil {
			return Operand{}, err
		}
		return Dev(t, addr), nil
	}
}

// splitDeviceOperand splits a device operand like "X1A" or "D100" into
// its device type and address, trying progressively shorter code
// prefixes since codes are one or two letters (e.g. "TN", "CC").
func splitDeviceOperand(raw string) (devtype.Type, int, error) {
	for codeLen := 2; codeLen >= 1; codeLen-- {
		if len(raw) <= codeLen {
			continue
		}
		code := raw[:codeLen]
		t, err := devtype.FromCode(code)
		if err != nil {
			continue
		}
		rest := raw[codeLen:]
		base := 10
		if t.Hex {
			base = 16
		}
		addr, err := strconv.ParseInt(rest, base, 64)
		if err != nil {
			continue
		}
		return t, int(addr), nil
	}
	return devtype.Type{}, 0, fmt.Errorf("not a recognized device operand")
}
