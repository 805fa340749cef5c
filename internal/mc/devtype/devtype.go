package devtype

import "fmt"

// Kind distinguishes bit-addressable devices (contacts/coils) from
// word-addressable ones (registers).
type Kind int

const (
	Bit Kind = iota
	Word
)

// Type is a single MELSEC device, e.g. X (input) or D (data register).
type Type struct {
	Code        string // user-facing letter code, e.g. "D", "TN"
	WireCode    byte   // 1-byte device code on the 3E/4E wire
	Kind        Kind
	Hex         bool // address rendered in hex at the user boundary
	Description string
}

func (t Type) String() string { return t.Code }

// internal-only types have no wire representation: the engine writes
// them directly, they are never named in a client request.
const noWireCode = 0x00

// Device type table, plus the timer/counter pairs the ladder engine
// needs.
var (
	X  = Type{Code: "X", WireCode: 0x9C, Kind: Bit, Hex: true, Description: "input"}
	Y  = Type{Code: "Y", WireCode: 0x9D, Kind: Bit, Hex: true, Description: "output"}
	M  = Type{Code: "M", WireCode: 0x90, Kind: Bit, Description: "internal relay"}
	L  = Type{Code: "L", WireCode: 0x92, Kind: Bit, Description: "latch relay"}
	F  = Type{Code: "F", WireCode: 0x93, Kind: Bit, Description: "annunciator"}
	V  = Type{Code: "V", WireCode: 0x94, Kind: Bit, Description: "edge relay"}
	B  = Type{Code: "B", WireCode: 0xA0, Kind: Bit, Hex: true, Description: "link relay"}
	W  = Type{Code: "W", WireCode: 0xB4, Kind: Word, Hex: true, Description: "link register"}
	D  = Type{Code: "D", WireCode: 0xA8, Kind: Word, Description: "data register"}
	R  = Type{Code: "R", WireCode: 0xAF, Kind: Word, Description: "file register"}
	TN = Type{Code: "TN", WireCode: 0xC2, Kind: Word, Description: "timer current value"}
	TC = Type{Code: "TC", WireCode: 0xC0, Kind: Bit, Description: "timer contact"}
	CN = Type{Code: "CN", WireCode: 0xC5, Kind: Word, Description: "counter current value"}
	CC = Type{Code: "CC", WireCode: 0xC3, Kind: Bit, Description: "counter contact"}
	TS = Type{Code: "TS", WireCode: noWireCode, Kind: Bit, Description: "timer coil (internal, mirrors input)"}
)

// All lists every known device type, wire-addressable or not.
var All = []Type{X, Y, M, L, F, V, B, W, D, R, TN, TC, CN, CC, TS}

// byWireCode is only populated for devices a client request can name.
var byWireCode = map[byte]Type{
	X.WireCode:  X,
	Y.WireCode:  Y,
	M.WireCode:  M,
	L.WireCode:  L,
	F.WireCode:  F,
	V.WireCode:  V,
	B.WireCode:  B,
	W.WireCode:  W,
	D.WireCode:  D,
	R.WireCode:  R,
	TN.WireCode: TN,
	TC.WireCode: TC,
	CN.WireCode: CN,
	CC.WireCode: CC,
}

var byCode = func() map[string]Type {
	m := make(map[string]Type, len(All))
	for _, t := range All {
		m[t.Code] = t
	}
	return m
}()

// FromWireCode resolves the device named by a 3E/4E device-code byte.
func FromWireCode(b byte) (Type, error) {
	t, ok := byWireCode[b]
	if !ok {
		return Type{}, fmt.Errorf("devtype: unknown wire code 0x%02X", b)
	}
	return t, nil
}

// FromCode resolves a device by its user-facing letter code.
func FromCode(code string) (Type, error) {
	t, ok := byCode[code]
	if !ok {
		return Type{}, fmt.Errorf("devtype: unknown device code %q", code)
	}
	return t, nil
}

// IsBit reports whether t is bit-addressable.
func (t Type) IsBit() bool { return t.Kind == Bit }
