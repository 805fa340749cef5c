package codec

import (
	"fmt"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

// DeviceDescriptorSize is the wire width of one device reference: a
// 3-byte little-endian address followed by a 1-byte device code.
const DeviceDescriptorSize = 4

// EncodeDeviceAddress serialises a device reference.
func EncodeDeviceAddress(t devtype.Type, addr int) []byte {
	out := make([]byte, DeviceDescriptorSize)
	out[0] = byte(addr)
	out[1] = byte(addr >> 8)
	out[2] = byte(addr >> 16)
	out[3] = t.WireCode
	return out
}

// DecodeDeviceAddress parses a device reference from the front of b.
func DecodeDeviceAddress(b []byte) (devtype.Type, int, error) {
	if len(b) < DeviceDescriptorSize {
		return devtype.Type{}, 0, fmt.Errorf("mc: short device descriptor: %d bytes", len(b))
	}
	addr := int(b[0]) | int(b[1])<<8 | int(b[2])<<16
	t, err := devtype.FromWireCode(b[3])
	if err != nil {
		return devtype.Type{}, 0, err
	}
	return t, addr, nil
}

// decodeDeviceAddress1E resolves a 1E device code byte that may be
// either a 3E-style wire code or the ASCII letter of the device's
// user-facing code — a heuristic kept best-effort since the two
// representations can collide for exotic callers.
func decodeDeviceAddress1E(codeByte byte, addr int) (devtype.Type, error) {
	if t, err := devtype.FromWireCode(codeByte); err == nil {
		return t, nil
	}
	if t, err := devtype.FromCode(string(rune(codeByte))); err == nil {
		return t, nil
	}
	return devtype.Type{}, fmt.Errorf("mc: unrecognised 1E device code byte 0x%02X", codeByte)
}
