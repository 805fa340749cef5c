package codec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// ParseResponse decodes a server response carried in ft's wire family,
// the inverse of EncodeResponse. Responses mirror the frame type of
// the request that produced them, so callers must already know which
// family to expect.
func ParseResponse(ft FrameType, b []byte) (endCode uint16, payload []byte, err error) {
	switch ft {
	case FrameOneE:
		if len(b) < 2 {
			return 0, nil, fmt.Errorf("mc: short 1E response")
		}
		return uint16(b[1]), append([]byte(nil), b[2:]...), nil
	case Frame3EBinary:
		return parseResponseBinary(b, false)
	case Frame4EBinary:
		return parseResponseBinary(b, true)
	case Frame3EASCII:
		return parseResponseASCII(b, false)
	case Frame4EASCII:
		return parseResponseASCII(b, true)
	default:
		return 0, nil, fmt.Errorf("mc: unknown frame type %v", ft)
	}
}

func parseResponseBinary(b []byte, fourE bool) (uint16, []byte, error) {
	off := 2
	if fourE {
		if len(b) < off+4 {
			return 0, nil, fmt.Errorf("mc: short 4E response header")
		}
		off += 4 // serial(2) + reserved(2)
	}
	const fixed = 1 + 1 + 2 + 1 + 2 + 2 // net,pc,destio,deststn,length,endcode
	if len(b) < off+fixed {
		return 0, nil, fmt.Errorf("mc: short response header")
	}
	off += 1 + 1 + 2 + 1 // skip net, pc, dest_io, dest_station
	length := binary.LittleEndian.Uint16(b[off : off+2])
	off += 2
	if len(b) < off+int(length) {
		return 0, nil, fmt.Errorf("mc: response length field exceeds buffer")
	}
	endCode := binary.LittleEndian.Uint16(b[off : off+2])
	off += 2
	payload := append([]byte(nil), b[off:]...)
	return endCode, payload, nil
}

func parseResponseASCII(b []byte, fourE bool) (uint16, []byte, error) {
	off := 4 // subheader already implied by ft
	var err error
	if fourE {
		off += 8 // serial(4) + reserved(4)
	}
	_, off, err = hexU8(b, off) // net
	if err != nil {
		return 0, nil, err
	}
	_, off, err = hexU8(b, off) // pc
	if err != nil {
		return 0, nil, err
	}
	_, off, err = hexU16(b, off) // dest_io
	if err != nil {
		return 0, nil, err
	}
	_, off, err = hexU8(b, off) // dest_station
	if err != nil {
		return 0, nil, err
	}
	length, off, err := hexU16(b, off)
	if err != nil {
		return 0, nil, err
	}
	if len(b) < off+int(length)*2 {
		return 0, nil, fmt.Errorf("mc: response length field exceeds buffer")
	}
	endCode, off, err := hexU16(b, off)
	if err != nil {
		return 0, nil, err
	}
	payload, err := hex.DecodeString(string(b[off:]))
	if err != nil {
		return 0, nil, fmt.Errorf("mc: bad response payload hex: %w", err)
	}
	return endCode, payload, nil
}
