package codec

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// EncodeResponse builds the wire response for req in its own frame
// family, carrying endCode and payload. Responses always mirror the
// frame type of the request that produced them.
func EncodeResponse(req Request, endCode uint16, payload []byte) []byte {
	switch req.FrameType {
	case FrameOneE:
		return encodeResponse1E(req, endCode, payload)
	case Frame3EBinary:
		return encodeResponseBinary(0xD0, req, endCode, payload)
	case Frame4EBinary:
		return encodeResponseBinary(0xD4, req, endCode, payload)
	case Frame3EASCII:
		return encodeResponseASCII("D000", req, endCode, payload)
	case Frame4EASCII:
		return encodeResponseASCII("D400", req, endCode, payload)
	default:
		return encodeResponseBinary(0xD0, req, endCode, payload)
	}
}

func encodeResponseBinary(subheaderHigh byte, req Request, endCode uint16, payload []byte) []byte {
	var out []byte
	out = append(out, subheaderHigh, 0x00)
	if req.FrameType.IsFourE() {
		out = binary.LittleEndian.AppendUint16(out, req.SerialNo)
		out = append(out, 0x00, 0x00) // reserved
	}
	out = append(out, req.NetworkNo, req.PCNo)
	out = append(out, 0x00, 0x00) // dest_io, unused
	out = append(out, 0x00)       // dest_station, unused
	length := uint16(2 + len(payload))
	out = binary.LittleEndian.AppendUint16(out, length)
	out = binary.LittleEndian.AppendUint16(out, endCode)
	out = append(out, payload...)
	return out
}

func encodeResponseASCII(subheader string, req Request, endCode uint16, payload []byte) []byte {
	var sb strings.Builder
	sb.WriteString(subheader)
	if req.FrameType.IsFourE() {
		sb.WriteString(hexLE16(req.SerialNo))
		sb.WriteString("0000")
	}
	sb.WriteString(hexByte(req.NetworkNo))
	sb.WriteString(hexByte(req.PCNo))
	sb.WriteString("0000") // dest_io
	sb.WriteString("00")   // dest_station
	length := uint16(2 + len(payload))
	sb.WriteString(hexLE16(length))
	sb.WriteString(hexLE16(endCode))
	sb.WriteString(strings.ToUpper(hex.EncodeToString(payload)))
	return []byte(sb.String())
}

func encodeResponse1E(req Request, endCode uint16, payload []byte) []byte {
	out := make([]byte, 0, 2+len(payload))
	out = append(out, req.OneECommand|0x80, byte(endCode))
	out = append(out, payload...)
	return out
}

func hexByte(b byte) string {
	return strings.ToUpper(hex.EncodeToString([]byte{b}))
}

func hexLE16(v uint16) string {
	b := []byte{byte(v), byte(v >> 8)}
	return strings.ToUpper(hex.EncodeToString(b))
}
