package protocol

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of a GVSP packet header.
const HeaderSize = 8

// Packet formats.
const (
	FormatLeader  = 1
	FormatTrailer = 2
	FormatPayload = 3
	FormatAllIn   = 4
)

// Header is the 8-byte GVSP packet header:
// status(u16) | block_id(u16) | packet_format(u8) | packet_id(u24).
type Header struct {
	Status       uint16
	BlockID      uint16
	PacketFormat byte
	PacketID     uint32 // only the low 24 bits are meaningful
}

// Encode serializes the header followed by body.
func (h Header) Encode(body []byte) []byte {
	out := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint16(out[0:2], h.Status)
	binary.BigEndian.PutUint16(out[2:4], h.BlockID)
	out[4] = h.PacketFormat
	out[5] = byte(h.PacketID >> 16)
	out[6] = byte(h.PacketID >> 8)
	out[7] = byte(h.PacketID)
	copy(out[HeaderSize:], body)
	return out
}

// DecodeHeader parses the first 8 bytes of a GVSP packet.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("gvsp: short header: %d bytes", len(b))
	}
	return Header{
		Status:       binary.BigEndian.Uint16(b[0:2]),
		BlockID:      binary.BigEndian.Uint16(b[2:4]),
		PacketFormat: b[4],
		PacketID:     uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
	}, nil
}
