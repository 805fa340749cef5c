package protocol

import (
	"encoding/binary"
	"fmt"
)

// Key is the fixed first byte of every GVCP packet. Packets with any
// other key byte are rejected.
const Key = 0x42

// HeaderSize is the size of both the request and the ack header.
const HeaderSize = 8

// Command codes (big-endian u16 on the wire).
const (
	CmdDiscovery      uint16 = 0x0002
	CmdDiscoveryAck   uint16 = 0x0003
	CmdReadRegister   uint16 = 0x0080
	CmdReadRegAck     uint16 = 0x0081
	CmdWriteRegister  uint16 = 0x0082
	CmdWriteRegAck    uint16 = 0x0083
	CmdReadMemory     uint16 = 0x0084
	CmdReadMemoryAck  uint16 = 0x0085
)

// Ack status codes.
const (
	StatusSuccess         uint16 = 0x0000
	StatusNotImplemented  uint16 = 0x8001
	StatusInvalidParameter uint16 = 0x8002
)

// RequestHeader is the 8-byte GVCP request header:
// key(u8) | flag(u8) | command(u16) | length(u16) | req_id(u16).
type RequestHeader struct {
	Flag    byte
	Command uint16
	Length  uint16
	ReqID   uint16
}

// DecodeRequestHeader parses the first 8 bytes of a GVCP request.
// Returns an error if the buffer is too short or the key byte is
// wrong.
func DecodeRequestHeader(b []byte) (RequestHeader, error) {
	if len(b) < HeaderSize {
		return RequestHeader{}, fmt.Errorf("gvcp: short header: %d bytes", len(b))
	}
	if b[0] != Key {
		return RequestHeader{}, fmt.Errorf("gvcp: bad key byte 0x%02x", b[0])
	}
	return RequestHeader{
		Flag:    b[1],
		Command: binary.BigEndian.Uint16(b[2:4]),
		Length:  binary.BigEndian.Uint16(b[4:6]),
		ReqID:   binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

// Encode serializes the request header followed by payload.
func (h RequestHeader) Encode(payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	out[0] = Key
	out[1] = h.Flag
	binary.BigEndian.PutUint16(out[2:4], h.Command)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(payload)))
	binary.BigEndian.PutUint16(out[6:8], h.ReqID)
	copy(out[HeaderSize:], payload)
	return out
}

// AckHeader is the 8-byte GVCP ack header:
// status(u16) | command(u16) | length(u16) | ack_id(u16).
type AckHeader struct {
	Status  uint16
	Command uint16
	Length  uint16
	AckID   uint16
}

// DecodeAckHeader parses the first 8 bytes of a GVCP ack.
func DecodeAckHeader(b []byte) (AckHeader, error) {
	if len(b) < HeaderSize {
		return AckHeader{}, fmt.Errorf("gvcp: short ack header: %d bytes", len(b))
	}
	return AckHeader{
		Status:  binary.BigEndian.Uint16(b[0:2]),
		Command: binary.BigEndian.Uint16(b[2:4]),
		Length:  binary.BigEndian.Uint16(b[4:6]),
		AckID:   binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

// Encode serializes the ack header followed by payload.
func (h AckHeader) Encode(payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(out[0:2], h.Status)
	binary.BigEndian.PutUint16(out[2:4], h.Command)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(payload)))
	binary.BigEndian.PutUint16(out[6:8], h.AckID)
	copy(out[HeaderSize:], payload)
	return out
}
