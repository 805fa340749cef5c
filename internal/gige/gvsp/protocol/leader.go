package protocol

import (
	"encoding/binary"
	"fmt"
)

// LeaderBodySize is the fixed size of a Leader packet body.
const LeaderBodySize = 2 + 8 + 4 + 4 + 4 + 2 + 2 + 4 + 4

// Leader is the body of a GVSP Leader packet.
type Leader struct {
	PayloadType uint16
	Timestamp   uint64 // nanoseconds
	PixelFormat uint32
	Width       uint32
	Height      uint32
	OffsetX     uint16
	OffsetY     uint16
	PaddingX    uint32
	PaddingY    uint32
}

// Encode serializes the leader body.
func (l Leader) Encode() []byte {
	out := make([]byte, LeaderBodySize)
	binary.BigEndian.PutUint16(out[0:2], l.PayloadType)
	binary.BigEndian.PutUint64(out[2:10], l.Timestamp)
	binary.BigEndian.PutUint32(out[10:14], l.PixelFormat)
	binary.BigEndian.PutUint32(out[14:18], l.Width)
	binary.BigEndian.PutUint32(out[18:22], l.Height)
	binary.BigEndian.PutUint16(out[22:24], l.OffsetX)
	binary.BigEndian.PutUint16(out[24:26], l.OffsetY)
	binary.BigEndian.PutUint32(out[26:30], l.PaddingX)
	binary.BigEndian.PutUint32(out[30:34], l.PaddingY)
	return out
}

// DecodeLeader parses a Leader packet body.
func DecodeLeader(b []byte) (Leader, error) {
	if len(b) < LeaderBodySize {
		return Leader{}, fmt.Errorf("gvsp: short leader body: %d bytes", len(b))
	}
	return Leader{
		PayloadType: binary.BigEndian.Uint16(b[0:2]),
		Timestamp:   binary.BigEndian.Uint64(b[2:10]),
		PixelFormat: binary.BigEndian.Uint32(b[10:14]),
		Width:       binary.BigEndian.Uint32(b[14:18]),
		Height:      binary.BigEndian.Uint32(b[18:22]),
		OffsetX:     binary.BigEndian.Uint16(b[22:24]),
		OffsetY:     binary.BigEndian.Uint16(b[24:26]),
		PaddingX:    binary.BigEndian.Uint32(b[26:30]),
		PaddingY:    binary.BigEndian.Uint32(b[30:34]),
	}, nil
}

// TrailerBodySize is the fixed size of a Trailer packet body.
const TrailerBodySize = 2 + 2 + 4

// Trailer is the body of a GVSP Trailer packet.
type Trailer struct {
	PayloadType uint16
	SizeY       uint32
}

// Encode serializes the trailer body.
func (t Trailer) Encode() []byte {
	out := make([]byte, TrailerBodySize)
	binary.BigEndian.PutUint16(out[0:2], t.PayloadType)
	// bytes [2:4] reserved, left zero
	binary.BigEndian.PutUint32(out[4:8], t.SizeY)
	return out
}

// DecodeTrailer parses a Trailer packet body.
func DecodeTrailer(b []byte) (Trailer, error) {
	if len(b) < TrailerBodySize {
		return Trailer{}, fmt.Errorf("gvsp: short trailer body: %d bytes", len(b))
	}
	return Trailer{
		PayloadType: binary.BigEndian.Uint16(b[0:2]),
		SizeY:       binary.BigEndian.Uint32(b[4:8]),
	}, nil
}
