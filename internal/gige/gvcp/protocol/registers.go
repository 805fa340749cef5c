package protocol

import "encoding/binary"

// EncodeReadRegisterRequest builds a Read-Register payload: a
// sequence of u32 addresses.
func EncodeReadRegisterRequest(addrs []uint32) []byte {
	out := make([]byte, 4*len(addrs))
	for i, a := range addrs {
		binary.BigEndian.PutUint32(out[i*4:], a)
	}
	return out
}

// DecodeReadRegisterRequest parses a Read-Register payload into its
// addresses.
func DecodeReadRegisterRequest(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errShort("read-register request", 4, len(b))
	}
	addrs := make([]uint32, len(b)/4)
	for i := range addrs {
		addrs[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return addrs, nil
}

// EncodeReadRegisterAck builds a Read-Register-Ack payload: a
// sequence of u32 values, one per requested address.
func EncodeReadRegisterAck(values []uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// DecodeReadRegisterAck parses a Read-Register-Ack payload.
func DecodeReadRegisterAck(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errShort("read-register ack", 4, len(b))
	}
	values := make([]uint32, len(b)/4)
	for i := range values {
		values[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return values, nil
}

// RegisterWrite is one (address, value) pair in a Write-Register
// request.
type RegisterWrite struct {
	Address uint32
	Value   uint32
}

// EncodeWriteRegisterRequest builds a Write-Register payload: a
// sequence of (address, value) u32 pairs.
func EncodeWriteRegisterRequest(writes []RegisterWrite) []byte {
	out := make([]byte, 8*len(writes))
	for i, w := range writes {
		binary.BigEndian.PutUint32(out[i*8:], w.Address)
		binary.BigEndian.PutUint32(out[i*8+4:], w.Value)
	}
	return out
}

// DecodeWriteRegisterRequest parses a Write-Register payload.
func DecodeWriteRegisterRequest(b []byte) ([]RegisterWrite, error) {
	if len(b)%8 != 0 {
		return nil, errShort("write-register request", 8, len(b))
	}
	writes := make([]RegisterWrite, len(b)/8)
	for i := range writes {
		writes[i].Address = binary.BigEndian.Uint32(b[i*8:])
		writes[i].Value = binary.BigEndian.Uint32(b[i*8+4:])
	}
	return writes, nil
}

// EncodeWriteRegisterAck builds a Write-Register-Ack payload: the
// count of registers written, as a u32 (convention: high 16 bits
// reserved, low 16 bits hold the count, matching the 32-bit-aligned
// payloads used elsewhere in GVCP).
func EncodeWriteRegisterAck(count int) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(count))
	return out
}

// DecodeWriteRegisterAck parses a Write-Register-Ack payload.
func DecodeWriteRegisterAck(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, errShort("write-register ack", 4, len(b))
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

// EncodeReadMemoryRequest builds a Read-Memory payload:
// (address u32, length u32).
func EncodeReadMemoryRequest(addr, length uint32) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[0:4], addr)
	binary.BigEndian.PutUint32(out[4:8], length)
	return out
}

// DecodeReadMemoryRequest parses a Read-Memory payload.
func DecodeReadMemoryRequest(b []byte) (addr, length uint32, err error) {
	if len(b) < 8 {
		return 0, 0, errShort("read-memory request", 8, len(b))
	}
	return binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8]), nil
}
