// Package protocol implements the GVCP wire codec: the 8-byte request
// and ack headers, the command set (discovery, register read/write,
// memory read), and the 256-byte discovery-ack payload.
//
// All integers are big-endian on the wire, matching the teacher's
// binary.BigEndian framing of its own protocol header.
package protocol
