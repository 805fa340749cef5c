// Package protocol implements the GVSP wire codec: the 8-byte packet
// header shared by Leader/Payload/Trailer packets, and the Leader and
// Trailer bodies.
package protocol
