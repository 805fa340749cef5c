// Package client implements GVCP-C: a synchronous UDP requester for
// discovery, register read/write, and memory read, wrapping the wire
// codec in internal/gige/gvcp/protocol with a typed surface (spec
// §4.7).
package client
