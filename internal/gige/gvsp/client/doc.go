// Package client implements GVSP-C, the GVSP stream receiver: a
// single recv loop that demultiplexes packets by packet_format,
// groups Payloads by block id and packet id, and assembles a complete
// image on Trailer.
package client
