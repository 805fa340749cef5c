// Package server implements the MELSEC MC protocol TCP server: it
// accepts one client connection at a time, decodes each request with
// the codec package, executes it against a dispatcher, and writes back
// the matching wire response.
package server
