// Package server implements GVCP-S, the GigE Vision discovery/control
// server: a UDP listener on port 3956 that answers discovery, serves
// bootstrap register reads/writes, and triggers the side effects spec
// §4.1 calls out (stream destination capture, control-channel
// privilege with heartbeat expiry, acquisition start/stop).
package server
