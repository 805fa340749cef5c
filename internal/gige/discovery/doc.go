// Package discovery advertises a running GVCP-S instance over mDNS so a
// LAN tool can find it before ever sending a GVCP packet. This is an
// auxiliary, non-normative discovery aid layered on top of the
// normative UDP broadcast GVCP discovery on port 3956 — the wire
// protocol itself is unaffected; zeroconf only helps a client locate
// the host:port to send that broadcast to.
package discovery
