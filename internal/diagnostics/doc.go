// Package diagnostics publishes typed lifecycle events from the
// GigE-Vision and Mitsubishi-MC cores to any number of subscribed
// consumers. The emulator servers and the ladder engine raise events
// as they run; the clients publish none. Nothing downstream is
// required to be listening.
//
// One built-in consumer, WebSocketTap, upgrades an HTTP connection and
// streams events as JSON for an external monitor. It is optional: a
// server only pays for it if a tap address is configured.
package diagnostics
