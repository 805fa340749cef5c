// Package client implements MC protocol TCP client (MC-C): a thin,
// synchronous request/response wrapper around the codec package with a
// typed surface for batch device access and remote run-state control.
package client
