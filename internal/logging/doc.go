// Package logging provides structured logging shared by the GigE-Vision
// and Mitsubishi-MC cores.
//
// It wraps a zap logger with convenience functions for connection
// lifecycle, wire frame tracing, and dropped packets. The emulator
// servers and the GigE-Vision clients log through it; the MC client
// does not.
//
// # Log Levels
//
//   - Debug: frame-level tracing (hex dumps, packet ids, scan counters)
//   - Info: connection and state-machine transitions
//   - Warn: malformed input, dropped packets
//   - Error: unrecoverable I/O failures
//
// # Configuration
//
// Logging is silent until explicitly enabled:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// If Initialize is never called, or called with an empty level and no
// PROTOSIM_LOG_LEVEL environment variable set, the logger is a no-op.
package logging
