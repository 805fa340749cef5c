package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/logging"
)

// serveDiagnosticsTap subscribes a WebSocketTap to bus and serves it on
// addr in the background. It never blocks startup: a bind failure is
// logged and the emulator continues without the tap.
func serveDiagnosticsTap(addr string, bus *diagnostics.Bus) error {
	tap := diagnostics.NewWebSocketTap()
	bus.Subscribe(tap)

	mux := http.NewServeMux()
	mux.Handle("/diagnostics", tap)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Error("diagnostics tap server stopped", zap.Error(err))
		}
	}()
	return nil
}
