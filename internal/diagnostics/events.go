package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// Kind categorizes an Event's payload.
type Kind string

const (
	FrameSent        Kind = "frame.sent"
	FrameReceived    Kind = "frame.received"
	RegisterWritten  Kind = "register.written"
	RequestHandled   Kind = "request.handled"
	ScanCompleted    Kind = "scan.completed"
	ConnectionOpened Kind = "connection.opened"
	ConnectionClosed Kind = "connection.closed"
)

// Event is a single diagnostic occurrence from either core. Payload
// carries kind-specific detail and must be JSON-marshalable since
// WebSocketTap streams events verbatim.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Kind      Kind        `json:"kind"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// FramePayload describes a wire frame crossing a socket.
type FramePayload struct {
	RemoteAddr string `json:"remoteAddr"`
	Bytes      int    `json:"bytes"`
	HexPrefix  string `json:"hexPrefix,omitempty"`
}

// RegisterPayload describes a GVCP register or MC device write.
type RegisterPayload struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// RequestPayload describes a dispatched MC command.
type RequestPayload struct {
	Command    uint16 `json:"command"`
	SubCommand uint16 `json:"subCommand"`
	EndCode    uint16 `json:"endCode"`
}

// ScanPayload describes one ladder-logic scan cycle.
type ScanPayload struct {
	ScanNumber uint64        `json:"scanNumber"`
	Duration   time.Duration `json:"duration"`
}

// NewEvent stamps a correlation id and timestamp onto an event. now is
// threaded in rather than read from the wall clock so callers driven by
// a logical clock (tests, replay) stay deterministic.
func NewEvent(now time.Time, source string, kind Kind, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Source:    source,
		Timestamp: now,
		Payload:   payload,
	}
}
