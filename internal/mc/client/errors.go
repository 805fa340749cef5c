package client

import "errors"

// ErrNotConnected is returned by any request made after Close.
var ErrNotConnected = errors.New("mc: not connected")

// ErrTimeout is returned when a response does not arrive within the
// client's configured timeout.
var ErrTimeout = errors.New("mc: timeout waiting for response")
