package protocol

import "fmt"

func errShort(what string, want, got int) error {
	return fmt.Errorf("gvcp: %s too short: want >= %d bytes, got %d", what, want, got)
}
