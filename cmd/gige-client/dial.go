package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/gige/gvcp/client"
)

var (
	cameraAddr  string
	dialTimeout time.Duration
)

func bindCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cameraAddr, "addr", "127.0.0.1:3956", "camera GVCP address (host:port)")
	cmd.Flags().DurationVar(&dialTimeout, "timeout", 2*time.Second, "request timeout")
}

func dial() (*client.Client, error) {
	return client.Dial(cameraAddr, dialTimeout)
}

// parseAddrList parses a comma-separated list of register addresses,
// each either decimal or 0x-prefixed hex.
func parseAddrList(s string) ([]uint32, error) {
	parts := strings.Split(s, ",")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.ParseUint(strings.TrimPrefix(p, "0x"), hexOrDecBase(p), 32)
		if err != nil {
			return nil, fmt.Errorf("bad register address %q: %w", p, err)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

func hexOrDecBase(s string) int {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return 16
	}
	return 10
}
