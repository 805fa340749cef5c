package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/mc/client"
	"github.com/protolab/gigemc/internal/mc/codec"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

var (
	serverAddr string
	frameName  string
)

func bindCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverAddr, "addr", "127.0.0.1:5007", "PLC address (host:port)")
	cmd.Flags().StringVar(&frameName, "frame", "3e", "wire frame (1e, 3e, 3e-ascii, 4e, 4e-ascii)")
}

func parseFrameType(s string) (codec.FrameType, error) {
	switch s {
	case "1e":
		return codec.FrameOneE, nil
	case "3e":
		return codec.Frame3EBinary, nil
	case "3e-ascii":
		return codec.Frame3EASCII, nil
	case "4e":
		return codec.Frame4EBinary, nil
	case "4e-ascii":
		return codec.Frame4EASCII, nil
	default:
		return 0, fmt.Errorf("unknown frame %q (want 1e, 3e, 3e-ascii, 4e, or 4e-ascii)", s)
	}
}

func dial() (*client.Client, error) {
	ft, err := parseFrameType(frameName)
	if err != nil {
		return nil, err
	}
	return client.Dial(serverAddr, ft)
}

// parseDevice resolves a device code like "D", "TN", or "M"
// (case-insensitive) to its devtype.Type by exact match.
func parseDevice(code string) (devtype.Type, error) {
	code = strings.ToUpper(code)
	return devtype.FromCode(code)
}

func parseBoolList(s string) ([]bool, error) {
	parts := strings.Split(s, ",")
	out := make([]bool, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch p {
		case "1", "true", "on":
			out = append(out, true)
		case "0", "false", "off":
			out = append(out, false)
		default:
			return nil, fmt.Errorf("bad bit value %q (want 0/1)", p)
		}
	}
	return out, nil
}

func parseWordList(s string) ([]uint16, error) {
	parts := strings.Split(s, ",")
	out := make([]uint16, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad word value %q: %w", p, err)
		}
		out = append(out, uint16(n))
	}
	return out, nil
}
