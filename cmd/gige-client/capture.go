package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	gvspclient "github.com/protolab/gigemc/internal/gige/gvsp/client"
)

var (
	listenAddr  string
	captureOut  string
	captureWait time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Start acquisition and save one frame to a file",
	Long: `Claims control-channel privilege, declares a local receiver as the
stream destination, starts acquisition, waits for one assembled
frame, stops acquisition, and writes the raw pixel payload to --out.`,
	RunE: runCapture,
}

func init() {
	bindCommonFlags(captureCmd)
	captureCmd.Flags().StringVar(&listenAddr, "listen", ":0", "local address to receive GVSP packets on")
	captureCmd.Flags().StringVar(&captureOut, "out", "frame.raw", "output file for the captured frame's raw pixels")
	captureCmd.Flags().DurationVar(&captureWait, "wait", 5*time.Second, "how long to wait for a frame")
}

func runCapture(cmd *cobra.Command, args []string) error {
	recv, err := gvspclient.Listen(listenAddr)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	defer recv.Stop()
	recv.Start()

	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	laddr := recv.Addr()
	destIP := laddr.IP
	if destIP == nil || destIP.IsUnspecified() {
		// A wildcard bind reports [::]; 0.0.0.0 makes the server stream
		// back to the address the request came from.
		destIP = net.IPv4zero
	}
	if err := c.AcquireControlPrivilege(destIP, uint16(laddr.Port)); err != nil {
		return fmt.Errorf("capture: acquire control privilege: %w", err)
	}
	if err := c.SetAcquisition(true); err != nil {
		return fmt.Errorf("capture: start acquisition: %w", err)
	}
	defer c.SetAcquisition(false)

	frame, err := recv.GetImage(captureWait)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	if err := os.WriteFile(captureOut, frame.Pixels, 0644); err != nil {
		return fmt.Errorf("capture: write %q: %w", captureOut, err)
	}
	fmt.Printf("captured %dx%d frame (%d bytes) to %s\n", frame.Width, frame.Height, len(frame.Pixels), captureOut)
	return nil
}
