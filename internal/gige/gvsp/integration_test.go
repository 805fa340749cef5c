// Package gvsp_test wires GVSP-S directly to GVSP-C over loopback UDP,
// exercising the reassembly invariant: for an image of size S and
// packet_size P, a Leader, ceil(S/(P-8)) Payloads, and a Trailer
// reassemble into the original byte sequence. Packets arrive in the
// order the server sends them.
package gvsp_test

import (
	"testing"
	"time"

	"github.com/protolab/gigemc/internal/gige"
	"github.com/protolab/gigemc/internal/gige/gvsp/client"
	"github.com/protolab/gigemc/internal/gige/gvsp/server"
	"github.com/protolab/gigemc/internal/gige/imagesource"
)

func TestStreamOneFrameEndToEnd(t *testing.T) {
	cfg := gige.ImageConfig{
		Width:       64,
		Height:      48,
		PixelFormat: gige.Mono8,
		FrameRate:   20,
		PacketSize:  1500,
	}
	src := imagesource.NewPatternSource(cfg, imagesource.PatternGradient)
	want, err := src.Next()
	if err != nil {
		t.Fatalf("source.Next: %v", err)
	}
	// Reset the source so the server observes the same first frame the
	// test just captured for comparison.
	src = imagesource.NewPatternSource(cfg, imagesource.PatternGradient)

	recv, err := client.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer recv.Stop()
	recv.Start()

	srv, err := server.New(cfg, src)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	defer srv.Close()

	if err := srv.Start(recv.Addr().IP, uint16(recv.Addr().Port)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	frame, err := recv.GetImage(2 * time.Second)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}

	if frame.Width != int(cfg.Width) || frame.Height != int(cfg.Height) {
		t.Fatalf("dims = %dx%d, want %dx%d", frame.Width, frame.Height, cfg.Width, cfg.Height)
	}
	if len(frame.Pixels) != len(want.Pixels) {
		t.Fatalf("assembled %d bytes, want %d", len(frame.Pixels), len(want.Pixels))
	}
	for i := range want.Pixels {
		if frame.Pixels[i] != want.Pixels[i] {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, frame.Pixels[i], want.Pixels[i])
		}
	}
}
