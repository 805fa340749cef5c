package client

import (
	"net"
	"testing"
	"time"

	"github.com/protolab/gigemc/internal/gige/gvsp/protocol"
)

func dialReceiver(t *testing.T) (*Receiver, *net.UDPConn) {
	t.Helper()
	r, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	r.Start()
	t.Cleanup(func() { _ = r.Stop() })

	sender, err := net.DialUDP("udp", nil, r.Addr())
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	t.Cleanup(func() { _ = sender.Close() })
	return r, sender
}

func sendPacket(t *testing.T, conn *net.UDPConn, hdr protocol.Header, body []byte) {
	t.Helper()
	if _, err := conn.Write(hdr.Encode(body)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestAssemblesFrameInOrder(t *testing.T) {
	r, sender := dialReceiver(t)

	leader := protocol.Leader{PayloadType: 1, Width: 4, Height: 1, PixelFormat: 0x01080001}
	sendPacket(t, sender, protocol.Header{BlockID: 1, PacketFormat: protocol.FormatLeader, PacketID: 0}, leader.Encode())
	sendPacket(t, sender, protocol.Header{BlockID: 1, PacketFormat: protocol.FormatPayload, PacketID: 1}, []byte{1, 2})
	sendPacket(t, sender, protocol.Header{BlockID: 1, PacketFormat: protocol.FormatPayload, PacketID: 2}, []byte{3, 4})
	sendPacket(t, sender, protocol.Header{BlockID: 1, PacketFormat: protocol.FormatTrailer, PacketID: 3}, protocol.Trailer{PayloadType: 1, SizeY: 1}.Encode())

	frame, err := r.GetImage(time.Second)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	if string(frame.Pixels) != string(want) {
		t.Errorf("Pixels = %v, want %v", frame.Pixels, want)
	}
	if frame.Width != 4 || frame.Height != 1 {
		t.Errorf("dims = %dx%d, want 4x1", frame.Width, frame.Height)
	}
}

func TestAssemblesFrameOutOfOrder(t *testing.T) {
	r, sender := dialReceiver(t)

	leader := protocol.Leader{PayloadType: 1, Width: 4, Height: 1, PixelFormat: 0x01080001}
	sendPacket(t, sender, protocol.Header{BlockID: 5, PacketFormat: protocol.FormatLeader, PacketID: 0}, leader.Encode())
	// deliver payload 2 before payload 1
	sendPacket(t, sender, protocol.Header{BlockID: 5, PacketFormat: protocol.FormatPayload, PacketID: 2}, []byte{3, 4})
	sendPacket(t, sender, protocol.Header{BlockID: 5, PacketFormat: protocol.FormatPayload, PacketID: 1}, []byte{1, 2})
	sendPacket(t, sender, protocol.Header{BlockID: 5, PacketFormat: protocol.FormatTrailer, PacketID: 3}, protocol.Trailer{PayloadType: 1, SizeY: 1}.Encode())

	frame, err := r.GetImage(time.Second)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	if string(frame.Pixels) != string(want) {
		t.Errorf("Pixels = %v, want %v (out-of-order delivery should still reassemble by packet id)", frame.Pixels, want)
	}
}

func TestPayloadForDifferentBlockIsDropped(t *testing.T) {
	r, sender := dialReceiver(t)

	leader := protocol.Leader{PayloadType: 1, Width: 2, Height: 1, PixelFormat: 0x01080001}
	sendPacket(t, sender, protocol.Header{BlockID: 9, PacketFormat: protocol.FormatLeader, PacketID: 0}, leader.Encode())
	// payload for a stale block id should be dropped silently
	sendPacket(t, sender, protocol.Header{BlockID: 8, PacketFormat: protocol.FormatPayload, PacketID: 1}, []byte{0xFF, 0xFF})
	sendPacket(t, sender, protocol.Header{BlockID: 9, PacketFormat: protocol.FormatPayload, PacketID: 1}, []byte{1, 2})
	sendPacket(t, sender, protocol.Header{BlockID: 9, PacketFormat: protocol.FormatTrailer, PacketID: 2}, protocol.Trailer{PayloadType: 1, SizeY: 1}.Encode())

	frame, err := r.GetImage(time.Second)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if string(frame.Pixels) != string([]byte{1, 2}) {
		t.Errorf("Pixels = %v, want [1 2] (stale-block payload should not contaminate assembly)", frame.Pixels)
	}
}

func TestGetImageTimesOutWithNoTrailer(t *testing.T) {
	r, _ := dialReceiver(t)
	if _, err := r.GetImage(50 * time.Millisecond); err != ErrTimeout {
		t.Errorf("GetImage error = %v, want ErrTimeout", err)
	}
}
