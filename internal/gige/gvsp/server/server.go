package server

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/gige"
	"github.com/protolab/gigemc/internal/gige/gvsp/protocol"
	"github.com/protolab/gigemc/internal/gige/imagesource"
	"github.com/protolab/gigemc/internal/logging"
)

// PayloadType is the GVSP payload-type code this emulator always uses
// (uncompressed image data).
const PayloadType = 0x0001

// Server is GVSP-S: the per-channel state machine idle -> streaming ->
// idle.
type Server struct {
	cfg    gige.ImageConfig
	source imagesource.Source
	bus    *diagnostics.Bus

	conn *net.UDPConn

	mu      sync.Mutex
	dest    *net.UDPAddr
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	blockID uint16
}

// SetDiagnostics attaches a bus that FrameSent events are published to.
// A nil bus (the default) disables publishing.
func (s *Server) SetDiagnostics(bus *diagnostics.Bus) { s.bus = bus }

// New opens the UDP socket GVSP-S sends from and binds source/cfg for
// later Start calls.
func New(cfg gige.ImageConfig, source imagesource.Source) (*Server, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, fmt.Errorf("gvsp: listen: %w", err)
	}
	return &Server{cfg: cfg, source: source, conn: conn}, nil
}

// Close releases the underlying socket, stopping any in-progress
// stream first.
func (s *Server) Close() error {
	_ = s.Stop()
	return s.conn.Close()
}

// Start begins streaming to destIP:destPort. Idempotent: calling
// Start while already streaming just updates the destination.
func (s *Server) Start(destIP net.IP, destPort uint16) error {
	s.mu.Lock()
	s.dest = &net.UDPAddr{IP: destIP, Port: int(destPort)}
	alreadyRunning := s.running.Load()
	s.mu.Unlock()

	if alreadyRunning {
		return nil
	}

	s.running.Store(true)
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.streamLoop()
	logging.Info("gvsp: streaming started", zap.String("dest", s.dest.String()))
	return nil
}

// Stop ceases streaming, joining the sender goroutine with a bounded
// timeout.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logging.Warn("gvsp: stop timed out waiting for stream loop")
	}
	logging.Info("gvsp: streaming stopped")
	return nil
}

func (s *Server) streamLoop() {
	defer s.wg.Done()

	period := time.Second
	if s.cfg.FrameRate > 0 {
		period = time.Duration(float64(time.Second) / s.cfg.FrameRate)
	}

	for {
		start := time.Now()

		select {
		case <-s.stopCh:
			return
		default:
		}

		if err := s.sendFrame(); err != nil {
			logging.Error("gvsp: send frame failed", zap.Error(err))
		}

		elapsed := time.Since(start)
		sleep := period - elapsed
		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-s.stopCh:
				return
			}
		}
	}
}

func (s *Server) sendFrame() error {
	frame, err := s.source.Next()
	if err != nil {
		return fmt.Errorf("gvsp: image source: %w", err)
	}

	s.mu.Lock()
	dest := s.dest
	blockID := s.blockID
	s.blockID++
	s.mu.Unlock()

	if dest == nil {
		return fmt.Errorf("gvsp: no destination set")
	}

	timestamp := uint64(time.Now().UnixNano())

	leader := protocol.Leader{
		PayloadType: PayloadType,
		Timestamp:   timestamp,
		PixelFormat: uint32(frame.PixelFormat),
		Width:       uint32(frame.Width),
		Height:      uint32(frame.Height),
	}
	if err := s.send(protocol.Header{BlockID: blockID, PacketFormat: protocol.FormatLeader, PacketID: 0}, leader.Encode(), dest); err != nil {
		return err
	}

	chunkSize := int(s.cfg.PacketSize) - protocol.HeaderSize
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	pixels := frame.Pixels
	packetID := uint32(1)
	for off := 0; off < len(pixels); off += chunkSize {
		end := off + chunkSize
		if end > len(pixels) {
			end = len(pixels)
		}
		if err := s.send(protocol.Header{BlockID: blockID, PacketFormat: protocol.FormatPayload, PacketID: packetID}, pixels[off:end], dest); err != nil {
			return err
		}
		packetID++
		if s.cfg.PacketDelay > 0 {
			time.Sleep(time.Duration(s.cfg.PacketDelay) * time.Microsecond)
		}
	}

	trailer := protocol.Trailer{PayloadType: PayloadType, SizeY: uint32(frame.Height)}
	return s.send(protocol.Header{BlockID: blockID, PacketFormat: protocol.FormatTrailer, PacketID: packetID}, trailer.Encode(), dest)
}

func (s *Server) send(hdr protocol.Header, body []byte, dest *net.UDPAddr) error {
	wire := hdr.Encode(body)
	if _, err := s.conn.WriteToUDP(wire, dest); err != nil {
		return fmt.Errorf("gvsp: write: %w", err)
	}
	logging.LogFrame("gvsp", dest.String(), "send", wire)
	s.bus.Publish(diagnostics.NewEvent(time.Now(), "gvsp", diagnostics.FrameSent,
		diagnostics.FramePayload{RemoteAddr: dest.String(), Bytes: len(wire)}))
	return nil
}
