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
	"github.com/protolab/gigemc/internal/gige/gvcp/protocol"
	"github.com/protolab/gigemc/internal/gige/register"
	"github.com/protolab/gigemc/internal/logging"
)

// DefaultPort is the well-known GVCP UDP port.
const DefaultPort = 3956

// DefaultHeartbeatTimeoutMS is used to seed the heartbeat-timeout
// register when a server is created without an explicit value.
const DefaultHeartbeatTimeoutMS = 3000

// StreamController is the capability GVCP-S uses to drive the
// streaming server in response to ACQUISITION_START/STOP and to learn
// its destination address. GVSP-S implements this.
type StreamController interface {
	Start(destIP net.IP, destPort uint16) error
	Stop() error
}

// Config holds the GVCP-S construction parameters.
type Config struct {
	Host                string
	Port                int
	Descriptor          gige.DeviceDescriptor
	SpecVersion         uint32
	HeartbeatTimeoutMS  uint32
}

// Server is the GVCP discovery/control server.
type Server struct {
	cfg    Config
	store  *register.Store
	stream StreamController
	bus    *diagnostics.Bus

	conn    *net.UDPConn
	running atomic.Bool
	wg      sync.WaitGroup

	mu             sync.Mutex
	controlOwner   *net.UDPAddr
	heartbeatTimer *time.Timer
}

// SetDiagnostics attaches a bus that FrameReceived/FrameSent events are
// published to. A nil bus (the default) disables publishing.
func (s *Server) SetDiagnostics(bus *diagnostics.Bus) { s.bus = bus }

// New creates a GVCP-S instance. The register store is pre-seeded with
// the device descriptor strings and heartbeat timeout.
func New(cfg Config, store *register.Store, stream StreamController) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.HeartbeatTimeoutMS == 0 {
		cfg.HeartbeatTimeoutMS = DefaultHeartbeatTimeoutMS
	}

	store.WriteWord(register.Version, cfg.SpecVersion)
	store.WriteWord(register.HeartbeatTimeout, cfg.HeartbeatTimeoutMS)
	store.WriteString(register.Manufacturer, cfg.Descriptor.Manufacturer)
	store.WriteString(register.Model, cfg.Descriptor.Model)
	store.WriteString(register.DeviceVersion, cfg.Descriptor.DeviceVersion)
	store.WriteString(register.Serial, cfg.Descriptor.Serial)
	store.WriteString(register.UserDefinedName, cfg.Descriptor.UserDefinedName)

	return &Server{cfg: cfg, store: store, stream: stream}
}

// Start opens the UDP socket and begins serving requests on a
// dedicated goroutine.
func (s *Server) Start() error {
	addr := &net.UDPAddr{IP: net.ParseIP(s.cfg.Host), Port: s.cfg.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("gvcp: listen: %w", err)
	}
	s.conn = conn
	s.running.Store(true)

	logging.Info("gvcp server listening", zap.String("addr", conn.LocalAddr().String()))

	s.wg.Add(1)
	go s.serve()
	return nil
}

// Stop closes the socket and joins the serve goroutine, bounded by a
// short timeout.
func (s *Server) Stop() error {
	s.running.Store(false)
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Lock()
	if s.heartbeatTimer != nil {
		s.heartbeatTimer.Stop()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logging.Warn("gvcp server stop timed out waiting for serve loop")
	}
	return nil
}

// Addr returns the server's bound UDP address. Only valid after Start.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Server) serve() {
	defer s.wg.Done()
	buf := make([]byte, 2048)
	for s.running.Load() {
		_ = s.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !s.running.Load() {
				return
			}
			continue
		}
		s.handlePacket(buf[:n], remote)
	}
}

func (s *Server) handlePacket(data []byte, remote *net.UDPAddr) {
	logging.LogFrame("gvcp", remote.String(), "recv", data)
	s.bus.Publish(diagnostics.NewEvent(time.Now(), "gvcp", diagnostics.FrameReceived,
		diagnostics.FramePayload{RemoteAddr: remote.String(), Bytes: len(data)}))

	hdr, err := protocol.DecodeRequestHeader(data)
	if err != nil {
		// malformed packet -> silent drop plus log
		logging.LogDropped("gvcp", remote.String(), err.Error(), data)
		return
	}

	s.onRequestReceived(remote)

	payload := data[protocol.HeaderSize:]
	switch hdr.Command {
	case protocol.CmdDiscovery:
		s.handleDiscovery(hdr, remote)
	case protocol.CmdReadRegister:
		s.handleReadRegister(hdr, payload, remote)
	case protocol.CmdWriteRegister:
		s.handleWriteRegister(hdr, payload, remote)
	case protocol.CmdReadMemory:
		s.handleReadMemory(hdr, payload, remote)
	default:
		s.sendAck(remote, protocol.AckHeader{
			Status:  protocol.StatusNotImplemented,
			Command: hdr.Command | 0x0001,
			AckID:   hdr.ReqID,
		}, nil)
	}
}

func (s *Server) sendAck(remote *net.UDPAddr, hdr protocol.AckHeader, payload []byte) {
	wire := hdr.Encode(payload)
	if _, err := s.conn.WriteToUDP(wire, remote); err != nil {
		logging.Error("gvcp: write ack failed", zap.Error(err))
		return
	}
	logging.LogFrame("gvcp", remote.String(), "send", wire)
	s.bus.Publish(diagnostics.NewEvent(time.Now(), "gvcp", diagnostics.FrameSent,
		diagnostics.FramePayload{RemoteAddr: remote.String(), Bytes: len(wire)}))
}
