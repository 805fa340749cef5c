package server

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/logging"
	"github.com/protolab/gigemc/internal/mc/codec"
	"github.com/protolab/gigemc/internal/mc/dispatch"
)

// DefaultPort is the conventional MELSEC MC protocol TCP port.
const DefaultPort = 5007

// readBufferSize bounds a single request frame. The protocol is
// synchronous request/response — a client holds one request
// outstanding at a time — so one Read call is expected to return
// exactly one frame.
const readBufferSize = 2048

// Config holds the MC server's construction parameters.
type Config struct {
	Host string
	Port int
}

// Server is the MC protocol TCP server. It serves one client
// connection at a time; a second client replaces whatever connection
// came before it.
type Server struct {
	cfg        Config
	dispatcher dispatcher
	bus        *diagnostics.Bus

	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup

	mu     sync.Mutex
	active net.Conn
}

// SetDiagnostics attaches a bus that RequestHandled events are
// published to. A nil bus (the default) disables publishing.
func (s *Server) SetDiagnostics(bus *diagnostics.Bus) { s.bus = bus }

// dispatcher is the capability the server needs from dispatch.Dispatcher.
type dispatcher interface {
	Dispatch(req codec.Request) (uint16, []byte)
}

// New creates an MC server bound to d.
func New(cfg Config, d *dispatch.Dispatcher) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return &Server{cfg: cfg, dispatcher: d}
}

// Start opens the listening socket and begins accepting connections on
// a dedicated goroutine.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mc server: listen: %w", err)
	}
	s.listener = ln
	s.running.Store(true)

	logging.Info("mc server listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and any active connection, joining the
// accept loop with a bounded timeout.
func (s *Server) Stop() error {
	s.running.Store(false)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	if s.active != nil {
		_ = s.active.Close()
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
		logging.Warn("mc server stop timed out waiting for accept loop")
	}
	return nil
}

// Addr returns the server's bound address. Only valid after Start.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			continue
		}

		// Only one session is served at a time: a new connection evicts
		// whatever came before it.
		s.mu.Lock()
		if s.active != nil {
			_ = s.active.Close()
		}
		s.active = conn
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	logging.LogConnection(conn.RemoteAddr().String(), "connected")
	defer func() {
		_ = conn.Close()
		logging.LogConnection(conn.RemoteAddr().String(), "disconnected")
	}()

	buf := make([]byte, readBufferSize)
	for s.running.Load() {
		_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}
		s.handleRequest(conn, buf[:n])
	}
}

func (s *Server) handleRequest(conn net.Conn, data []byte) {
	remote := conn.RemoteAddr().String()
	logging.LogFrame("mc", remote, "recv", data)

	req, err := codec.ParseRequest(data)
	if err != nil {
		logging.LogDropped("mc", remote, err.Error(), data)
		s.writeResponse(conn, remote, codec.Request{FrameType: codec.Frame3EBinary}, codec.EndCommandError, nil)
		return
	}

	endCode, payload := s.dispatcher.Dispatch(req)
	s.bus.Publish(diagnostics.NewEvent(time.Now(), "mc", diagnostics.RequestHandled,
		diagnostics.RequestPayload{Command: req.Command, SubCommand: req.SubCommand, EndCode: endCode}))
	s.writeResponse(conn, remote, req, endCode, payload)
}

func (s *Server) writeResponse(conn net.Conn, remote string, req codec.Request, endCode uint16, payload []byte) {
	wire := codec.EncodeResponse(req, endCode, payload)
	if _, err := conn.Write(wire); err != nil {
		logging.Error("mc server: write response failed", zap.Error(err))
		return
	}
	logging.LogFrame("mc", remote, "send", wire)
}
