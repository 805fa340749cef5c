package client

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/gige/gvsp/protocol"
	"github.com/protolab/gigemc/internal/logging"
)

// ErrTimeout is returned by GetImage when no frame arrives in time.
var ErrTimeout = errors.New("gvsp: timeout waiting for frame")

// Frame is one fully assembled image, produced once a Trailer closes
// out its block.
type Frame struct {
	BlockID     uint16
	Width       int
	Height      int
	PixelFormat uint32
	Timestamp   uint64
	Pixels      []byte
}

// inFlight tracks the block currently being assembled.
type inFlight struct {
	blockID     uint16
	width       int
	height      int
	pixelFormat uint32
	timestamp   uint64
	packets     map[uint32][]byte
}

// Receiver is GVSP-C. It owns one UDP socket and presents a blocking
// GetImage surface.
type Receiver struct {
	conn *net.UDPConn

	mu      sync.Mutex
	current *inFlight

	frames  chan Frame
	running atomic.Bool
	wg      sync.WaitGroup
}

// Listen opens a UDP socket on addr (host:port, port 0 for ephemeral)
// and returns a Receiver ready to Start.
func Listen(addr string) (*Receiver, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("gvsp: resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("gvsp: listen %q: %w", addr, err)
	}
	return &Receiver{conn: conn, frames: make(chan Frame, 1)}, nil
}

// Addr returns the bound local address, for registering with GVCP-C
// as the stream destination.
func (r *Receiver) Addr() *net.UDPAddr {
	return r.conn.LocalAddr().(*net.UDPAddr)
}

// Start begins the recv loop on a dedicated goroutine.
func (r *Receiver) Start() {
	r.running.Store(true)
	r.wg.Add(1)
	go r.recvLoop()
}

// Stop closes the socket to unblock recv and joins the loop.
func (r *Receiver) Stop() error {
	r.running.Store(false)
	err := r.conn.Close()
	r.wg.Wait()
	return err
}

// GetImage blocks until a complete frame is assembled or timeout
// elapses, returning the most recently assembled frame.
func (r *Receiver) GetImage(timeout time.Duration) (Frame, error) {
	select {
	case f := <-r.frames:
		return f, nil
	case <-time.After(timeout):
		return Frame{}, ErrTimeout
	}
}

func (r *Receiver) recvLoop() {
	defer r.wg.Done()
	buf := make([]byte, 65536)
	for r.running.Load() {
		n, remote, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if !r.running.Load() {
				return
			}
			continue
		}
		r.handlePacket(buf[:n], remote)
	}
}

func (r *Receiver) handlePacket(data []byte, remote *net.UDPAddr) {
	hdr, err := protocol.DecodeHeader(data)
	if err != nil {
		logging.LogDropped("gvsp", remote.String(), err.Error(), data)
		return
	}
	body := data[protocol.HeaderSize:]

	r.mu.Lock()
	defer r.mu.Unlock()

	switch hdr.PacketFormat {
	case protocol.FormatLeader:
		leader, err := protocol.DecodeLeader(body)
		if err != nil {
			logging.LogDropped("gvsp", remote.String(), err.Error(), data)
			return
		}
		// Leader always starts a new block, dropping any prior
		// in-flight state for a different block_id.
		r.current = &inFlight{
			blockID:     hdr.BlockID,
			width:       int(leader.Width),
			height:      int(leader.Height),
			pixelFormat: leader.PixelFormat,
			timestamp:   leader.Timestamp,
			packets:     make(map[uint32][]byte),
		}

	case protocol.FormatPayload:
		if r.current == nil || r.current.blockID != hdr.BlockID {
			// payload for a block we're not tracking -> drop, no
			// retransmission request.
			return
		}
		stored := make([]byte, len(body))
		copy(stored, body)
		r.current.packets[hdr.PacketID] = stored

	case protocol.FormatTrailer:
		if r.current == nil || r.current.blockID != hdr.BlockID {
			return
		}
		frame := r.assembleLocked()
		r.current = nil
		select {
		case <-r.frames:
		default:
		}
		r.frames <- frame

	default:
		logging.LogDropped("gvsp", remote.String(), "unknown packet_format", data)
	}
}

// assembleLocked concatenates packets in ascending packet_id order.
// Must be called with r.mu held.
func (r *Receiver) assembleLocked() Frame {
	cur := r.current
	ids := make([]uint32, 0, len(cur.packets))
	for id := range cur.packets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var pixels []byte
	for _, id := range ids {
		pixels = append(pixels, cur.packets[id]...)
	}

	logging.Debug("gvsp: frame assembled",
		zap.Uint16("block_id", cur.blockID),
		zap.Int("width", cur.width),
		zap.Int("height", cur.height),
		zap.Int("bytes", len(pixels)),
	)

	return Frame{
		BlockID:     cur.blockID,
		Width:       cur.width,
		Height:      cur.height,
		PixelFormat: cur.pixelFormat,
		Timestamp:   cur.timestamp,
		Pixels:      pixels,
	}
}
