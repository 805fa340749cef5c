package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/protolab/gigemc/internal/gige"
	"github.com/protolab/gigemc/internal/gige/gvcp/protocol"
	"github.com/protolab/gigemc/internal/gige/register"
	"github.com/protolab/gigemc/internal/logging"
)

// Error sentinels.
var (
	ErrNotConnected = errors.New("gvcp: not connected")
	ErrTimeout      = errors.New("gvcp: timeout")
)

// ProtocolError reports a non-success GVCP ack status.
type ProtocolError struct {
	Status uint16
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gvcp: protocol error, status 0x%04X", e.Status)
}

// Client is a thin, synchronous GVCP-C wrapper around a single UDP
// socket with a monotonic request-id counter.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration
	reqID   uint16
}

// Dial connects to a GVCP-S at addr (host:port). Dialing a UDP socket
// just fixes the peer address; no handshake occurs on the wire.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("gvcp: resolve %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("gvcp: dial %q: %w", addr, err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.Close()
}

func (c *Client) nextReqID() uint16 {
	c.reqID++
	return c.reqID
}

func (c *Client) roundTrip(command uint16, payload []byte) (protocol.AckHeader, []byte, error) {
	if c.conn == nil {
		return protocol.AckHeader{}, nil, ErrNotConnected
	}
	id := c.nextReqID()
	req := protocol.RequestHeader{Command: command, ReqID: id}.Encode(payload)

	if _, err := c.conn.Write(req); err != nil {
		return protocol.AckHeader{}, nil, fmt.Errorf("gvcp: write: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	buf := make([]byte, 2048)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return protocol.AckHeader{}, nil, ErrTimeout
		}
		return protocol.AckHeader{}, nil, fmt.Errorf("gvcp: read: %w", err)
	}
	logging.LogFrame("gvcp", c.conn.RemoteAddr().String(), "recv", buf[:n])

	hdr, err := protocol.DecodeAckHeader(buf[:n])
	if err != nil {
		return protocol.AckHeader{}, nil, fmt.Errorf("gvcp: %w", err)
	}
	if hdr.Status != protocol.StatusSuccess {
		return hdr, nil, &ProtocolError{Status: hdr.Status}
	}
	return hdr, buf[protocol.HeaderSize:n], nil
}

// Discover sends a Discovery request and returns the device descriptor
// from the ack.
func (c *Client) Discover() (gige.DeviceDescriptor, error) {
	_, payload, err := c.roundTrip(protocol.CmdDiscovery, nil)
	if err != nil {
		return gige.DeviceDescriptor{}, err
	}
	return protocol.DecodeDiscoveryAck(payload)
}

// ReadRegisters reads the u32 values at addrs, in order.
func (c *Client) ReadRegisters(addrs []uint32) ([]uint32, error) {
	_, payload, err := c.roundTrip(protocol.CmdReadRegister, protocol.EncodeReadRegisterRequest(addrs))
	if err != nil {
		return nil, err
	}
	return protocol.DecodeReadRegisterAck(payload)
}

// WriteRegisters writes the given (address, value) pairs and returns
// the number of registers the server reports as written.
func (c *Client) WriteRegisters(writes []protocol.RegisterWrite) (int, error) {
	_, payload, err := c.roundTrip(protocol.CmdWriteRegister, protocol.EncodeWriteRegisterRequest(writes))
	if err != nil {
		return 0, err
	}
	return protocol.DecodeWriteRegisterAck(payload)
}

// ReadMemory reads length bytes from a string-register address.
func (c *Client) ReadMemory(addr, length uint32) ([]byte, error) {
	_, payload, err := c.roundTrip(protocol.CmdReadMemory, protocol.EncodeReadMemoryRequest(addr, length))
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// SetAcquisition starts or stops streaming via ACQUISITION_START/STOP.
func (c *Client) SetAcquisition(start bool) error {
	addr := register.AcquisitionStop
	if start {
		addr = register.AcquisitionStart
	}
	_, err := c.WriteRegisters([]protocol.RegisterWrite{{Address: addr, Value: 1}})
	return err
}

// AcquireControlPrivilege claims control-channel privilege and
// declares the stream destination for subsequent GVSP traffic.
func (c *Client) AcquireControlPrivilege(destIP net.IP, destPort uint16) error {
	ip4 := destIP.To4()
	if ip4 == nil {
		return fmt.Errorf("gvcp: destIP %v is not IPv4", destIP)
	}
	destIPWord := uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
	_, err := c.WriteRegisters([]protocol.RegisterWrite{
		{Address: register.StreamChannel0DestIP, Value: destIPWord},
		{Address: register.StreamChannel0Port, Value: uint32(destPort)},
		{Address: register.ControlChannelPrivilege, Value: 1},
	})
	return err
}
