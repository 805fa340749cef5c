package client

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/protolab/gigemc/internal/mc/codec"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

// DefaultTimeout bounds how long a request waits for its response.
const DefaultTimeout = 3 * time.Second

// readBufferSize bounds a single response frame.
const readBufferSize = 2048

// Client is MC-C: a single TCP connection carrying one outstanding
// request at a time, matching the protocol's synchronous nature.
type Client struct {
	conn      net.Conn
	frameType codec.FrameType
	networkNo byte
	pcNo      byte

	mu      sync.Mutex
	closed  bool
	serial  uint16
	timeout time.Duration
}

// Dial connects to addr and returns a Client that encodes requests in
// ft's wire family.
func Dial(addr string, ft codec.FrameType) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("mc: dial %q: %w", addr, err)
	}
	return &Client{
		conn:      conn,
		frameType: ft,
		pcNo:      0xFF,
		timeout:   DefaultTimeout,
	}, nil
}

// SetTimeout changes how long subsequent requests wait for a response.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Close shuts down the underlying connection. Any request made after
// Close returns ErrNotConnected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// ReadWords performs a batch word read.
func (c *Client) ReadWords(t devtype.Type, addr, count int) ([]uint16, error) {
	_, payload, err := c.batchRead(t, addr, count, codec.SubWord)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		if 2*i+2 > len(payload) {
			break
		}
		out[i] = binary.LittleEndian.Uint16(payload[2*i : 2*i+2])
	}
	return out, nil
}

// ReadBits performs a batch bit read.
func (c *Client) ReadBits(t devtype.Type, addr, count int) ([]bool, error) {
	_, payload, err := c.batchRead(t, addr, count, codec.SubBit)
	if err != nil {
		return nil, err
	}
	out := make([]bool, count)
	for i := range out {
		if i < len(payload) {
			out[i] = payload[i] != 0
		}
	}
	return out, nil
}

// WriteWords performs a batch word write.
func (c *Client) WriteWords(t devtype.Type, addr int, values []uint16) error {
	data := codec.EncodeDeviceAddress(t, addr)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(values)))
	for _, v := range values {
		data = binary.LittleEndian.AppendUint16(data, v)
	}
	return c.batchWrite(data, codec.SubWord)
}

// WriteBits performs a batch bit write.
func (c *Client) WriteBits(t devtype.Type, addr int, values []bool) error {
	data := codec.EncodeDeviceAddress(t, addr)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(values)))
	for _, v := range values {
		if v {
			data = append(data, 1)
		} else {
			data = append(data, 0)
		}
	}
	return c.batchWrite(data, codec.SubBit)
}

func (c *Client) batchRead(t devtype.Type, addr, count int, sub uint16) (uint16, []byte, error) {
	data := codec.EncodeDeviceAddress(t, addr)
	data = binary.LittleEndian.AppendUint16(data, uint16(count))
	endCode, payload, err := c.doBatch(codec.CmdBatchRead, sub, data)
	if err != nil {
		return 0, nil, err
	}
	if endCode != codec.EndOK {
		return endCode, nil, &codec.ProtocolError{EndCode: endCode}
	}
	return endCode, payload, nil
}

func (c *Client) batchWrite(data []byte, sub uint16) error {
	endCode, _, err := c.doBatch(codec.CmdBatchWrite, sub, data)
	if err != nil {
		return err
	}
	if endCode != codec.EndOK {
		return &codec.ProtocolError{EndCode: endCode}
	}
	return nil
}

// RemoteRun transitions the emulated PLC to RUN. Not available over a
// 1E connection, which carries no remote-control commands.
func (c *Client) RemoteRun() error { return c.remoteControl(codec.CmdRemoteRun) }

// RemoteStop transitions the emulated PLC to STOP.
func (c *Client) RemoteStop() error { return c.remoteControl(codec.CmdRemoteStop) }

// RemotePause transitions the emulated PLC to PAUSE.
func (c *Client) RemotePause() error { return c.remoteControl(codec.CmdRemotePause) }

// RemoteReset clears device memory and ladder state.
func (c *Client) RemoteReset() error { return c.remoteControl(codec.CmdRemoteReset) }

func (c *Client) remoteControl(command uint16) error {
	if c.frameType == codec.FrameOneE {
		return fmt.Errorf("mc: remote-control commands are not available over 1E")
	}
	endCode, _, err := c.roundTrip(command, 0, nil)
	if err != nil {
		return err
	}
	if endCode != codec.EndOK {
		return &codec.ProtocolError{EndCode: endCode}
	}
	return nil
}

// ReadCPUModel reads the emulator's reported CPU model string.
func (c *Client) ReadCPUModel() (string, error) {
	if c.frameType == codec.FrameOneE {
		return "", fmt.Errorf("mc: CPU model read is not available over 1E")
	}
	endCode, payload, err := c.roundTrip(codec.CmdCPUModelRead, 0, nil)
	if err != nil {
		return "", err
	}
	if endCode != codec.EndOK {
		return "", &codec.ProtocolError{EndCode: endCode}
	}
	return strings.TrimRight(string(payload), "\x00"), nil
}

// doBatch dispatches command/sub over either the 3E/4E or 1E wire,
// normalising both into (endCode, payload). Both batch commands carry
// the same 3E-style command_data shape (device descriptor, count,
// optional values), so the 1E path just re-slices it.
func (c *Client) doBatch(command, sub uint16, data []byte) (uint16, []byte, error) {
	if c.frameType == codec.FrameOneE {
		return c.roundTrip1E(command, sub, data)
	}
	return c.roundTrip(command, sub, data)
}

func (c *Client) roundTrip(command, subCommand uint16, data []byte) (uint16, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, nil, ErrNotConnected
	}

	c.serial++
	req := codec.NewRequest(c.frameType, c.networkNo, c.pcNo, c.serial, command, subCommand, data)
	wire := codec.EncodeRequest(req)

	resp, err := c.exchangeLocked(wire)
	if err != nil {
		return 0, nil, err
	}
	return codec.ParseResponse(c.frameType, resp)
}

// roundTrip1E builds a 1E (A-compatible) request from a 3E-shaped
// command_data block and a batch command/sub pair.
func (c *Client) roundTrip1E(command, subCommand uint16, data []byte) (uint16, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, nil, ErrNotConnected
	}

	t, addr, err := codec.DecodeDeviceAddress(data)
	if err != nil {
		return 0, nil, err
	}
	count := binary.LittleEndian.Uint16(data[codec.DeviceDescriptorSize : codec.DeviceDescriptorSize+2])
	writeData := data[codec.DeviceDescriptorSize+2:]

	var cmdByte byte
	switch {
	case command == codec.CmdBatchRead && subCommand == codec.SubBit:
		cmdByte = 0x00
	case command == codec.CmdBatchRead && subCommand == codec.SubWord:
		cmdByte = 0x01
	case command == codec.CmdBatchWrite && subCommand == codec.SubBit:
		cmdByte = 0x02
	case command == codec.CmdBatchWrite && subCommand == codec.SubWord:
		cmdByte = 0x03
	default:
		return 0, nil, fmt.Errorf("mc: command not representable in 1E")
	}

	wire := codec.Encode1ERequest(cmdByte, c.pcNo, addr, t.WireCode, count, writeData)
	resp, err := c.exchangeLocked(wire)
	if err != nil {
		return 0, nil, err
	}
	return codec.ParseResponse(codec.FrameOneE, resp)
}

// exchangeLocked writes wire and blocks for one response. Callers must
// hold c.mu.
func (c *Client) exchangeLocked(wire []byte) ([]byte, error) {
	if _, err := c.conn.Write(wire); err != nil {
		return nil, fmt.Errorf("mc: write: %w", err)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	buf := make([]byte, readBufferSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("mc: read: %w", err)
	}
	return buf[:n], nil
}
