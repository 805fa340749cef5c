package server

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/gige/gvcp/protocol"
	"github.com/protolab/gigemc/internal/gige/register"
	"github.com/protolab/gigemc/internal/logging"
)

func (s *Server) handleDiscovery(hdr protocol.RequestHeader, remote *net.UDPAddr) {
	d := s.cfg.Descriptor
	payload := protocol.EncodeDiscoveryAck(d, s.cfg.SpecVersion)
	s.sendAck(remote, protocol.AckHeader{
		Status:  protocol.StatusSuccess,
		Command: protocol.CmdDiscoveryAck,
		AckID:   hdr.ReqID,
	}, payload)
}

func (s *Server) handleReadRegister(hdr protocol.RequestHeader, payload []byte, remote *net.UDPAddr) {
	addrs, err := protocol.DecodeReadRegisterRequest(payload)
	if err != nil {
		s.sendAck(remote, protocol.AckHeader{
			Status:  protocol.StatusInvalidParameter,
			Command: hdr.Command | 0x0001,
			AckID:   hdr.ReqID,
		}, nil)
		return
	}
	values := make([]uint32, len(addrs))
	for i, a := range addrs {
		values[i] = s.store.ReadWord(a) // unknown address -> 0, lenient
	}
	s.sendAck(remote, protocol.AckHeader{
		Status:  protocol.StatusSuccess,
		Command: protocol.CmdReadRegAck,
		AckID:   hdr.ReqID,
	}, protocol.EncodeReadRegisterAck(values))
}

func (s *Server) handleWriteRegister(hdr protocol.RequestHeader, payload []byte, remote *net.UDPAddr) {
	writes, err := protocol.DecodeWriteRegisterRequest(payload)
	if err != nil {
		s.sendAck(remote, protocol.AckHeader{
			Status:  protocol.StatusInvalidParameter,
			Command: hdr.Command | 0x0001,
			AckID:   hdr.ReqID,
		}, nil)
		return
	}
	for _, w := range writes {
		s.store.WriteWord(w.Address, w.Value) // out-of-range write -> accept
		s.applySideEffect(w.Address, w.Value, remote)
	}
	s.sendAck(remote, protocol.AckHeader{
		Status:  protocol.StatusSuccess,
		Command: protocol.CmdWriteRegAck,
		AckID:   hdr.ReqID,
	}, protocol.EncodeWriteRegisterAck(len(writes)))
}

func (s *Server) handleReadMemory(hdr protocol.RequestHeader, payload []byte, remote *net.UDPAddr) {
	addr, length, err := protocol.DecodeReadMemoryRequest(payload)
	if err != nil {
		s.sendAck(remote, protocol.AckHeader{
			Status:  protocol.StatusInvalidParameter,
			Command: hdr.Command | 0x0001,
			AckID:   hdr.ReqID,
		}, nil)
		return
	}
	str := s.store.ReadString(addr)
	out := make([]byte, length)
	copy(out, str)
	s.sendAck(remote, protocol.AckHeader{
		Status:  protocol.StatusSuccess,
		Command: protocol.CmdReadMemoryAck,
		AckID:   hdr.ReqID,
	}, out)
}

// applySideEffect implements the register writes that carry behavior
// beyond plain storage.
func (s *Server) applySideEffect(addr uint32, value uint32, remote *net.UDPAddr) {
	switch addr {
	case register.StreamChannel0DestIP, register.StreamChannel0Port:
		// Plain storage; ACQUISITION_START reads both back when it
		// actually starts the stream.
	case register.ControlChannelPrivilege:
		s.mu.Lock()
		if value != 0 {
			s.controlOwner = remote
			s.resetHeartbeatLocked()
		} else {
			s.controlOwner = nil
		}
		s.mu.Unlock()
	case register.AcquisitionStart:
		if value != 0 {
			destIP := remote.IP
			if raw := s.store.ReadWord(register.StreamChannel0DestIP); raw != 0 {
				destIP = net.ParseIP(intToIPv4(raw))
			}
			destPort := uint16(s.store.ReadWord(register.StreamChannel0Port))
			if err := s.stream.Start(destIP, destPort); err != nil {
				logging.Error("gvcp: failed to start stream", zap.Error(err))
			}
		}
	case register.AcquisitionStop:
		if value != 0 {
			if err := s.stream.Stop(); err != nil {
				logging.Error("gvcp: failed to stop stream", zap.Error(err))
			}
		}
	}
}

// onRequestReceived resets the heartbeat timer for any request while
// control privilege is held.
func (s *Server) onRequestReceived(remote *net.UDPAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlOwner != nil {
		s.resetHeartbeatLocked()
	}
}

// resetHeartbeatLocked (re)arms the heartbeat timer; must be called
// with s.mu held.
func (s *Server) resetHeartbeatLocked() {
	if s.heartbeatTimer != nil {
		s.heartbeatTimer.Stop()
	}
	timeout := time.Duration(s.store.ReadWord(register.HeartbeatTimeout)) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultHeartbeatTimeoutMS * time.Millisecond
	}
	s.heartbeatTimer = time.AfterFunc(timeout, s.clearPrivilegeOnTimeout)
}

// clearPrivilegeOnTimeout auto-clears control privilege when no
// request arrives within HEARTBEAT_TIMEOUT ms. Writes after expiry
// remain lenient; this implementation does not reject them.
func (s *Server) clearPrivilegeOnTimeout() {
	s.mu.Lock()
	s.controlOwner = nil
	s.mu.Unlock()
	s.store.WriteWord(register.ControlChannelPrivilege, 0)
	logging.Info("gvcp: control privilege auto-cleared on heartbeat timeout")
}

func intToIPv4(v uint32) string {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).String()
}
