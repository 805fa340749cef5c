package dispatch

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/protolab/gigemc/internal/mc/codec"
	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

var errShortHeader = errors.New("dispatch: short batch header")

// DefaultCPUModel is the ASCII model name this emulator reports.
const DefaultCPUModel = "Q02UCPU"

// Dispatcher executes MC commands against a device store and PLC
// state, translating semantic failures into wire end codes with no
// partial mutation.
type Dispatcher struct {
	store    *devicestore.Store
	cpuModel string

	mu     sync.Mutex
	state  PlcState
	engine Engine
}

// New creates a Dispatcher bound to store. engine may be nil until
// SetEngine is called (the ladder engine often starts after the
// server that owns the dispatcher).
func New(store *devicestore.Store, engine Engine) *Dispatcher {
	return &Dispatcher{store: store, cpuModel: DefaultCPUModel, engine: engine, state: Stop}
}

// SetEngine wires the ladder engine RUN/STOP/RESET drive.
func (d *Dispatcher) SetEngine(e Engine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine = e
}

// State returns the current PLC state.
func (d *Dispatcher) State() PlcState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dispatch executes req and returns the end code and response payload
// (command_data-equivalent) to carry back via codec.EncodeResponse.
func (d *Dispatcher) Dispatch(req codec.Request) (uint16, []byte) {
	switch req.Command {
	case codec.CmdBatchRead:
		return d.batchRead(req)
	case codec.CmdBatchWrite:
		return d.batchWrite(req)
	case codec.CmdRandomRead:
		return d.randomRead(req)
	case codec.CmdRandomWrite:
		return d.randomWrite(req)
	case codec.CmdCPUModelRead:
		return d.cpuModelRead()
	case codec.CmdRemoteRun:
		d.transition(Run)
		return codec.EndOK, nil
	case codec.CmdRemoteStop:
		d.transition(Stop)
		return codec.EndOK, nil
	case codec.CmdRemotePause:
		d.transition(Pause)
		return codec.EndOK, nil
	case codec.CmdRemoteReset:
		d.reset()
		return codec.EndOK, nil
	default:
		return codec.EndCommandError, nil
	}
}

func (d *Dispatcher) transition(to PlcState) {
	d.mu.Lock()
	d.state = to
	engine := d.engine
	d.mu.Unlock()
	if engine == nil {
		return
	}
	if to == Run {
		engine.Start()
	} else {
		engine.Stop()
	}
}

func (d *Dispatcher) reset() {
	d.mu.Lock()
	d.state = Stop
	engine := d.engine
	d.mu.Unlock()
	if engine != nil {
		engine.Reset()
	}
	d.store.Reset()
}

func clampCount(count int) int {
	if count == 0 {
		return 256 // 1E quirk, applied uniformly
	}
	return count
}

func (d *Dispatcher) batchRead(req codec.Request) (uint16, []byte) {
	t, addr, count, err := decodeBatchHeader(req.CommandData)
	if err != nil {
		return codec.EndDeviceSpec, nil
	}
	count = clampCount(count)

	if req.SubCommand == codec.SubBit {
		bits := d.store.BatchReadBits(t, addr, count)
		payload := make([]byte, count)
		for i, b := range bits {
			if b {
				payload[i] = 1
			}
		}
		return codec.EndOK, payload
	}

	payload := make([]byte, 0, count*2)
	if t.IsBit() {
		for i := 0; i < count; i++ {
			w := d.store.ReadWord(t, addr+16*i)
			payload = binary.LittleEndian.AppendUint16(payload, w)
		}
	} else {
		for _, w := range d.store.BatchReadWords(t, addr, count) {
			payload = binary.LittleEndian.AppendUint16(payload, w)
		}
	}
	return codec.EndOK, payload
}

func (d *Dispatcher) batchWrite(req codec.Request) (uint16, []byte) {
	t, addr, count, err := decodeBatchHeader(req.CommandData)
	if err != nil {
		return codec.EndDeviceSpec, nil
	}
	count = clampCount(count)
	values := req.CommandData[codec.DeviceDescriptorSize+2:]

	if req.SubCommand == codec.SubBit {
		if len(values) < count {
			return codec.EndCommandError, nil
		}
		bits := make([]bool, count)
		for i := 0; i < count; i++ {
			bits[i] = values[i] != 0
		}
		if err := d.store.BatchWriteBits(t, addr, bits); err != nil {
			return codec.EndWriteFailure, nil
		}
		return codec.EndOK, nil
	}

	if t.IsBit() {
		if len(values) < count*2 {
			return codec.EndCommandError, nil
		}
		// pre-check every target address before mutating any of
		// them, mirroring BatchWriteWords' all-or-nothing contract.
		failed := false
		d.store.WithLock(func(l *devicestore.Locked) {
			for i := 0; i < count; i++ {
				if err := l.CheckRange(t, addr+16*i); err != nil {
					failed = true
					return
				}
			}
			if failed {
				return
			}
			for i := 0; i < count; i++ {
				w := binary.LittleEndian.Uint16(values[2*i : 2*i+2])
				l.WriteWord(t, addr+16*i, w)
			}
		})
		if failed {
			return codec.EndWriteFailure, nil
		}
		return codec.EndOK, nil
	}

	if len(values) < count*2 {
		return codec.EndCommandError, nil
	}
	words := make([]uint16, count)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(values[2*i : 2*i+2])
	}
	if err := d.store.BatchWriteWords(t, addr, words); err != nil {
		return codec.EndWriteFailure, nil
	}
	return codec.EndOK, nil
}

func decodeBatchHeader(data []byte) (devtype.Type, int, int, error) {
	t, addr, err := codec.DecodeDeviceAddress(data)
	if err != nil {
		return devtype.Type{}, 0, 0, err
	}
	if len(data) < codec.DeviceDescriptorSize+2 {
		return devtype.Type{}, 0, 0, errShortHeader
	}
	count := int(binary.LittleEndian.Uint16(data[codec.DeviceDescriptorSize : codec.DeviceDescriptorSize+2]))
	return t, addr, count, nil
}

func (d *Dispatcher) randomRead(req codec.Request) (uint16, []byte) {
	if len(req.CommandData) < 2 {
		return codec.EndCommandError, nil
	}
	wordCount := int(req.CommandData[0])
	dwordCount := int(req.CommandData[1])
	off := 2
	payload := make([]byte, 0, wordCount*2+dwordCount*4)

	for i := 0; i < wordCount; i++ {
		if len(req.CommandData) < off+codec.DeviceDescriptorSize {
			return codec.EndDeviceSpec, nil
		}
		t, addr, err := codec.DecodeDeviceAddress(req.CommandData[off:])
		if err != nil {
			return codec.EndDeviceSpec, nil
		}
		off += codec.DeviceDescriptorSize
		payload = binary.LittleEndian.AppendUint16(payload, d.store.ReadWord(t, addr))
	}
	for i := 0; i < dwordCount; i++ {
		if len(req.CommandData) < off+codec.DeviceDescriptorSize {
			return codec.EndDeviceSpec, nil
		}
		t, addr, err := codec.DecodeDeviceAddress(req.CommandData[off:])
		if err != nil {
			return codec.EndDeviceSpec, nil
		}
		off += codec.DeviceDescriptorSize
		low := d.store.ReadWord(t, addr)
		high := d.store.ReadWord(t, addr+1)
		payload = binary.LittleEndian.AppendUint16(payload, low)
		payload = binary.LittleEndian.AppendUint16(payload, high)
	}
	return codec.EndOK, payload
}

type randomEntry struct {
	t      devtype.Type
	addr   int
	isWord bool // false = dword
	lo, hi uint16
}

func (d *Dispatcher) randomWrite(req codec.Request) (uint16, []byte) {
	if len(req.CommandData) < 2 {
		return codec.EndCommandError, nil
	}
	wordCount := int(req.CommandData[0])
	dwordCount := int(req.CommandData[1])
	off := 2
	entries := make([]randomEntry, 0, wordCount+dwordCount)

	for i := 0; i < wordCount; i++ {
		if len(req.CommandData) < off+codec.DeviceDescriptorSize+2 {
			return codec.EndCommandError, nil
		}
		t, addr, err := codec.DecodeDeviceAddress(req.CommandData[off:])
		if err != nil {
			return codec.EndDeviceSpec, nil
		}
		off += codec.DeviceDescriptorSize
		v := binary.LittleEndian.Uint16(req.CommandData[off : off+2])
		off += 2
		entries = append(entries, randomEntry{t: t, addr: addr, isWord: true, lo: v})
	}
	for i := 0; i < dwordCount; i++ {
		if len(req.CommandData) < off+codec.DeviceDescriptorSize+4 {
			return codec.EndCommandError, nil
		}
		t, addr, err := codec.DecodeDeviceAddress(req.CommandData[off:])
		if err != nil {
			return codec.EndDeviceSpec, nil
		}
		off += codec.DeviceDescriptorSize
		lo := binary.LittleEndian.Uint16(req.CommandData[off : off+2])
		hi := binary.LittleEndian.Uint16(req.CommandData[off+2 : off+4])
		off += 4
		entries = append(entries, randomEntry{t: t, addr: addr, isWord: false, lo: lo, hi: hi})
	}

	failed := false
	d.store.WithLock(func(l *devicestore.Locked) {
		for _, e := range entries {
			if err := l.CheckRange(e.t, e.addr); err != nil {
				failed = true
				return
			}
			if !e.isWord {
				if err := l.CheckRange(e.t, e.addr+1); err != nil {
					failed = true
					return
				}
			}
		}
		if failed {
			return
		}
		for _, e := range entries {
			l.WriteWord(e.t, e.addr, e.lo)
			if !e.isWord {
				l.WriteWord(e.t, e.addr+1, e.hi)
			}
		}
	})
	if failed {
		return codec.EndWriteFailure, nil
	}
	return codec.EndOK, nil
}

func (d *Dispatcher) cpuModelRead() (uint16, []byte) {
	out := make([]byte, 16)
	copy(out, d.cpuModel)
	return codec.EndOK, out
}
