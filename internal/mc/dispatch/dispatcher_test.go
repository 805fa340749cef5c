package dispatch

import (
	"encoding/binary"
	"testing"

	"github.com/protolab/gigemc/internal/mc/codec"
	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

func batchWriteData(t devtype.Type, addr, count int, words []uint16) []byte {
	data := codec.EncodeDeviceAddress(t, addr)
	data = binary.LittleEndian.AppendUint16(data, uint16(count))
	for _, w := range words {
		data = binary.LittleEndian.AppendUint16(data, w)
	}
	return data
}

func batchReadData(t devtype.Type, addr, count int) []byte {
	data := codec.EncodeDeviceAddress(t, addr)
	return binary.LittleEndian.AppendUint16(data, uint16(count))
}

func decodeWords(payload []byte) []uint16 {
	out := make([]uint16, len(payload)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(payload[2*i : 2*i+2])
	}
	return out
}

func TestWriteReadQSeries(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	d := New(store, nil)

	writeReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdBatchWrite, codec.SubWord,
		batchWriteData(devtype.D, 0, 3, []uint16{100, 200, 300}))
	if end, _ := d.Dispatch(writeReq); end != codec.EndOK {
		t.Fatalf("write end code = 0x%04X, want OK", end)
	}

	readReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdBatchRead, codec.SubWord,
		batchReadData(devtype.D, 0, 3))
	end, payload := d.Dispatch(readReq)
	if end != codec.EndOK {
		t.Fatalf("read end code = 0x%04X, want OK", end)
	}
	got := decodeWords(payload)
	want := []uint16{100, 200, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("D%d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestWriteRead1E(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	d := New(store, nil)

	writeWire := codec.Encode1ERequest(0x03, 0xFF, 0, devtype.D.WireCode, 3, encodeWords(500, 600, 700))
	writeReq, err := codec.ParseRequest(writeWire)
	if err != nil {
		t.Fatalf("ParseRequest write: %v", err)
	}
	if end, _ := d.Dispatch(writeReq); end != codec.EndOK {
		t.Fatalf("write end code = 0x%04X, want OK", end)
	}

	readWire := codec.Encode1ERequest(0x01, 0xFF, 0, devtype.D.WireCode, 3, nil)
	readReq, err := codec.ParseRequest(readWire)
	if err != nil {
		t.Fatalf("ParseRequest read: %v", err)
	}
	end, payload := d.Dispatch(readReq)
	if end != codec.EndOK {
		t.Fatalf("read end code = 0x%04X, want OK", end)
	}
	got := decodeWords(payload)
	want := []uint16{500, 600, 700}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("D%d = %d, want %d", i, got[i], want[i])
		}
	}
}

func encodeWords(vals ...uint16) []byte {
	var out []byte
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

type fakeEngine struct {
	running      bool
	resetCalls   int
	timerCleared bool
}

func (f *fakeEngine) Start()        { f.running = true }
func (f *fakeEngine) Stop()         { f.running = false }
func (f *fakeEngine) Running() bool { return f.running }
func (f *fakeEngine) Reset() {
	f.running = false
	f.resetCalls++
	f.timerCleared = true
}

func TestRunTransitionStartsAndResetStopsEngine(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	engine := &fakeEngine{}
	d := New(store, engine)

	_ = store.WriteWord(devtype.D, 0, 42)

	runReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdRemoteRun, 0, nil)
	d.Dispatch(runReq)
	if d.State() != Run || !engine.Running() {
		t.Fatalf("state = %v, engine.Running = %v, want Run/true", d.State(), engine.Running())
	}

	resetReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdRemoteReset, 0, nil)
	d.Dispatch(resetReq)
	if d.State() != Stop || engine.Running() {
		t.Fatalf("state = %v, engine.Running = %v, want Stop/false", d.State(), engine.Running())
	}
	if got := store.ReadWord(devtype.D, 0); got != 0 {
		t.Errorf("D0 after reset = %d, want 0", got)
	}
}

func TestRemoteResetClearsEngineTimerState(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	engine := &fakeEngine{}
	d := New(store, engine)

	runReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdRemoteRun, 0, nil)
	d.Dispatch(runReq)
	if !engine.Running() {
		t.Fatalf("engine.Running() = false after RUN, want true")
	}

	resetReq := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdRemoteReset, 0, nil)
	d.Dispatch(resetReq)

	if engine.resetCalls != 1 {
		t.Errorf("engine.resetCalls = %d, want 1 (RESET must call Engine.Reset, not just Stop)", engine.resetCalls)
	}
	if !engine.timerCleared {
		t.Errorf("engine.timerCleared = false, want true")
	}
	if engine.Running() {
		t.Errorf("engine.Running() = true after RESET, want false")
	}
}

func TestBatchWriteOutOfRangeReturnsWriteFailure(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	d := New(store, nil)

	words := make([]uint16, 20000)
	req := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, codec.CmdBatchWrite, codec.SubWord,
		batchWriteData(devtype.D, 0, len(words), words))
	if end, _ := d.Dispatch(req); end != codec.EndWriteFailure {
		t.Errorf("end code = 0x%04X, want EndWriteFailure", end)
	}
}

func TestUnsupportedCommandReturnsCommandError(t *testing.T) {
	store := devicestore.New(devtype.SeriesQ)
	d := New(store, nil)
	req := codec.NewRequest(codec.Frame3EBinary, 0, 0xFF, 0, 0x9999, 0, nil)
	if end, _ := d.Dispatch(req); end != codec.EndCommandError {
		t.Errorf("end code = 0x%04X, want EndCommandError", end)
	}
}
