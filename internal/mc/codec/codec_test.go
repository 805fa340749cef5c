package codec

import (
	"testing"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

func TestParse3EBinaryBatchRead(t *testing.T) {
	data := EncodeDeviceAddress(devtype.D, 0)
	data = append(data, 0x03, 0x00) // count=3, LE
	req := NewRequest(Frame3EBinary, 0, 0xFF, 0, CmdBatchRead, SubWord, data)
	wire := EncodeRequest(req)

	got, err := ParseRequest(wire)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if got.FrameType != Frame3EBinary {
		t.Errorf("FrameType = %v, want Frame3EBinary", got.FrameType)
	}
	if got.Command != CmdBatchRead || got.SubCommand != SubWord {
		t.Errorf("command/sub = %#x/%#x", got.Command, got.SubCommand)
	}
	tp, addr, err := DecodeDeviceAddress(got.CommandData)
	if err != nil {
		t.Fatalf("DecodeDeviceAddress: %v", err)
	}
	if tp != devtype.D || addr != 0 {
		t.Errorf("device = %v@%d, want D@0", tp, addr)
	}
}

func TestRequestRoundTripAllFormats(t *testing.T) {
	data := EncodeDeviceAddress(devtype.D, 100)
	data = append(data, 0x03, 0x00)

	formats := []FrameType{Frame3EBinary, Frame4EBinary, Frame3EASCII, Frame4EASCII}
	for _, ft := range formats {
		req := NewRequest(ft, 0x00, 0xFF, 0x1234, CmdBatchRead, SubWord, data)
		wire := EncodeRequest(req)

		parsed, err := ParseRequest(wire)
		if err != nil {
			t.Fatalf("%v: ParseRequest: %v", ft, err)
		}
		reencoded := EncodeRequest(parsed)

		// ASCII forms canonicalise to uppercase hex; our encoder
		// always emits uppercase, so a direct comparison suffices.
		if string(reencoded) != string(wire) {
			t.Errorf("%v: roundtrip mismatch:\n  got  %x\n  want %x", ft, reencoded, wire)
		}
	}
}

func TestParse1ENormalisesToThreeECommand(t *testing.T) {
	wire := Encode1ERequest(0x01, 0xFF, 0, devtype.D.WireCode, 3, nil)
	req, err := ParseRequest(wire)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.FrameType != FrameOneE {
		t.Errorf("FrameType = %v, want FrameOneE", req.FrameType)
	}
	if req.Command != CmdBatchRead || req.SubCommand != SubWord {
		t.Errorf("command/sub = %#x/%#x, want BatchRead/Word", req.Command, req.SubCommand)
	}
}

func TestParse1EWriteCarriesData(t *testing.T) {
	values := []byte{100, 0, 200, 0, 300 & 0xFF, 300 >> 8}
	wire := Encode1ERequest(0x03, 0xFF, 0, devtype.D.WireCode, 3, values)
	req, err := ParseRequest(wire)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Command != CmdBatchWrite {
		t.Errorf("Command = %#x, want CmdBatchWrite", req.Command)
	}
	wantTail := req.CommandData[DeviceDescriptorSize+2:]
	if string(wantTail) != string(values) {
		t.Errorf("write payload = %v, want %v", wantTail, values)
	}
}

func TestMalformedRequestYieldsError(t *testing.T) {
	wire := []byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if _, err := ParseRequest(wire); err == nil {
		t.Errorf("expected ParseRequest to fail on unrecognised leading bytes")
	}
}

func TestParseResponseRoundTripAllFormats(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	formats := []FrameType{FrameOneE, Frame3EBinary, Frame4EBinary, Frame3EASCII, Frame4EASCII}
	for _, ft := range formats {
		req := NewRequest(ft, 0x00, 0xFF, 0x1234, CmdBatchRead, SubWord, nil)
		req.OneECommand = 0x01 // only consulted by the 1E encoder
		wire := EncodeResponse(req, EndOK, payload)

		gotEnd, gotPayload, err := ParseResponse(ft, wire)
		if err != nil {
			t.Fatalf("%v: ParseResponse: %v", ft, err)
		}
		if gotEnd != EndOK {
			t.Errorf("%v: end code = 0x%04X, want OK", ft, gotEnd)
		}
		if string(gotPayload) != string(payload) {
			t.Errorf("%v: payload = %v, want %v", ft, gotPayload, payload)
		}
	}
}

func TestEncodeResponseEndCode(t *testing.T) {
	req := NewRequest(Frame3EBinary, 0, 0xFF, 0, CmdBatchRead, SubWord, nil)
	wire := EncodeResponse(req, EndCommandError, []byte{0xAA, 0xBB})
	if wire[0] != 0xD0 || wire[1] != 0x00 {
		t.Fatalf("response subheader = %x, want D0 00", wire[:2])
	}
	// network(1) pc(1) dest_io(2) dest_station(1) length(2) end_code(2) payload
	endCodeOff := 2 + 1 + 1 + 2 + 1 + 2
	endCode := uint16(wire[endCodeOff]) | uint16(wire[endCodeOff+1])<<8
	if endCode != EndCommandError {
		t.Errorf("end code = 0x%04X, want 0x%04X", endCode, EndCommandError)
	}
	payload := wire[endCodeOff+2:]
	if string(payload) != string([]byte{0xAA, 0xBB}) {
		t.Errorf("payload = %v, want [AA BB]", payload)
	}
}
