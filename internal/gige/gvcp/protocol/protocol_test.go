package protocol

import (
	"bytes"
	"testing"

	"github.com/protolab/gigemc/internal/gige"
)

func TestRequestHeaderRoundTrip(t *testing.T) {
	h := RequestHeader{Flag: 0x01, Command: CmdDiscovery, ReqID: 0xFFFF}
	wire := h.Encode(nil)

	got, err := DecodeRequestHeader(wire)
	if err != nil {
		t.Fatalf("DecodeRequestHeader: %v", err)
	}
	if got != h {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, h)
	}
}

func TestDecodeRequestHeaderRejectsBadKey(t *testing.T) {
	wire := []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00}
	if _, err := DecodeRequestHeader(wire); err == nil {
		t.Error("expected error for bad key byte")
	}
}

func TestDiscoveryAckRoundTrip(t *testing.T) {
	d := gige.DeviceDescriptor{
		Manufacturer:     "Acme Vision",
		Model:            "AV-100",
		DeviceVersion:    "1.0.0",
		ManufacturerInfo: "built in a lab",
		Serial:           "SN12345",
		UserDefinedName:  "cam-1",
		IPv4:             [4]byte{192, 168, 1, 100},
		MAC:              [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
	}

	payload := EncodeDiscoveryAck(d, 0x00020000)
	if len(payload) != DiscoveryPayloadSize {
		t.Fatalf("len(payload) = %d, want %d", len(payload), DiscoveryPayloadSize)
	}

	// bytes at offsets 0x24..0x27 equal C0 A8 01 64 for 192.168.1.100
	want := []byte{0xC0, 0xA8, 0x01, 0x64}
	if !bytes.Equal(payload[offCurrentIP:offCurrentIP+4], want) {
		t.Errorf("current IP bytes = % X, want % X", payload[offCurrentIP:offCurrentIP+4], want)
	}

	got, err := DecodeDiscoveryAck(payload)
	if err != nil {
		t.Fatalf("DecodeDiscoveryAck: %v", err)
	}
	if got != d {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, d)
	}
}

func TestRegisterPayloadsRoundTrip(t *testing.T) {
	addrs := []uint32{0x0000, 0x0048, 0x00D8}
	encoded := EncodeReadRegisterRequest(addrs)
	decoded, err := DecodeReadRegisterRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeReadRegisterRequest: %v", err)
	}
	if len(decoded) != len(addrs) {
		t.Fatalf("len(decoded) = %d, want %d", len(decoded), len(addrs))
	}
	for i := range addrs {
		if decoded[i] != addrs[i] {
			t.Errorf("addrs[%d] = 0x%X, want 0x%X", i, decoded[i], addrs[i])
		}
	}

	writes := []RegisterWrite{{Address: 0x0124, Value: 1}, {Address: 0x0A00, Value: 1}}
	wEncoded := EncodeWriteRegisterRequest(writes)
	wDecoded, err := DecodeWriteRegisterRequest(wEncoded)
	if err != nil {
		t.Fatalf("DecodeWriteRegisterRequest: %v", err)
	}
	if len(wDecoded) != len(writes) {
		t.Fatalf("len(wDecoded) = %d, want %d", len(wDecoded), len(writes))
	}
	for i := range writes {
		if wDecoded[i] != writes[i] {
			t.Errorf("writes[%d] = %+v, want %+v", i, wDecoded[i], writes[i])
		}
	}
}
