package protocol

import (
	"encoding/binary"

	"github.com/protolab/gigemc/internal/gige"
)

// DiscoveryPayloadSize is the fixed size of a Discovery-Ack body: a
// 256-byte payload at deterministic offsets.
const DiscoveryPayloadSize = 256

// Field offsets within the discovery-ack payload.
const (
	offSpecVersion     = 0
	offDeviceMode      = 4
	offMAC             = 8
	offSupportedIPCfg  = 16
	offCurrentIPCfg    = 20
	offCurrentIP       = 36
	offSubnet          = 52
	offGateway         = 68
	offManufacturer    = 72
	offModel           = 104
	offDeviceVersion   = 136
	offManufacturerInf = 168
	offSerial          = 216
	offUserName        = 232
)

// EncodeDiscoveryAck builds the 256-byte Discovery-Ack payload body
// for the given device descriptor.
func EncodeDiscoveryAck(d gige.DeviceDescriptor, specVersion uint32) []byte {
	buf := make([]byte, DiscoveryPayloadSize)

	binary.BigEndian.PutUint32(buf[offSpecVersion:], specVersion)
	// device mode left 0: single-device, default behaviour

	copy(buf[offMAC:offMAC+6], d.MAC[:])

	copy(buf[offCurrentIP:offCurrentIP+4], d.IPv4[:])

	putPadded(buf[offManufacturer:offManufacturer+32], d.Manufacturer)
	putPadded(buf[offModel:offModel+32], d.Model)
	putPadded(buf[offDeviceVersion:offDeviceVersion+32], d.DeviceVersion)
	putPadded(buf[offManufacturerInf:offManufacturerInf+48], d.ManufacturerInfo)
	putPadded(buf[offSerial:offSerial+16], d.Serial)
	putPadded(buf[offUserName:offUserName+16], d.UserDefinedName)

	return buf
}

// DecodeDiscoveryAck parses a Discovery-Ack payload back into a
// device descriptor. Used by GVCP-C.
func DecodeDiscoveryAck(buf []byte) (gige.DeviceDescriptor, error) {
	if len(buf) < DiscoveryPayloadSize {
		return gige.DeviceDescriptor{}, errShort("discovery ack", DiscoveryPayloadSize, len(buf))
	}
	var d gige.DeviceDescriptor
	copy(d.MAC[:], buf[offMAC:offMAC+6])
	copy(d.IPv4[:], buf[offCurrentIP:offCurrentIP+4])
	d.Manufacturer = trimPadded(buf[offManufacturer : offManufacturer+32])
	d.Model = trimPadded(buf[offModel : offModel+32])
	d.DeviceVersion = trimPadded(buf[offDeviceVersion : offDeviceVersion+32])
	d.ManufacturerInfo = trimPadded(buf[offManufacturerInf : offManufacturerInf+48])
	d.Serial = trimPadded(buf[offSerial : offSerial+16])
	d.UserDefinedName = trimPadded(buf[offUserName : offUserName+16])
	return d, nil
}

// putPadded copies s into dst, null-padding or truncating to len(dst).
func putPadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// trimPadded returns the leading non-null-terminated portion of b as
// a string.
func trimPadded(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
