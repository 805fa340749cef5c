package codec

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// defaultTimer is the monitoring timer value this emulator's client
// always sends; the server does not model timer-driven aborts.
const defaultTimer uint16 = 0x0010

// NewRequest builds a 3E/4E Request with this emulator's default
// timer and dest_io/dest_station, ready for EncodeRequest.
func NewRequest(ft FrameType, networkNo, pcNo byte, serialNo uint16, command, subCommand uint16, commandData []byte) Request {
	return Request{
		FrameType:   ft,
		Command:     command,
		SubCommand:  subCommand,
		CommandData: commandData,
		NetworkNo:   networkNo,
		PCNo:        pcNo,
		DestIO:      0xFFFF,
		DestStation: 0x00,
		Timer:       defaultTimer,
		SerialNo:    serialNo,
	}
}

// EncodeRequest builds a 3E/4E request frame (binary or ASCII per
// req.FrameType) from every field of req. Use Encode1ERequest for 1E
// frames, whose header shape differs.
func EncodeRequest(req Request) []byte {
	ft := req.FrameType
	if ft.IsASCII() {
		subheader := "5000"
		if ft.IsFourE() {
			subheader = "5400"
		}
		var sb strings.Builder
		sb.WriteString(subheader)
		if ft.IsFourE() {
			sb.WriteString(hexLE16(req.SerialNo))
			sb.WriteString("0000")
		}
		sb.WriteString(hexByte(req.NetworkNo))
		sb.WriteString(hexByte(req.PCNo))
		sb.WriteString(hexLE16(req.DestIO))
		sb.WriteString(hexByte(req.DestStation))
		length := uint16(6 + len(req.CommandData))
		sb.WriteString(hexLE16(length))
		sb.WriteString(hexLE16(req.Timer))
		sb.WriteString(hexLE16(req.Command))
		sb.WriteString(hexLE16(req.SubCommand))
		sb.WriteString(strings.ToUpper(hex.EncodeToString(req.CommandData)))
		return []byte(sb.String())
	}

	subheaderHigh := byte(0x50)
	if ft.IsFourE() {
		subheaderHigh = 0x54
	}
	out := []byte{subheaderHigh, 0x00}
	if ft.IsFourE() {
		out = binary.LittleEndian.AppendUint16(out, req.SerialNo)
		out = append(out, 0x00, 0x00)
	}
	out = append(out, req.NetworkNo, req.PCNo)
	out = binary.LittleEndian.AppendUint16(out, req.DestIO)
	out = append(out, req.DestStation)
	length := uint16(6 + len(req.CommandData))
	out = binary.LittleEndian.AppendUint16(out, length)
	out = binary.LittleEndian.AppendUint16(out, req.Timer)
	out = binary.LittleEndian.AppendUint16(out, req.Command)
	out = binary.LittleEndian.AppendUint16(out, req.SubCommand)
	out = append(out, req.CommandData...)
	return out
}

// Encode1ERequest builds a 1E (A-compatible) request frame. cmdByte is
// one of the four 1E command bytes; addr and codeByte name the device,
// count is the number of points, and writeData (nil for reads) is
// appended after the 11-byte header.
func Encode1ERequest(cmdByte, pcNo byte, addr int, codeByte byte, count uint16, writeData []byte) []byte {
	out := make([]byte, 11)
	out[0] = cmdByte
	out[1] = pcNo
	binary.LittleEndian.PutUint16(out[2:4], defaultTimer)
	out[4] = byte(addr)
	out[5] = byte(addr >> 8)
	out[6] = byte(addr >> 16)
	out[7] = 0x00
	out[8] = codeByte
	binary.LittleEndian.PutUint16(out[9:11], count)
	return append(out, writeData...)
}
