// Package gige holds types shared by the GVCP and GVSP cores: the
// device descriptor a discovery reply advertises and the image
// configuration a streaming channel is paced against.
package gige

// PixelFormat is the wire pixel-format code carried in a GVSP leader.
// The GigE Vision 2.0 values are reproduced here only for the variants
// this emulator needs to distinguish.
type PixelFormat uint32

const (
	Mono8       PixelFormat = 0x01080001
	Mono16      PixelFormat = 0x01100007
	BayerGR8    PixelFormat = 0x01080008
	BayerRG8    PixelFormat = 0x01080009
	BayerGB8    PixelFormat = 0x0108000A
	BayerBG8    PixelFormat = 0x0108000B
	RGB8Packed  PixelFormat = 0x02180014
	BGR8Packed  PixelFormat = 0x02180015
)

// BytesPerPixel returns the storage width of one pixel for the formats
// this emulator produces and consumes. BGR8Packed and RGB8Packed carry
// distinct codes here and are both three bytes per pixel; the emulator
// CLI only offers BGR8Packed.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case Mono8:
		return 1
	case Mono16:
		return 2
	case BayerGR8, BayerRG8, BayerGB8, BayerBG8:
		return 1
	case RGB8Packed, BGR8Packed:
		return 3
	default:
		return 1
	}
}

// Channels returns the number of planes a decoded frame should carry.
func (f PixelFormat) Channels() int {
	if f == RGB8Packed || f == BGR8Packed {
		return 3
	}
	return 1
}

// DeviceDescriptor is the server-visible identity also surfaced to
// clients in a discovery reply, mirroring the GigE Vision bootstrap
// register map.
type DeviceDescriptor struct {
	Manufacturer     string
	Model            string
	DeviceVersion    string
	ManufacturerInfo string
	Serial           string
	UserDefinedName  string

	IPv4 [4]byte
	MAC  [6]byte
}

// ImageConfig describes the image a streaming channel sends: its
// dimensions, pixel layout, and pacing.
type ImageConfig struct {
	Width       uint32
	Height      uint32
	PixelFormat PixelFormat
	FrameRate   float64 // frames per second
	PacketSize  uint32  // bytes, including the 8-byte GVSP header
	PacketDelay uint32  // microseconds between payload packets
}
