package imagesource

import (
	"fmt"
	"image"
	"image/color"

	"github.com/protolab/gigemc/internal/gige"
)

// Frame is one decoded image, already laid out in the pixel format a
// caller asked for.
type Frame struct {
	Width       int
	Height      int
	PixelFormat gige.PixelFormat
	Pixels      []byte
}

// Source supplies frames to GVSP-S, cycling on end.
type Source interface {
	Next() (Frame, error)
}

// Pattern selects the built-in test-pattern generator's output.
type Pattern int

const (
	PatternCheckerboard Pattern = iota
	PatternGradient
	PatternSolid
)

// PatternSource generates synthetic frames with no file I/O.
type PatternSource struct {
	Width, Height int
	PixelFormat   gige.PixelFormat
	Pattern       Pattern
	Value         byte // used by PatternSolid

	frame int
}

// NewPatternSource creates a generator sized to cfg.
func NewPatternSource(cfg gige.ImageConfig, pattern Pattern) *PatternSource {
	return &PatternSource{
		Width:       int(cfg.Width),
		Height:      int(cfg.Height),
		PixelFormat: cfg.PixelFormat,
		Pattern:     pattern,
	}
}

// Next produces the next synthetic frame. Patterns are deterministic
// per frame index so repeated Next() calls cycle visibly.
func (s *PatternSource) Next() (Frame, error) {
	bpp := s.PixelFormat.BytesPerPixel()
	pixels := make([]byte, s.Width*s.Height*bpp)

	switch s.Pattern {
	case PatternCheckerboard:
		fillCheckerboard(pixels, s.Width, s.Height, bpp, s.frame)
	case PatternGradient:
		fillGradient(pixels, s.Width, s.Height, bpp, s.frame)
	default:
		for i := range pixels {
			pixels[i] = s.Value
		}
	}

	s.frame++
	return Frame{Width: s.Width, Height: s.Height, PixelFormat: s.PixelFormat, Pixels: pixels}, nil
}

func fillCheckerboard(pixels []byte, w, h, bpp, frame int) {
	const tile = 8
	phase := frame % 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			on := ((x/tile)+(y/tile)+phase)%2 == 0
			v := byte(0x20)
			if on {
				v = byte(0xE0)
			}
			off := (y*w + x) * bpp
			for c := 0; c < bpp; c++ {
				pixels[off+c] = v
			}
		}
	}
}

func fillGradient(pixels []byte, w, h, bpp, frame int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte((x + frame) % 256)
			off := (y*w + x) * bpp
			for c := 0; c < bpp; c++ {
				pixels[off+c] = v
			}
		}
	}
}

// decodeToFrame converts a stdlib image.Image into a Mono8, BGR8 or
// RGB8 Frame, the formats this emulator's file-backed sources support.
func decodeToFrame(img image.Image, format gige.PixelFormat) (Frame, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bpp := format.BytesPerPixel()
	pixels := make([]byte, w*h*bpp)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (y*w + x) * bpp
			switch format {
			case gige.Mono8:
				gray := color.GrayModel.Convert(color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF}).(color.Gray)
				pixels[off] = gray.Y
			case gige.BGR8Packed:
				pixels[off] = uint8(b >> 8)
				pixels[off+1] = uint8(g >> 8)
				pixels[off+2] = uint8(r >> 8)
			case gige.RGB8Packed:
				pixels[off] = uint8(r >> 8)
				pixels[off+1] = uint8(g >> 8)
				pixels[off+2] = uint8(b >> 8)
			default:
				return Frame{}, fmt.Errorf("imagesource: unsupported pixel format 0x%X", uint32(format))
			}
		}
	}
	return Frame{Width: w, Height: h, PixelFormat: format, Pixels: pixels}, nil
}
