// Package frame holds the pixel buffers passed from the camera to the panes.
// It has no OpenCV dependency so the pipeline can be exercised without one.
package frame

import (
	"fmt"
	"image"
	"time"
)

// ColorSpace tags the channel order of a Frame.
type ColorSpace int

const (
	// BGR is the order the camera driver produces.
	BGR ColorSpace = iota
	// RGB is the order the panes display.
	RGB
)

func (c ColorSpace) String() string {
	switch c {
	case BGR:
		return "BGR"
	case RGB:
		return "RGB"
	}
	return fmt.Sprintf("ColorSpace(%d)", int(c))
}

// Channels is the number of bytes per pixel in Frame.Pix.
const Channels = 3

// Frame is one captured image. Pix is row-major, Channels bytes per pixel.
// Frames are never modified after creation; operations return new frames.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Space  ColorSpace
	Time   time.Time
}

// New wraps pix as a frame, checking that the buffer matches the dimensions.
func New(pix []byte, width, height int, space ColorSpace) (Frame, error) {
	if width < 0 || height < 0 {
		return Frame{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pix) != width*height*Channels {
		return Frame{}, fmt.Errorf("frame buffer has %d bytes, want %d for %dx%d", len(pix), width*height*Channels, width, height)
	}
	return Frame{
		Pix:    pix,
		Width:  width,
		Height: height,
		Space:  space,
		Time:   time.Now(),
	}, nil
}

func (f Frame) Empty() bool {
	return f.Width == 0 || f.Height == 0
}

func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At returns the three channel values of pixel (x, y) in storage order.
func (f Frame) At(x, y int) (byte, byte, byte) {
	i := (y*f.Width + x) * Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// ToRGB returns a display-ready copy of f. RGB frames are returned as is.
func ToRGB(f Frame) Frame {
	if f.Space == RGB {
		return f
	}
	pix := make([]byte, len(f.Pix))
	for i := 0; i+2 < len(f.Pix); i += Channels {
		pix[i] = f.Pix[i+2]
		pix[i+1] = f.Pix[i+1]
		pix[i+2] = f.Pix[i]
	}
	out := f
	out.Pix = pix
	out.Space = RGB
	return out
}

// Image converts f to an opaque RGBA image.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for p, q := 0, 0; p+2 < len(f.Pix); p, q = p+Channels, q+4 {
		r, g, b := f.Pix[p], f.Pix[p+1], f.Pix[p+2]
		if f.Space == BGR {
			r, b = b, r
		}
		img.Pix[q] = r
		img.Pix[q+1] = g
		img.Pix[q+2] = b
		img.Pix[q+3] = 0xff
	}
	return img
}
