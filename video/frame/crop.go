package frame

import (
	"fmt"
	"image"
)

// BoundingBox is a detected region within a frame.
type BoundingBox struct {
	X, Y, W, H int
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(x=%d, y=%d, w=%d, h=%d)", b.X, b.Y, b.W, b.H)
}

// FromRect converts a detector rectangle to a box.
func FromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// CropMode selects how a box is translated to a pixel region.
type CropMode int

const (
	// CropWidthRows takes rows y:y+w and columns x:x+h. This is the formula
	// the desktop app has always used; for square detections it is the same
	// as CropHeightRows.
	CropWidthRows CropMode = iota
	// CropHeightRows takes rows y:y+h and columns x:x+w.
	CropHeightRows
)

// ParseCropMode maps the config names "width" and "height" to a mode.
func ParseCropMode(s string) (CropMode, error) {
	switch s {
	case "", "width":
		return CropWidthRows, nil
	case "height":
		return CropHeightRows, nil
	}
	return CropWidthRows, fmt.Errorf("unknown crop mode %q", s)
}

func (m CropMode) String() string {
	if m == CropHeightRows {
		return "height"
	}
	return "width"
}

// Region returns the pixel rectangle covered by b under mode, clipped to the
// frame the way slice bounds are clipped.
func (m CropMode) Region(b BoundingBox, bounds image.Rectangle) image.Rectangle {
	rows, cols := b.H, b.W
	if m == CropWidthRows {
		rows, cols = b.W, b.H
	}
	return image.Rect(b.X, b.Y, b.X+cols, b.Y+rows).Intersect(bounds)
}

// Crop copies the region of f described by b. If the region is empty the
// original frame is returned.
func Crop(f Frame, b BoundingBox, mode CropMode) Frame {
	r := mode.Region(b, f.Bounds())
	if r.Empty() {
		return f
	}
	w, h := r.Dx(), r.Dy()
	pix := make([]byte, 0, w*h*Channels)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := (y*f.Width + r.Min.X) * Channels
		pix = append(pix, f.Pix[start:start+w*Channels]...)
	}
	return Frame{
		Pix:    pix,
		Width:  w,
		Height: h,
		Space:  f.Space,
		Time:   f.Time,
	}
}
