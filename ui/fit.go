package ui

import (
	"image"

	"golang.org/x/image/draw"

	"facecam/video/frame"
)

// Fit scales f to exactly w by h pixels, ignoring aspect ratio.
func Fit(f frame.Frame, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if f.Empty() {
		return dst
	}
	src := f.Image()
	if src.Bounds().Eq(dst.Bounds()) {
		return src
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
