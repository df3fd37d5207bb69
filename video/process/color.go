// Package process holds the OpenCV-backed image operations: face detection
// and color conversion.
package process

import (
	"gocv.io/x/gocv"

	"facecam/video/frame"
)

// ToDisplay converts a BGR frame to RGB with OpenCV. RGB frames pass through.
func ToDisplay(f frame.Frame) frame.Frame {
	if f.Space == frame.RGB || f.Empty() {
		return f
	}
	src, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return frame.ToRGB(f)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToRGB)

	out := f
	out.Pix = dst.ToBytes()
	out.Space = frame.RGB
	return out
}
