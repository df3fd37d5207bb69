// Package source opens cameras and video files with OpenCV and hands out
// frames as frame.Frame values.
package source

import (
	"errors"
)

var (
	// ErrReadFailed is returned when the device produced no frame, usually
	// because it was unplugged or the file ended.
	ErrReadFailed = errors.New("cannot read frame")
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("capture source closed")
)
