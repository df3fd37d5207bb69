package source

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"facecam/video/frame"
)

// VideoCapture reads BGR frames from a camera index or a video URI.
type VideoCapture struct {
	URI string

	cap *gocv.VideoCapture
	mat gocv.Mat

	l      sync.Mutex
	closed bool
}

// NewVideoCapture opens uri. A numeric uri selects a camera device; width
// and height, if non-zero, request a capture resolution.
func NewVideoCapture(uri string, width, height int) (*VideoCapture, error) {
	var device interface{} = uri
	if id, err := strconv.Atoi(uri); err == nil {
		device = id
	}
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture %q: %w", uri, err)
	}
	if width > 0 && height > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
		cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	log.Infof("Opened video capture %q", uri)
	return &VideoCapture{
		URI: uri,
		cap: cap,
		mat: gocv.NewMat(),
	}, nil
}

// Read blocks until the next frame is available.
func (v *VideoCapture) Read() (frame.Frame, error) {
	v.l.Lock()
	defer v.l.Unlock()
	if v.closed {
		return frame.Frame{}, ErrClosed
	}

	if ok := v.cap.Read(&v.mat); !ok || v.mat.Empty() {
		return frame.Frame{}, ErrReadFailed
	}
	if c := v.mat.Channels(); c != frame.Channels {
		return frame.Frame{}, fmt.Errorf("unexpected %d-channel frame", c)
	}
	f, err := frame.New(v.mat.ToBytes(), v.mat.Cols(), v.mat.Rows(), frame.BGR)
	if err != nil {
		return frame.Frame{}, err
	}
	f.Time = time.Now()
	return f, nil
}

// Size returns the negotiated capture size.
func (v *VideoCapture) Size() (int, int) {
	return int(v.cap.Get(gocv.VideoCaptureFrameWidth)), int(v.cap.Get(gocv.VideoCaptureFrameHeight))
}

// Close releases the device. It is safe to call more than once.
func (v *VideoCapture) Close() error {
	v.l.Lock()
	defer v.l.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.mat.Close()
	log.Infof("Closing video capture %q", v.URI)
	return v.cap.Close()
}
