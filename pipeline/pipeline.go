// Package pipeline moves frames from a camera to two display slots.
//
// A CaptureLoop goroutine reads, converts and runs face detection on frames,
// then offers RenderJobs to a bounded Queue. A DispatchLoop, which runs on the
// UI thread and reschedules itself with single-shot timers, polls the queue
// and updates the slots. Lifecycle owns all of it and tears it down once.
package pipeline

import (
	"time"

	"facecam/video/frame"
)

// FrameSource is a camera. Read blocks until a frame is available. Close must
// be safe to call more than once.
type FrameSource interface {
	Read() (frame.Frame, error)
	Close() error
}

// Detector finds faces. The first box returned is the one displayed.
type Detector interface {
	Detect(f frame.Frame) ([]frame.BoundingBox, error)
}

// Slot is one display pane. Update is only called from the UI thread.
type Slot interface {
	Update(f frame.Frame)
}

// Scheduler runs f once on the UI thread after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Converter turns a capture-native frame into a display-ready one.
type Converter func(frame.Frame) frame.Frame

// RenderJob is one frame's worth of display work.
type RenderJob struct {
	Seq    uint64
	Webcam frame.Frame
	// Face is the cropped detection, or Webcam when Detected is false.
	Face     frame.Frame
	Box      frame.BoundingBox
	Detected bool
}

type multiSlot []Slot

func (m multiSlot) Update(f frame.Frame) {
	for _, s := range m {
		s.Update(f)
	}
}

// Slots returns a Slot that updates each non-nil slot in order.
func Slots(slots ...Slot) Slot {
	var m multiSlot
	for _, s := range slots {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}
