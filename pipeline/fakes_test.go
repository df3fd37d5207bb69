package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"facecam/video/frame"
)

var errUnplugged = errors.New("camera unplugged")

func testFrame(w, h int) frame.Frame {
	f, err := frame.New(make([]byte, w*h*frame.Channels), w, h, frame.BGR)
	if err != nil {
		panic(err)
	}
	return f
}

// listSource returns its frames in order and then fails.
type listSource struct {
	mu     sync.Mutex
	frames []frame.Frame
	closes int32
}

func (s *listSource) Read() (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return frame.Frame{}, errUnplugged
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *listSource) Close() error {
	atomic.AddInt32(&s.closes, 1)
	return nil
}

// gateSource blocks each Read until a frame is sent on next.
type gateSource struct {
	next    chan frame.Frame
	reading chan struct{}
	closes  int32
}

func newGateSource() *gateSource {
	return &gateSource{
		next:    make(chan frame.Frame),
		reading: make(chan struct{}, 16),
	}
}

func (s *gateSource) Read() (frame.Frame, error) {
	s.reading <- struct{}{}
	return <-s.next, nil
}

func (s *gateSource) Close() error {
	atomic.AddInt32(&s.closes, 1)
	return nil
}

// steadySource produces a frame every interval until failAfter frames, if set.
type steadySource struct {
	interval  time.Duration
	failAfter int
	reads     int
	closes    int32
}

func (s *steadySource) Read() (frame.Frame, error) {
	if s.failAfter > 0 && s.reads >= s.failAfter {
		return frame.Frame{}, errUnplugged
	}
	s.reads++
	time.Sleep(s.interval)
	return testFrame(8, 8), nil
}

func (s *steadySource) Close() error {
	atomic.AddInt32(&s.closes, 1)
	return nil
}

type fixedDetector struct {
	boxes []frame.BoundingBox
	err   error
}

func (d fixedDetector) Detect(frame.Frame) ([]frame.BoundingBox, error) {
	return d.boxes, d.err
}

type recordSlot struct {
	mu     sync.Mutex
	frames []frame.Frame
}

func (s *recordSlot) Update(f frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *recordSlot) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type scheduled struct {
	delay time.Duration
	f     func()
}

// manualScheduler queues callbacks and runs them only when stepped.
type manualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
	delays  []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, scheduled{d, f})
	s.delays = append(s.delays, d)
}

// step runs the oldest pending callback and reports whether there was one.
func (s *manualScheduler) step() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()
	next.f()
	return true
}

// drain steps until nothing is pending or limit steps have run.
func (s *manualScheduler) drain(limit int) int {
	n := 0
	for n < limit && s.step() {
		n++
	}
	return n
}

func (s *manualScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
