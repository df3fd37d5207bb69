package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"facecam/util"
	"facecam/video/frame"
)

type CaptureState int32

const (
	Created CaptureState = iota
	Running
	StopRequested
	Stopped
)

func (s CaptureState) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case StopRequested:
		return "stop_requested"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("CaptureState(%d)", int32(s))
}

// CaptureError reports a camera read failure that ended the capture loop.
type CaptureError struct {
	Seq uint64
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed after %d frames: %v", e.Seq, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

var ErrAlreadyStarted = errors.New("capture loop already started")

type CaptureOptions struct {
	// Convert defaults to frame.ToRGB.
	Convert  Converter
	CropMode frame.CropMode
}

// CaptureLoop reads frames on its own goroutine until stopped or the source
// fails. The source is released exactly once, before the loop reports
// Stopped.
type CaptureLoop struct {
	src     FrameSource
	det     Detector
	queue   *Queue
	opts    CaptureOptions
	metrics *Metrics
	log     *log.Entry

	mu    sync.Mutex
	state CaptureState
	err   error

	stop        chan struct{}
	stopOnce    sync.Once
	releaseOnce sync.Once
	stopped     *util.Event
	seq         uint64
}

func NewCaptureLoop(src FrameSource, det Detector, q *Queue, opts CaptureOptions, m *Metrics, entry *log.Entry) *CaptureLoop {
	if opts.Convert == nil {
		opts.Convert = frame.ToRGB
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &CaptureLoop{
		src:     src,
		det:     det,
		queue:   q,
		opts:    opts,
		metrics: m,
		log:     entry.WithField("component", "capture"),
		stop:    make(chan struct{}),
		stopped: util.NewEvent(),
	}
}

func (c *CaptureLoop) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Created {
		return ErrAlreadyStarted
	}
	c.state = Running
	go c.run()
	c.log.Info("Capture loop started")
	return nil
}

// Stop asks the loop to exit after the current iteration. A frame read in
// flight is not interrupted. Stopping a loop that never started releases the
// source immediately.
func (c *CaptureLoop) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	switch c.state {
	case Created:
		c.state = StopRequested
		c.mu.Unlock()
		c.finish(nil)
		return
	case Running:
		c.state = StopRequested
		c.log.Info("Capture loop stop requested")
	}
	c.mu.Unlock()
}

// Wait blocks until the loop is Stopped and returns its CaptureError, if any.
func (c *CaptureLoop) Wait() error {
	c.stopped.Wait()
	return c.Err()
}

// Done is closed once the loop is Stopped.
func (c *CaptureLoop) Done() <-chan struct{} {
	return c.stopped.Done()
}

func (c *CaptureLoop) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *CaptureLoop) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Release closes the frame source. Only the first call has any effect.
func (c *CaptureLoop) Release() {
	c.releaseOnce.Do(func() {
		if err := c.src.Close(); err != nil {
			c.log.Warnf("Error releasing frame source: %v", err)
			return
		}
		c.log.Info("Frame source released")
	})
}

func (c *CaptureLoop) stopRequested() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *CaptureLoop) run() {
	var err error
	for !c.stopRequested() {
		if err = c.iterate(); err != nil {
			break
		}
	}
	c.finish(err)
}

func (c *CaptureLoop) iterate() error {
	f, err := c.src.Read()
	if err != nil {
		c.metrics.CaptureErrors.Inc()
		return &CaptureError{Seq: c.seq, Err: err}
	}
	c.metrics.FramesCaptured.Inc()
	start := time.Now()

	c.seq++
	job := c.render(c.opts.Convert(f))
	job.Seq = c.seq
	c.metrics.CaptureLatency.Observe(time.Since(start).Seconds())

	if !c.queue.Offer(job) {
		c.metrics.FramesDropped.Inc()
		c.log.Debugf("Queue full, dropped frame %d", job.Seq)
	}
	c.metrics.QueueDepth.Set(float64(c.queue.Len()))
	return nil
}

// render runs detection on a display-ready frame. Detector failures fall back
// to showing the whole frame.
func (c *CaptureLoop) render(f frame.Frame) RenderJob {
	job := RenderJob{Webcam: f, Face: f}
	if c.det == nil {
		return job
	}
	boxes, err := c.det.Detect(f)
	if err != nil {
		c.metrics.DetectErrors.Inc()
		c.log.Warnf("Face detection failed: %v", err)
		return job
	}
	if len(boxes) == 0 {
		return job
	}
	c.metrics.FacesDetected.Inc()
	job.Box = boxes[0]
	job.Detected = true
	job.Face = frame.Crop(f, job.Box, c.opts.CropMode)
	return job
}

func (c *CaptureLoop) finish(err error) {
	c.Release()

	c.mu.Lock()
	c.err = err
	c.state = Stopped
	c.mu.Unlock()

	if err != nil {
		c.log.Errorf("Capture loop stopped: %v", err)
	} else {
		c.log.Infof("Capture loop stopped after %d frames", c.seq)
	}
	c.stopped.Notify()
}
