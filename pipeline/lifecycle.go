package pipeline

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Components are the external collaborators a Lifecycle coordinates.
type Components struct {
	Source    FrameSource
	Detector  Detector
	Scheduler Scheduler
	Webcam    Slot
	Face      Slot
	// Teardown destroys the UI. It runs last during Close, on the UI thread.
	Teardown func()
}

type Options struct {
	QueueCapacity int
	Capture       CaptureOptions
	Dispatch      DispatchOptions
	Metrics       *Metrics
}

// Lifecycle owns the queue and both loops for one camera session.
type Lifecycle struct {
	Session string

	queue    *Queue
	capture  *CaptureLoop
	dispatch *DispatchLoop
	teardown func()
	log      *log.Entry

	errc      chan error
	closeOnce sync.Once
	closeErr  error
}

func New(c Components, opts Options) *Lifecycle {
	session := uuid.New().String()
	entry := log.WithField("session", session)

	q := NewQueue(opts.QueueCapacity)
	capture := NewCaptureLoop(c.Source, c.Detector, q, opts.Capture, opts.Metrics, entry)
	dispatch := NewDispatchLoop(q, c.Scheduler, c.Webcam, c.Face, opts.Dispatch, opts.Metrics, entry)

	return &Lifecycle{
		Session:  session,
		queue:    q,
		capture:  capture,
		dispatch: dispatch,
		teardown: c.Teardown,
		log:      entry,
		errc:     make(chan error, 1),
	}
}

// Start launches the capture goroutine and the first dispatch tick.
func (l *Lifecycle) Start() error {
	if err := l.capture.Start(); err != nil {
		return err
	}
	l.dispatch.Start()

	go func() {
		<-l.capture.Done()
		if err := l.capture.Err(); err != nil {
			l.log.Errorf("Webcam feed stopped: %v", err)
			l.errc <- err
		}
	}()
	return nil
}

// Errors delivers the capture failure, if one happens. The UI stays up.
func (l *Lifecycle) Errors() <-chan error {
	return l.errc
}

// Close stops dispatch, stops and joins the capture goroutine, releases the
// camera and tears down the UI. Only the first call does anything; later
// calls return the same result. Call it from the UI thread.
func (l *Lifecycle) Close() error {
	l.closeOnce.Do(func() {
		l.log.Info("Shutting down")
		l.dispatch.Stop()
		l.capture.Stop()
		l.closeErr = l.capture.Wait()
		l.capture.Release()
		if l.teardown != nil {
			l.teardown()
		}
		l.log.Info("Shutdown complete")
	})
	return l.closeErr
}

// ResumeDispatch restarts a dispatch loop that went idle.
func (l *Lifecycle) ResumeDispatch() {
	l.dispatch.Resume()
}

// Snapshot is a point-in-time view of the pipeline.
type Snapshot struct {
	Session       string
	Capture       string
	Dispatch      string
	QueueLen      int
	QueueCap      int
	Dropped       uint64
	EmptyAttempts int
	Error         string `json:",omitempty"`
}

func (l *Lifecycle) Snapshot() Snapshot {
	s := Snapshot{
		Session:       l.Session,
		Capture:       l.capture.State().String(),
		Dispatch:      l.dispatch.State().String(),
		QueueLen:      l.queue.Len(),
		QueueCap:      l.queue.Cap(),
		Dropped:       l.queue.Dropped(),
		EmptyAttempts: l.dispatch.EmptyAttempts(),
	}
	if err := l.capture.Err(); err != nil {
		s.Error = err.Error()
	}
	return s
}
