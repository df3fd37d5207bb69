package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

type DispatchState int32

const (
	Polling DispatchState = iota
	// Idle means the loop ran out of empty attempts and no longer reschedules
	// itself. Only Resume brings it back.
	Idle
	Closed
)

func (s DispatchState) String() string {
	switch s {
	case Polling:
		return "polling"
	case Idle:
		return "idle"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("DispatchState(%d)", int32(s))
}

type DispatchOptions struct {
	BusyDelay        time.Duration
	IdleDelay        time.Duration
	MaxEmptyAttempts int
}

func DefaultDispatchOptions() DispatchOptions {
	return DispatchOptions{
		BusyDelay:        70 * time.Millisecond,
		IdleDelay:        100 * time.Millisecond,
		MaxEmptyAttempts: 51,
	}
}

// DispatchLoop drains the queue into the panes. Every method except Resume,
// State and EmptyAttempts must be called on the UI thread.
type DispatchLoop struct {
	queue   *Queue
	sched   Scheduler
	webcam  Slot
	face    Slot
	opts    DispatchOptions
	metrics *Metrics
	log     *log.Entry

	state         int32
	emptyAttempts int32
}

func NewDispatchLoop(q *Queue, sched Scheduler, webcam, face Slot, opts DispatchOptions, m *Metrics, entry *log.Entry) *DispatchLoop {
	if m == nil {
		m = NewMetrics(nil)
	}
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &DispatchLoop{
		queue:   q,
		sched:   sched,
		webcam:  webcam,
		face:    face,
		opts:    opts,
		metrics: m,
		log:     entry.WithField("component", "dispatch"),
	}
}

// Start schedules the first tick.
func (d *DispatchLoop) Start() {
	d.sched.AfterFunc(0, d.tick)
}

// Stop closes the loop. Any tick already scheduled becomes a no-op.
func (d *DispatchLoop) Stop() {
	atomic.StoreInt32(&d.state, int32(Closed))
}

// Resume restarts an Idle loop. It may be called from any goroutine; the
// restart itself happens on the UI thread.
func (d *DispatchLoop) Resume() {
	d.sched.AfterFunc(0, func() {
		if !atomic.CompareAndSwapInt32(&d.state, int32(Idle), int32(Polling)) {
			return
		}
		atomic.StoreInt32(&d.emptyAttempts, 0)
		d.metrics.DispatchIdle.Set(0)
		d.log.Info("Dispatch loop resumed")
		d.tick()
	})
}

func (d *DispatchLoop) State() DispatchState {
	return DispatchState(atomic.LoadInt32(&d.state))
}

func (d *DispatchLoop) EmptyAttempts() int {
	return int(atomic.LoadInt32(&d.emptyAttempts))
}

func (d *DispatchLoop) tick() {
	if d.State() != Polling {
		return
	}

	job, ok := d.queue.Poll()
	if ok {
		d.apply(job)
		atomic.StoreInt32(&d.emptyAttempts, 0)
		d.sched.AfterFunc(d.opts.BusyDelay, d.tick)
		return
	}

	d.metrics.EmptyPolls.Inc()
	attempts := atomic.AddInt32(&d.emptyAttempts, 1)
	if int(attempts) <= d.opts.MaxEmptyAttempts {
		d.sched.AfterFunc(d.opts.IdleDelay, d.tick)
		return
	}

	atomic.StoreInt32(&d.state, int32(Idle))
	d.metrics.DispatchIdle.Set(1)
	d.log.Warnf("No frames after %d polls, dispatch loop going idle", attempts)
}

func (d *DispatchLoop) apply(job RenderJob) {
	if d.webcam != nil {
		d.webcam.Update(job.Webcam)
	}
	if d.face != nil {
		d.face.Update(job.Face)
	}
	d.metrics.JobsDispatched.Inc()
	d.metrics.QueueDepth.Set(float64(d.queue.Len()))
}
