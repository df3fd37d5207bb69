package pipeline

import (
	"sync"
	"time"
)

// EventLoop is a single goroutine that runs queued functions one at a time.
// Headless mode uses it in place of the GUI thread.
type EventLoop struct {
	funcs    chan func()
	quit     chan struct{}
	quitOnce sync.Once
}

func NewEventLoop() *EventLoop {
	return &EventLoop{
		funcs: make(chan func(), 64),
		quit:  make(chan struct{}),
	}
}

// Do queues f to run on the loop. It is dropped if the loop has stopped.
func (e *EventLoop) Do(f func()) {
	if e.stopped() {
		return
	}
	select {
	case e.funcs <- f:
	case <-e.quit:
	}
}

// AfterFunc implements Scheduler.
func (e *EventLoop) AfterFunc(d time.Duration, f func()) {
	if d <= 0 {
		go e.Do(f)
		return
	}
	time.AfterFunc(d, func() { e.Do(f) })
}

// Run executes queued functions until Stop is called.
func (e *EventLoop) Run() {
	for {
		select {
		case <-e.quit:
			return
		case f := <-e.funcs:
			if e.stopped() {
				return
			}
			f()
		}
	}
}

func (e *EventLoop) stopped() bool {
	select {
	case <-e.quit:
		return true
	default:
		return false
	}
}

func (e *EventLoop) Stop() {
	e.quitOnce.Do(func() { close(e.quit) })
}
