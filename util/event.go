package util

import (
	"sync"
)

// Event is a one-shot notification. Once notified it stays notified.
type Event struct {
	once sync.Once
	done chan struct{}
}

func NewEvent() *Event {
	return &Event{
		done: make(chan struct{}),
	}
}

// Notify wakes every current and future waiter. Extra calls are no-ops.
func (e *Event) Notify() {
	e.once.Do(func() {
		close(e.done)
	})
}

func (e *Event) Wait() {
	<-e.done
}

// Done returns a channel closed on notification, for use in select.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

func (e *Event) HasBeenNotified() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
