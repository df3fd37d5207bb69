package util

import (
	"sync"
	"testing"
	"time"
)

func TestEventNotifyWakesWaiters(t *testing.T) {
	e := NewEvent()
	if e.HasBeenNotified() {
		t.Fatal("new event reports notified")
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			e.Wait()
			wg.Done()
		}()
	}

	e.Notify()
	e.Notify() // second call must not panic

	done := make(chan bool)
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiters not woken")
	}
	if !e.HasBeenNotified() {
		t.Error("event not reported as notified")
	}
}

func TestEventDoneChannel(t *testing.T) {
	e := NewEvent()
	select {
	case <-e.Done():
		t.Fatal("done closed before notify")
	default:
	}
	e.Notify()
	select {
	case <-e.Done():
	default:
		t.Fatal("done not closed after notify")
	}
}
