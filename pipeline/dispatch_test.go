package pipeline

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestDispatch(q *Queue) (*DispatchLoop, *manualScheduler, *recordSlot, *recordSlot, *Metrics) {
	sched := &manualScheduler{}
	webcam, face := &recordSlot{}, &recordSlot{}
	m := NewMetrics(nil)
	d := NewDispatchLoop(q, sched, webcam, face, DefaultDispatchOptions(), m, nil)
	return d, sched, webcam, face, m
}

func TestDispatchAppliesJobsInOrder(t *testing.T) {
	q := NewQueue(5)
	for i := 1; i <= 3; i++ {
		q.Offer(RenderJob{Seq: uint64(i), Webcam: testFrame(i, 1), Face: testFrame(1, i)})
	}
	d, sched, webcam, face, m := newTestDispatch(q)
	d.Start()

	for i := 0; i < 4; i++ {
		sched.step()
	}

	if webcam.count() != 3 || face.count() != 3 {
		t.Fatalf("slots updated %d/%d times, want 3/3", webcam.count(), face.count())
	}
	for i := 0; i < 3; i++ {
		if webcam.frames[i].Width != i+1 || face.frames[i].Height != i+1 {
			t.Errorf("update %d out of order", i)
		}
	}

	want := []time.Duration{0, 70 * time.Millisecond, 70 * time.Millisecond, 70 * time.Millisecond, 100 * time.Millisecond}
	if len(sched.delays) != len(want) {
		t.Fatalf("delays %v, want %v", sched.delays, want)
	}
	for i := range want {
		if sched.delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, sched.delays[i], want[i])
		}
	}
	if v := testutil.ToFloat64(m.JobsDispatched); v != 3 {
		t.Errorf("jobs_dispatched_total = %v", v)
	}
	if d.EmptyAttempts() != 1 {
		t.Errorf("EmptyAttempts() = %d, want 1", d.EmptyAttempts())
	}
}

func TestDispatchGoesIdleAfterMaxEmptyAttempts(t *testing.T) {
	q := NewQueue(5)
	d, sched, webcam, _, m := newTestDispatch(q)
	d.Start()

	ticks := sched.drain(1000)
	if ticks != 52 {
		t.Errorf("ran %d ticks, want 52", ticks)
	}
	// One initial schedule plus 51 reschedules.
	if len(sched.delays) != 52 {
		t.Errorf("scheduled %d times, want 52", len(sched.delays))
	}
	if d.State() != Idle {
		t.Fatalf("state %v, want idle", d.State())
	}
	if v := testutil.ToFloat64(m.EmptyPolls); v != 52 {
		t.Errorf("empty_polls_total = %v, want 52", v)
	}
	if v := testutil.ToFloat64(m.DispatchIdle); v != 1 {
		t.Errorf("dispatch_idle = %v", v)
	}

	// Later work is never consumed.
	q.Offer(RenderJob{Webcam: testFrame(1, 1)})
	if sched.pendingCount() != 0 {
		t.Error("idle loop rescheduled itself")
	}
	if webcam.count() != 0 || q.Len() != 1 {
		t.Errorf("idle loop consumed a job")
	}
}

func TestDispatchJobResetsEmptyAttempts(t *testing.T) {
	q := NewQueue(5)
	d, sched, webcam, _, _ := newTestDispatch(q)
	d.Start()

	for i := 0; i < 40; i++ {
		sched.step()
	}
	if d.EmptyAttempts() != 40 {
		t.Fatalf("EmptyAttempts() = %d, want 40", d.EmptyAttempts())
	}
	q.Offer(RenderJob{})
	sched.step()
	if d.EmptyAttempts() != 0 {
		t.Errorf("EmptyAttempts() = %d after a job, want 0", d.EmptyAttempts())
	}
	if webcam.count() != 1 {
		t.Errorf("job not applied")
	}

	// A full new budget of empty polls is available again.
	if n := sched.drain(1000); n != 52 {
		t.Errorf("ran %d ticks before idling, want 52", n)
	}
}

func TestDispatchResume(t *testing.T) {
	q := NewQueue(5)
	d, sched, webcam, _, m := newTestDispatch(q)
	d.Start()
	sched.drain(1000)
	if d.State() != Idle {
		t.Fatal("loop did not go idle")
	}

	q.Offer(RenderJob{})
	d.Resume()
	sched.step()
	if d.State() != Polling {
		t.Errorf("state %v after resume", d.State())
	}
	if webcam.count() != 1 {
		t.Error("resumed loop did not consume the queued job")
	}
	if v := testutil.ToFloat64(m.DispatchIdle); v != 0 {
		t.Errorf("dispatch_idle = %v after resume", v)
	}

	// Resume on a polling loop leaves its counters alone.
	sched.step()
	d.Resume()
	sched.step()
	sched.step()
	if d.EmptyAttempts() != 2 {
		t.Errorf("EmptyAttempts() = %d, want 2", d.EmptyAttempts())
	}
	if sched.pendingCount() != 1 {
		t.Errorf("%d callbacks pending, want 1", sched.pendingCount())
	}
}

func TestDispatchStop(t *testing.T) {
	q := NewQueue(5)
	q.Offer(RenderJob{})
	d, sched, webcam, _, _ := newTestDispatch(q)
	d.Start()
	d.Stop()

	if n := sched.drain(10); n != 1 {
		t.Errorf("ran %d callbacks, want 1", n)
	}
	if webcam.count() != 0 {
		t.Error("stopped loop applied a job")
	}
	if d.State() != Closed {
		t.Errorf("state %v, want closed", d.State())
	}

	d.Resume()
	sched.drain(10)
	if d.State() != Closed {
		t.Error("Resume reopened a closed loop")
	}
}

func TestSlotsFanOut(t *testing.T) {
	a, b := &recordSlot{}, &recordSlot{}
	s := Slots(a, nil, b)
	s.Update(testFrame(1, 1))
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("fan-out counts %d/%d", a.count(), b.count())
	}
	if Slots(a) != Slot(a) {
		t.Error("single slot should be returned unwrapped")
	}
}
