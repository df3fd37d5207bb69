package pipeline

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Queue is the bounded FIFO between the capture goroutine and the UI thread.
// Neither Offer nor Poll ever blocks.
type Queue struct {
	c       chan RenderJob
	dropped uint64
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		log.Panicf("queue capacity must be at least 1, got %d", capacity)
	}
	return &Queue{
		c: make(chan RenderJob, capacity),
	}
}

// Offer enqueues job, or drops it and returns false if the queue is full.
func (q *Queue) Offer(job RenderJob) bool {
	select {
	case q.c <- job:
		return true
	default:
		atomic.AddUint64(&q.dropped, 1)
		return false
	}
}

// Poll dequeues the oldest job, if any.
func (q *Queue) Poll() (RenderJob, bool) {
	select {
	case job := <-q.c:
		return job, true
	default:
		return RenderJob{}, false
	}
}

func (q *Queue) Len() int {
	return len(q.c)
}

func (q *Queue) Cap() int {
	return cap(q.c)
}

// Dropped is the number of offers rejected because the queue was full.
func (q *Queue) Dropped() uint64 {
	return atomic.LoadUint64(&q.dropped)
}
