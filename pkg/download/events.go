package download

import (
	"context"
	"sync"
)

// eventQueue is an unbounded FIFO so workers never wait for a slow consumer.
type eventQueue struct {
	mu     sync.Mutex
	buf    []Event
	closed bool
	// ready holds at most one wake-up token
	ready chan struct{}
	// drained is closed together with closed
	drained chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		ready:   make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	q.buf = append(q.buf, ev)
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.drained)
	}
}

// tryPop returns the oldest event, if any.
func (q *eventQueue) tryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return Event{}, false
	}
	ev := q.buf[0]
	q.buf[0] = Event{}
	q.buf = q.buf[1:]
	if len(q.buf) > 0 {
		// let another blocked consumer through
		q.wake()
	}
	return ev, true
}

// pop blocks until an event is available, the queue is closed and empty,
// or ctx ends.
func (q *eventQueue) pop(ctx context.Context) (Event, bool) {
	for {
		if ev, ok := q.tryPop(); ok {
			return ev, true
		}
		q.mu.Lock()
		finished := q.closed && len(q.buf) == 0
		q.mu.Unlock()
		if finished {
			return Event{}, false
		}

		select {
		case <-q.ready:
		case <-q.drained:
		case <-ctx.Done():
			return Event{}, false
		}
	}
}
