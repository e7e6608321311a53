package events

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Wait once a closed queue has been drained.
var ErrQueueClosed = errors.New("event queue closed")

// Queue is a multi-producer, single-consumer event queue owned by one batch.
//
// Publish never blocks on the consumer: events are appended under a mutex and
// a one-slot notify channel wakes a waiting reader. The queue holds at most
// the events of its batch and is discarded with it.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	notify chan struct{}

	published uint64
}

// NewQueue creates an empty queue. sizeHint preallocates storage.
func NewQueue(sizeHint int) *Queue {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Queue{
		items:  make([]Event, 0, sizeHint),
		notify: make(chan struct{}, 1),
	}
}

// Publish enqueues e. Events published after Close are dropped.
func (q *Queue) Publish(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.published++
	q.mu.Unlock()

	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryReceive pops the oldest event without blocking.
func (q *Queue) TryReceive() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return e, true
}

// Poll drains every pending event without blocking. It returns nil when
// nothing is pending.
func (q *Queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]Event, 0, len(out))
	return out
}

// Wait blocks until an event is pending, the queue is closed and empty, or
// ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		pending, closed := len(q.items) > 0, q.closed
		q.mu.Unlock()

		switch {
		case pending:
			return nil
		case closed:
			return ErrQueueClosed
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting events. Pending events stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Published returns the number of events accepted so far.
func (q *Queue) Published() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.published
}
