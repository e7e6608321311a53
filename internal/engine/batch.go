package engine

import (
	"context"
	"sync"
	"time"

	"github.com/ivlev/fits2ser/internal/events"
)

// Batch is the caller's handle on a submitted batch.
type Batch struct {
	ID    string
	Total int

	queue   *events.Queue
	done    chan struct{}
	started time.Time

	mu        sync.Mutex
	succeeded int
	failed    int
	summary   events.BatchSummary
}

func newBatch(id string, total int) *Batch {
	return &Batch{
		ID:      id,
		Total:   total,
		queue:   events.NewQueue(total * 8),
		done:    make(chan struct{}),
		started: time.Now(),
	}
}

// Poll returns all pending events without blocking; nil means none yet.
func (b *Batch) Poll() []events.Event {
	return b.queue.Poll()
}

// TryReceive returns the oldest pending event without blocking.
func (b *Batch) TryReceive() (events.Event, bool) {
	return b.queue.TryReceive()
}

// WaitEvents blocks until an event is pending. It returns
// events.ErrQueueClosed once the batch is over and fully drained.
func (b *Batch) WaitEvents(ctx context.Context) error {
	return b.queue.Wait(ctx)
}

// Done is closed after the BatchSummary has been published.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch completes or ctx is done.
func (b *Batch) Wait(ctx context.Context) (events.BatchSummary, error) {
	select {
	case <-b.done:
		return b.Summary(), nil
	case <-ctx.Done():
		return events.BatchSummary{}, ctx.Err()
	}
}

// Summary returns the final counts. It is zero until Done is closed.
func (b *Batch) Summary() events.BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (b *Batch) log(key, file string, args events.Args) {
	b.queue.Publish(events.NewLog(key, file, args))
}

func (b *Batch) record(out events.JobOutcome) {
	b.mu.Lock()
	if out.Success {
		b.succeeded++
	} else {
		b.failed++
	}
	b.mu.Unlock()
	b.queue.Publish(out)
}

func (b *Batch) summarize() events.BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return events.BatchSummary{
		BatchID:   b.ID,
		Total:     b.Total,
		Succeeded: b.succeeded,
		Failed:    b.failed,
		Elapsed:   time.Since(b.started),
	}
}

func (b *Batch) finish(summary events.BatchSummary) {
	b.queue.Publish(summary)
	b.mu.Lock()
	b.summary = summary
	b.mu.Unlock()
	b.queue.Close()
	close(b.done)
}
