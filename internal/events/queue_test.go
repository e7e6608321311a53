package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEmptyPoll(t *testing.T) {
	q := NewQueue(0)
	assert.Nil(t, q.Poll())

	_, ok := q.TryReceive()
	assert.False(t, ok)
}

func TestQueueOrderWithinProducer(t *testing.T) {
	q := NewQueue(4)
	for i := 0; i < 3; i++ {
		q.Publish(NewLog(KeyFrameSaved, "a.fits", Args{"index": i}))
	}

	e, ok := q.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 0, e.(LogEvent).Args["index"])

	rest := q.Poll()
	require.Len(t, rest, 2)
	assert.Equal(t, 1, rest[0].(LogEvent).Args["index"])
	assert.Equal(t, 2, rest[1].(LogEvent).Args["index"])
	assert.Nil(t, q.Poll())
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 500
	q := NewQueue(0)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Publish(NewLog(KeyFrameSaved, fmt.Sprintf("f%d", p), Args{"index": i}))
			}
		}(p)
	}

	seen := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		q.Close()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		if err := q.Wait(ctx); err != nil {
			require.ErrorIs(t, err, ErrQueueClosed)
			break
		}
		seen += len(q.Poll())
	}
	<-done

	assert.Equal(t, producers*perProducer, seen)
	assert.Equal(t, uint64(producers*perProducer), q.Published())
}

func TestQueueWaitHonoursContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.DeadlineExceeded)
}

func TestQueueCloseKeepsPending(t *testing.T) {
	q := NewQueue(0)
	q.Publish(BatchSummary{Total: 1, Succeeded: 1})
	q.Close()
	q.Publish(BatchSummary{Total: 2})

	require.NoError(t, q.Wait(context.Background()))
	events := q.Poll()
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].(BatchSummary).Total)
	assert.ErrorIs(t, q.Wait(context.Background()), ErrQueueClosed)
}
