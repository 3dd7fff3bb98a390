package client

import (
	"context"
	"sync"

	"github.com/aldrinbus/bus/wire/value"
)

// itemQueue is the unbounded client-local FIFO a claimed channel receiver
// buffers incoming items in; backpressure lives at the broker's credit
// accounting, not here. This is the one place a small mutex is
// appropriate, since it hands items from the run-loop goroutine to
// whatever goroutine the handle owner reads from, a genuine
// producer/consumer boundary rather than shared registry state.
type itemQueue struct {
	mu     sync.Mutex
	items  []value.Value
	notify chan struct{}
	closed bool
}

func newItemQueue() *itemQueue {
	return &itemQueue{notify: make(chan struct{}, 1)}
}

func (q *itemQueue) push(v value.Value) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *itemQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop blocks until an item is available, the queue is closed and drained,
// or ctx is cancelled.
func (q *itemQueue) pop(ctx context.Context) (value.Value, bool, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, true, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false, nil
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}
