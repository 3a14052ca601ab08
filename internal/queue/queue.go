// Package queue provides the unbounded FIFO between capture and transcription.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Put after Close, and by Get once a closed queue is drained.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO. Put never blocks; Get blocks until an item arrives,
// the queue is closed and empty, or ctx is done.
type Queue[T any] struct {
	mu         sync.Mutex
	items      []T
	unfinished int
	closed     bool
	notify     chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Put appends item to the tail.
func (q *Queue[T]) Put(item T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.unfinished++
	q.mu.Unlock()

	q.signal()
	return nil
}

// Get removes and returns the head item, waiting for one if necessary.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				// Pass the wakeup on in case several items arrived under one signal.
				q.signal()
			}
			return item, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Done acknowledges one item previously returned by Get.
func (q *Queue[T]) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unfinished > 0 {
		q.unfinished--
	}
}

// Unfinished reports items enqueued but not yet acknowledged.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// Len reports items waiting to be dequeued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting new items and wakes a blocked Get. Items already queued
// can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
