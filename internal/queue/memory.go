package queue

import (
	"context"
	"sync"
)

// DefaultCapacity bounds the in-memory queue when no capacity is configured.
const DefaultCapacity = 100

// MemoryQueue is a buffered in-process queue for single-binary deployments.
type MemoryQueue struct {
	messages  chan Message
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryQueue creates a queue holding at most capacity undelivered
// messages. Non-positive capacities fall back to DefaultCapacity.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryQueue{
		messages: make(chan Message, capacity),
		stop:     make(chan struct{}),
	}
}

// Publish enqueues a message without blocking.
func (q *MemoryQueue) Publish(_ context.Context, msg Message) error {
	select {
	case <-q.stop:
		return ErrClosed
	default:
	}

	select {
	case q.messages <- msg:
		return nil
	case <-q.stop:
		return ErrClosed
	default:
		return ErrFull
	}
}

// Consume returns the delivery channel. The channel is left open on Close so
// a racing Publish can never panic; consumers stop via their context.
func (q *MemoryQueue) Consume(_ context.Context) (<-chan Message, error) {
	return q.messages, nil
}

// Close shuts the queue down. Pending messages are dropped.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.stop)
	})
	return nil
}
