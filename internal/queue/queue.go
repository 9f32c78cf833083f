// Package queue hands render jobs from the submission path to the workers.
//
// Only the job id travels through the queue; workers load the full record
// from the registry. Delivery is at-least-once: a message may be seen again
// after a restart, and consumers are expected to skip jobs that already
// reached a terminal state.
package queue

import (
	"context"
	"errors"
)

// Sentinel errors returned by Publish.
var (
	// ErrFull indicates the queue cannot accept more work right now.
	ErrFull = errors.New("render queue is full")
	// ErrClosed indicates the queue was shut down.
	ErrClosed = errors.New("render queue is closed")
)

// Message is a unit of render work.
type Message struct {
	JobID string `json:"job_id"`
}

// Queue transports render messages from producers to workers.
type Queue interface {
	// Publish enqueues a message without blocking. It returns ErrFull when
	// the queue is at capacity and ErrClosed after Close.
	Publish(ctx context.Context, msg Message) error

	// Consume returns the channel workers receive messages on. Consumers
	// stop receiving when the context is cancelled or the queue is closed.
	Consume(ctx context.Context) (<-chan Message, error)

	// Close shuts the queue down.
	Close() error
}
