package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keithhb33/MathVis/internal/logger"
)

// DefaultStream is the stream render messages travel on when no name is
// configured.
const DefaultStream = "mathvis:render-jobs"

// readBlock bounds a single XREAD so shutdown is never stuck on a blocked
// read.
const readBlock = 5 * time.Second

// RedisQueue transports render messages over a redis stream, for deployments
// where the server and the workers run as separate processes.
//
// Consumers start from the beginning of the stream, so work queued while no
// worker was running is picked up on the next start. The stream is capped,
// and replayed jobs that already finished are skipped by the worker.
type RedisQueue struct {
	client    *redis.Client
	stream    string
	maxLen    int64
	stop      chan struct{}
	closeOnce sync.Once
}

// NewRedisQueue creates a stream-backed queue on an open redis client. The
// client is owned by the caller and is not closed with the queue.
func NewRedisQueue(client *redis.Client, stream string, maxLen int64) *RedisQueue {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen <= 0 {
		maxLen = DefaultCapacity
	}
	return &RedisQueue{
		client: client,
		stream: stream,
		maxLen: maxLen,
		stop:   make(chan struct{}),
	}
}

// Publish appends a message to the stream.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	select {
	case <-q.stop:
		return ErrClosed
	default:
	}

	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]interface{}{"job_id": msg.JobID},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing render job: %w", err)
	}
	return nil
}

// Consume starts a reader goroutine and returns its delivery channel.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go q.consumeLoop(ctx, out)
	return out, nil
}

func (q *RedisQueue) consumeLoop(ctx context.Context, out chan<- Message) {
	defer close(out)

	lastID := "0"
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stop:
			return
		default:
		}

		streams, err := q.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{q.stream, lastID},
			Count:   16,
			Block:   readBlock,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Render queue read failed: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			case <-q.stop:
				return
			}
			continue
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				lastID = entry.ID
				jobID, _ := entry.Values["job_id"].(string)
				if jobID == "" {
					continue
				}
				select {
				case out <- Message{JobID: jobID}:
				case <-ctx.Done():
					return
				case <-q.stop:
					return
				}
			}
		}
	}
}

// Close stops the consumer loops. The redis client stays open.
func (q *RedisQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.stop)
	})
	return nil
}
