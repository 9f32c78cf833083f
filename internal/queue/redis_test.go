package queue

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisQueueForTest(t *testing.T) *RedisQueue {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping redis queue tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = client.Close()
	})

	stream := fmt.Sprintf("mathvis:test:%d", time.Now().UnixNano())
	q := NewRedisQueue(client, stream, 64)
	t.Cleanup(func() {
		_ = q.Close()
		_ = client.Del(context.Background(), stream).Err()
	})
	return q
}

func TestRedisQueueRoundTrip(t *testing.T) {
	q := redisQueueForTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, Message{JobID: "a"}))
	require.NoError(t, q.Publish(ctx, Message{JobID: "b"}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	received := make([]string, 0, 2)
	for len(received) < 2 {
		select {
		case msg := <-msgs:
			received = append(received, msg.JobID)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for messages, got %v", received)
		}
	}
	assert.Equal(t, []string{"a", "b"}, received)
}

func TestRedisQueueReplaysHistory(t *testing.T) {
	q := redisQueueForTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Published before any consumer exists.
	require.NoError(t, q.Publish(ctx, Message{JobID: "early"}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "early", msg.JobID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for replayed message")
	}
}
