package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// jobKeyPrefix namespaces the per-job JSON records.
	jobKeyPrefix = "mathvis:job:"
	// jobsIndexKey is a sorted set of job ids scored by creation time.
	jobsIndexKey = "mathvis:jobs"

	// maxTxRetries bounds optimistic-lock retries on a contended job key.
	maxTxRetries = 3
)

// RedisStore persists jobs in redis: one JSON record per job plus a sorted
// set index ordered by creation time. It backs deployments where the server
// and the render workers run as separate processes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an open redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

// Create registers a new job.
func (s *RedisStore) Create(ctx context.Context, job *Job) error {
	stored := *job
	now := time.Now().UTC()
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}

	created, err := s.client.SetNX(ctx, jobKey(stored.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing job: %w", err)
	}
	if !created {
		return fmt.Errorf("%w: %s", ErrDuplicateID, stored.ID)
	}

	index := redis.Z{Score: float64(stored.CreatedAt.UnixMilli()), Member: stored.ID}
	if err := s.client.ZAdd(ctx, jobsIndexKey, index).Err(); err != nil {
		return fmt.Errorf("indexing job: %w", err)
	}
	return nil
}

// Get returns the job with the given id.
func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job: %w", err)
	}
	return &job, nil
}

// Complete moves a pending job to ready.
func (s *RedisStore) Complete(ctx context.Context, id, artifact string) error {
	return s.update(ctx, id, func(job *Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
		}
		job.Status = StatusReady
		job.Artifact = artifact
		job.Error = ""
		return nil
	})
}

// Fail moves a pending job to failed.
func (s *RedisStore) Fail(ctx context.Context, id, cause string) error {
	return s.update(ctx, id, func(job *Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
		}
		job.Status = StatusFailed
		job.Error = prefixCause(cause)
		return nil
	})
}

// MarkWebhookSent records webhook delivery for a job.
func (s *RedisStore) MarkWebhookSent(ctx context.Context, id string) error {
	return s.update(ctx, id, func(job *Job) error {
		job.WebhookSent = true
		return nil
	})
}

// update rewrites the job record under an optimistic WATCH transaction, so
// the read-check-write cycle is atomic against concurrent writers.
func (s *RedisStore) update(ctx context.Context, id string, apply func(*Job) error) error {
	key := jobKey(id)
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("loading job: %w", err)
		}

		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("decoding job: %w", err)
		}
		if err := apply(&job); err != nil {
			return err
		}
		job.UpdatedAt = time.Now().UTC()

		next, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("encoding job: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("updating job %s: %w", id, err)
}

// List returns jobs ordered newest first.
func (s *RedisStore) List(ctx context.Context, opts ListOptions) ([]Job, error) {
	ids, err := s.client.ZRevRange(ctx, jobsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	if len(ids) == 0 {
		return []Job{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}

	jobs := make([]Job, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Evicted between the index read and the bulk get.
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("decoding job: %w", err)
		}
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		jobs = append(jobs, job)
		if opts.Limit > 0 && len(jobs) == opts.Limit {
			break
		}
	}
	return jobs, nil
}

// Evict removes terminal jobs created before olderThan.
func (s *RedisStore) Evict(ctx context.Context, olderThan time.Time) (int, error) {
	cutoff := &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", olderThan.UnixMilli()),
	}
	ids, err := s.client.ZRangeByScore(ctx, jobsIndexKey, cutoff).Result()
	if err != nil {
		return 0, fmt.Errorf("scanning expired jobs: %w", err)
	}

	evicted := 0
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Record gone but index entry left behind; clean it up.
			if err := s.client.ZRem(ctx, jobsIndexKey, id).Err(); err != nil {
				return evicted, fmt.Errorf("pruning job index: %w", err)
			}
			continue
		}
		if err != nil {
			return evicted, err
		}
		if !job.Status.Terminal() {
			continue
		}

		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, jobKey(id))
			pipe.ZRem(ctx, jobsIndexKey, id)
			return nil
		})
		if err != nil {
			return evicted, fmt.Errorf("evicting job %s: %w", id, err)
		}
		evicted++
	}
	return evicted, nil
}

// Close closes the underlying redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
