package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps jobs in process memory behind a mutex. Reads return
// copies, so callers never observe a partially applied update. It backs the
// single-process deployment and the tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

// Create registers a new job.
func (s *MemoryStore) Create(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, job.ID)
	}

	stored := *job
	now := time.Now().UTC()
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.jobs[stored.ID] = stored
	return nil
}

// Get returns a copy of the job with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	copied := job
	return &copied, nil
}

// Complete moves a pending job to ready.
func (s *MemoryStore) Complete(_ context.Context, id, artifact string) error {
	return s.finish(id, func(job *Job) {
		job.Status = StatusReady
		job.Artifact = artifact
		job.Error = ""
	})
}

// Fail moves a pending job to failed.
func (s *MemoryStore) Fail(_ context.Context, id, cause string) error {
	return s.finish(id, func(job *Job) {
		job.Status = StatusFailed
		job.Error = prefixCause(cause)
	})
}

// finish applies the single allowed terminal transition. The updated record
// is swapped in whole under the lock, so concurrent readers see either the
// pending job or the finished one, never a mix.
func (s *MemoryStore) finish(id string, apply func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
	}

	apply(&job)
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

// MarkWebhookSent records webhook delivery for a job.
func (s *MemoryStore) MarkWebhookSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	job.WebhookSent = true
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

// List returns jobs ordered newest first.
func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID > jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if opts.Limit > 0 && len(jobs) > opts.Limit {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

// Evict removes terminal jobs created before olderThan.
func (s *MemoryStore) Evict(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(olderThan) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted, nil
}

// Close releases nothing; it exists to satisfy the Store interface.
func (s *MemoryStore) Close() error {
	return nil
}
