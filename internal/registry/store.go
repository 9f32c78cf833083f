// Package registry stores render job records and guards their lifecycle.
//
// Every implementation enforces the same rules: ids are unique, a job is
// readable the moment it is created, exactly one terminal transition is
// applied per job, and readers always observe a fully consistent record.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/keithhb33/MathVis/pkg/types"
)

// Sentinel errors shared by every store implementation. Wrap them with
// context and check them with errors.Is.
var (
	// ErrNotFound indicates the job id is not in the registry.
	ErrNotFound = errors.New("job not found")
	// ErrDuplicateID indicates a create collided with an existing job id.
	ErrDuplicateID = errors.New("job id already exists")
	// ErrTerminal indicates a terminal transition was attempted on a job
	// that already reached ready or failed.
	ErrTerminal = errors.New("job already in a terminal state")
)

// ListOptions narrow a job listing.
type ListOptions struct {
	// Status filters by lifecycle state; empty matches every state.
	Status Status
	// Limit caps the number of returned jobs; non-positive means no cap.
	Limit int
}

// Store persists render job records.
type Store interface {
	// Create registers a new job. The status defaults to pending and the
	// timestamps are filled in when absent.
	Create(ctx context.Context, job *Job) error

	// Get returns the job with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// Complete moves a pending job to ready and records its artifact.
	// Returns ErrTerminal when the job already finished.
	Complete(ctx context.Context, id, artifact string) error

	// Fail moves a pending job to failed and records the cause, prefixed.
	// Returns ErrTerminal when the job already finished.
	Fail(ctx context.Context, id, cause string) error

	// MarkWebhookSent records that the completion webhook was delivered.
	MarkWebhookSent(ctx context.Context, id string) error

	// List returns jobs ordered newest first.
	List(ctx context.Context, opts ListOptions) ([]Job, error)

	// Evict removes terminal jobs created before olderThan and returns how
	// many were removed. Pending jobs are never evicted.
	Evict(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases the underlying resources.
	Close() error
}

// prefixCause normalizes a failure cause to carry the internal error prefix
// exactly once.
func prefixCause(cause string) string {
	return types.PrefixError(cause)
}
