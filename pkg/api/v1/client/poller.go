package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keithhb33/MathVis/pkg/types"
)

// DefaultPollInterval is the default delay between status polls
const DefaultPollInterval = 2 * time.Second

// ErrPollLimit is returned by Wait when the poll budget is exhausted before
// the job reached a terminal state
var ErrPollLimit = errors.New("poll limit reached")

// RenderFailedError is returned by Wait when the watched job failed. Message
// carries the stored failure cause with its internal prefix intact.
type RenderFailedError struct {
	JobID   string
	Message string
}

// Error implements the error interface
func (e *RenderFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.DisplayMessage())
}

// DisplayMessage returns the failure cause with the internal prefix stripped
func (e *RenderFailedError) DisplayMessage() string {
	return types.DisplayError(e.Message)
}

// PollerOptions contains configuration options for a Poller
type PollerOptions struct {
	// Interval is the delay between status polls
	Interval time.Duration

	// MaxPolls caps the number of status requests. Zero means uncapped;
	// the server-side render timeout already bounds every job.
	MaxPolls int

	// OnReady is invoked exactly once when the job becomes ready
	OnReady func(jobID string)
}

// DefaultPollerOptions returns the default poller options
func DefaultPollerOptions() *PollerOptions {
	return &PollerOptions{
		Interval: DefaultPollInterval,
	}
}

// Poller watches one job through the status endpoint until it reaches a
// terminal state. Polling is strictly sequential: the next request is issued
// only after the previous response has been handled.
type Poller struct {
	client   Client
	jobID    string
	interval time.Duration
	maxPolls int
	onReady  func(string)
	ready    sync.Once
}

// NewPoller creates a poller for the given job
func NewPoller(c Client, jobID string, opts *PollerOptions) *Poller {
	if opts == nil {
		opts = DefaultPollerOptions()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Poller{
		client:   c,
		jobID:    jobID,
		interval: interval,
		maxPolls: opts.MaxPolls,
		onReady:  opts.OnReady,
	}
}

// Wait polls until the job reaches a terminal state. It returns nil once the
// job is ready, a *RenderFailedError when the job failed, ErrPollLimit when
// the poll budget ran out, and the context error when ctx is done.
//
// Transport errors and non-200 responses read as still pending and are
// retried after the interval; a job the server does not know yet answers as
// pending too, so a poll racing its own submission keeps polling.
func (p *Poller) Wait(ctx context.Context) error {
	polls := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		polls++
		status, err := p.client.GetStatus(ctx, p.jobID)
		if err == nil {
			if status.Failed() {
				return &RenderFailedError{JobID: p.jobID, Message: *status.Error}
			}
			if status.Ready {
				p.ready.Do(func() {
					if p.onReady != nil {
						p.onReady(p.jobID)
					}
				})
				return nil
			}
		}

		if p.maxPolls > 0 && polls >= p.maxPolls {
			return ErrPollLimit
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
