package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/keithhb33/MathVis/internal/logger"
	"github.com/keithhb33/MathVis/internal/mathexpr"
	"github.com/keithhb33/MathVis/internal/queue"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/pkg/types"
)

// ErrValidation marks a submission whose fields the caller must correct.
// Handlers turn it into a 400 with the message shown inline on the form.
var ErrValidation = errors.New("invalid request")

// Render provides business logic for render job operations
type Render struct {
	store registry.Store
	queue queue.Queue
}

// NewRenderService creates a new render service instance
func NewRenderService(store registry.Store, q queue.Queue) *Render {
	return &Render{store: store, queue: q}
}

// Submit validates the raw form fields, registers a pending job, and
// schedules its render. Validation here is syntactic only: the integrand must
// be non-empty and bounds must be empty or parseable; whether the integrand
// itself parses and integrates is decided at render time.
//
// When scheduling fails the job is failed in place and still returned, so the
// caller lands on the result page and reads the cause from the status
// endpoint.
func (s *Render) Submit(ctx context.Context, req *types.SubmitRequest) (*registry.Job, error) {
	job := &registry.Job{
		ID:         newJobID(),
		Integrand:  strings.TrimSpace(req.Integrand),
		Variable:   strings.TrimSpace(req.Variable),
		Lower:      strings.TrimSpace(req.Lower),
		Upper:      strings.TrimSpace(req.Upper),
		WebhookURL: strings.TrimSpace(req.WebhookURL),
		Status:     registry.StatusPending,
	}
	if job.Variable == "" {
		job.Variable = "x"
	}

	if err := validateSubmission(job); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job record: %w", err)
	}
	logger.Infof("Job %s submitted: integrand %q, variable %q, bounds [%q, %q]",
		job.ID, job.Integrand, job.Variable, job.Lower, job.Upper)

	if err := s.queue.Publish(ctx, queue.Message{JobID: job.ID}); err != nil {
		logger.Errorf("Scheduling render for job %s failed: %v", job.ID, err)
		cause := fmt.Sprintf("cannot schedule render: %v", err)
		if failErr := s.store.Fail(ctx, job.ID, cause); failErr != nil {
			logger.Errorf("Recording scheduling failure for job %s failed: %v", job.ID, failErr)
		}
		if failed, getErr := s.store.Get(ctx, job.ID); getErr == nil {
			return failed, nil
		}
		return job, nil
	}

	return job, nil
}

func validateSubmission(job *registry.Job) error {
	if job.Integrand == "" {
		return fmt.Errorf("%w: integrand is required", ErrValidation)
	}
	if !mathexpr.IsIdentifier(job.Variable) {
		return fmt.Errorf("%w: variable must be a plain identifier", ErrValidation)
	}
	if job.Lower != "" {
		if _, err := mathexpr.Parse(job.Lower); err != nil {
			return fmt.Errorf("%w: lower bound: %v", ErrValidation, err)
		}
	}
	if job.Upper != "" {
		if _, err := mathexpr.Parse(job.Upper); err != nil {
			return fmt.Errorf("%w: upper bound: %v", ErrValidation, err)
		}
	}
	if job.WebhookURL != "" {
		u, err := url.ParseRequestURI(job.WebhookURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: webhook url must be an absolute http(s) url", ErrValidation)
		}
	}
	return nil
}

// Get retrieves the full job record
func (s *Render) Get(ctx context.Context, id string) (*registry.Job, error) {
	return s.store.Get(ctx, id)
}

// Status reports the polling view of a job. Unknown ids read as still
// pending, so a poll that races the submit keeps polling instead of erroring.
func (s *Render) Status(ctx context.Context, id string) (types.StatusResponse, error) {
	job, err := s.store.Get(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		return types.StatusResponse{}, nil
	}
	if err != nil {
		return types.StatusResponse{}, err
	}
	return StatusOf(job), nil
}

// StatusOf maps a job record onto the status wire shape. Failed jobs carry
// the stored error string, internal prefix included; clients strip it for
// display.
func StatusOf(job *registry.Job) types.StatusResponse {
	switch job.Status {
	case registry.StatusReady:
		return types.StatusResponse{Ready: true}
	case registry.StatusFailed:
		msg := job.Error
		return types.StatusResponse{Error: &msg}
	default:
		return types.StatusResponse{}
	}
}

// List retrieves jobs for the operator surface, newest first
func (s *Render) List(ctx context.Context, status string, limit int) ([]registry.Job, error) {
	opts := registry.ListOptions{Limit: limit}
	if status != "" {
		parsed, err := registry.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		opts.Status = parsed
	}
	return s.store.List(ctx, opts)
}

// newJobID returns a fresh 32-char hex id. The id doubles as the artifact
// base name, so it must stay filesystem- and URL-safe.
func newJobID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
