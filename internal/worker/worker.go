// Package worker consumes the render queue and drives jobs to their terminal
// state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/logger"
	"github.com/keithhb33/MathVis/internal/mathexpr"
	"github.com/keithhb33/MathVis/internal/queue"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/render"
	"github.com/keithhb33/MathVis/pkg/types"
)

// Defaults applied by NewPool.
const (
	DefaultMaxWorkers    = 3
	DefaultRenderTimeout = 10 * time.Minute
)

// Config wires a Pool to its collaborators.
type Config struct {
	Store         registry.Store
	Queue         queue.Queue
	Renderer      render.Renderer
	VideoDir      string
	MaxWorkers    int
	RenderTimeout time.Duration
}

// Pool consumes render messages and runs a bounded number of renders
// concurrently. Every consumed job ends in exactly one terminal state no
// matter how the render goes: parse failures, renderer errors, timeouts, and
// panics all mark the job failed.
type Pool struct {
	cfg Config
}

// NewPool creates a render pool. Non-positive limits fall back to the
// defaults.
func NewPool(cfg Config) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}
	return &Pool{cfg: cfg}
}

// Run consumes the queue until the context is cancelled. Launch it as a
// goroutine; the WaitGroup is released once every in-flight render finished.
func (p *Pool) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	msgs, err := p.cfg.Queue.Consume(ctx)
	if err != nil {
		logger.Errorf("Render worker cannot consume queue: %v", err)
		return
	}

	limiter := make(chan struct{}, p.cfg.MaxWorkers)
	var renders sync.WaitGroup
	defer renders.Wait()

	logger.Infof("Render worker started (max %d concurrent renders)", p.cfg.MaxWorkers)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Render worker received shutdown signal, stopping...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Render queue closed, stopping worker...")
				return
			}
			select {
			case limiter <- struct{}{}:
			case <-ctx.Done():
				logger.Info("Render worker received shutdown signal, stopping...")
				return
			}
			renders.Add(1)
			go func(m queue.Message) {
				defer renders.Done()
				defer func() { <-limiter }()
				p.process(ctx, m.JobID)
			}(msg)
		}
	}
}

// process renders one job.
func (p *Pool) process(ctx context.Context, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Render for job %s panicked: %v", jobID, r)
			p.fail(ctx, jobID, fmt.Sprintf("render panicked: %v", r))
		}
	}()

	job, err := p.cfg.Store.Get(ctx, jobID)
	if errors.Is(err, registry.ErrNotFound) {
		logger.Warnf("Job %s is not in the registry, dropping message", jobID)
		return
	}
	if err != nil {
		logger.Errorf("Loading job %s failed: %v", jobID, err)
		return
	}
	if job.Status.Terminal() {
		logger.Debugf("Job %s already %s, skipping duplicate delivery", jobID, job.Status)
		return
	}

	req, err := p.buildRequest(job)
	if err != nil {
		p.fail(ctx, jobID, err.Error())
		return
	}

	logger.Infof("Rendering job %s: integral of %s d%s from %s to %s",
		jobID, job.Integrand, job.Variable, job.Lower, job.Upper)
	start := time.Now()

	rctx, cancel := context.WithTimeout(ctx, p.cfg.RenderTimeout)
	defer cancel()

	if err := p.cfg.Renderer.Render(rctx, req); err != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("render timed out after %s", p.cfg.RenderTimeout)
		}
		p.fail(ctx, jobID, err.Error())
		return
	}

	p.complete(ctx, jobID, filepath.Base(req.OutFile), time.Since(start))
}

// buildRequest validates the job's expressions and lays out the render call.
// Bounds are only checked here, at render time, never at submission.
func (p *Pool) buildRequest(job *registry.Job) (render.Request, error) {
	integrand, err := mathexpr.Parse(job.Integrand)
	if err != nil {
		return render.Request{}, fmt.Errorf("cannot parse integrand: %w", err)
	}

	if job.Lower == "" {
		return render.Request{}, errors.New("lower bound is required")
	}
	lower, err := mathexpr.Parse(job.Lower)
	if err != nil {
		return render.Request{}, fmt.Errorf("cannot parse lower bound: %w", err)
	}

	if job.Upper == "" {
		return render.Request{}, errors.New("upper bound is required")
	}
	upper, err := mathexpr.Parse(job.Upper)
	if err != nil {
		return render.Request{}, fmt.Errorf("cannot parse upper bound: %w", err)
	}

	return render.Request{
		JobID:     job.ID,
		Integrand: integrand.Canonical(),
		Variable:  job.Variable,
		Lower:     lower.Canonical(),
		Upper:     upper.Canonical(),
		OutFile:   filepath.Join(p.cfg.VideoDir, job.ID+".mp4"),
	}, nil
}

// complete records the terminal success and announces it. The write uses a
// context that survives shutdown, so a cancelled run cannot strand the job.
func (p *Pool) complete(ctx context.Context, jobID, artifact string, took time.Duration) {
	err := p.cfg.Store.Complete(context.WithoutCancel(ctx), jobID, artifact)
	if errors.Is(err, registry.ErrTerminal) {
		logger.Debugf("Job %s already terminal, keeping the first outcome", jobID)
		return
	}
	if err != nil {
		logger.Errorf("Recording completion for job %s failed: %v", jobID, err)
		return
	}

	logger.Infof("Job %s ready after %s (%s)", jobID, took.Round(time.Millisecond), artifact)
	events.Publish(events.Event{
		Type:     events.EventRenderCompleted,
		JobID:    jobID,
		Artifact: artifact,
	})
}

// fail records the terminal failure and announces it.
func (p *Pool) fail(ctx context.Context, jobID, cause string) {
	err := p.cfg.Store.Fail(context.WithoutCancel(ctx), jobID, cause)
	if errors.Is(err, registry.ErrTerminal) {
		logger.Debugf("Job %s already terminal, keeping the first outcome", jobID)
		return
	}
	if err != nil {
		logger.Errorf("Recording failure for job %s failed: %v", jobID, err)
		return
	}

	logger.Warnf("Job %s failed: %s", jobID, cause)
	events.Publish(events.Event{
		Type:  events.EventRenderFailed,
		JobID: jobID,
		Error: types.PrefixError(cause),
	})
}
