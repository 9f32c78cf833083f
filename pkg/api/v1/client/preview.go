package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/keithhb33/MathVis/pkg/types"
)

// DefaultDebounce is the quiet period a PreviewSession waits after the last
// field change before issuing a preview request
const DefaultDebounce = 300 * time.Millisecond

// PreviewUpdate is one applied preview outcome
type PreviewUpdate struct {
	// Display is the composed reading of the integral, empty when the
	// integrand did not parse
	Display string

	// Response is the raw preview response the update was built from
	Response types.PreviewResponse
}

// Cleared reports whether the update asks the caller to clear the preview
// area instead of showing anything
func (u PreviewUpdate) Cleared() bool {
	return u.Display == ""
}

// PreviewSessionOptions contains configuration options for a PreviewSession
type PreviewSessionOptions struct {
	// Debounce is the quiet period before a request is issued
	Debounce time.Duration

	// OnUpdate receives every applied preview outcome
	OnUpdate func(PreviewUpdate)
}

// PreviewSession debounces form field changes into preview requests and
// discards stale responses, so the newest change always wins no matter how
// the responses arrive.
type PreviewSession struct {
	client   Client
	debounce time.Duration
	onUpdate func(PreviewUpdate)

	mu         sync.Mutex
	timer      *time.Timer
	pending    types.PreviewRequest
	pendingCtx context.Context
	issued     int64
	applied    int64
}

// NewPreviewSession creates a preview session backed by the given client
func NewPreviewSession(c Client, opts *PreviewSessionOptions) *PreviewSession {
	if opts == nil {
		opts = &PreviewSessionOptions{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &PreviewSession{
		client:   c,
		debounce: debounce,
		onUpdate: opts.OnUpdate,
	}
}

// Update records the latest state of the form fields and restarts the quiet
// period. A request is issued only once the fields stop changing for the
// debounce interval; ctx governs that eventual request.
func (s *PreviewSession) Update(ctx context.Context, req types.PreviewRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = req
	s.pendingCtx = ctx
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flush)
		return
	}
	s.timer.Reset(s.debounce)
}

// Close stops the session. A request already in flight may still apply.
func (s *PreviewSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// flush issues the pending request with a fresh sequence token
func (s *PreviewSession) flush() {
	s.mu.Lock()
	req := s.pending
	ctx := s.pendingCtx
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	resp, err := s.client.Preview(ctx, &req)
	if err != nil {
		// The last applied preview stays up on transport failure.
		return
	}
	s.apply(seq, req, resp)
}

// apply publishes a response unless a newer one was already applied
func (s *PreviewSession) apply(seq int64, req types.PreviewRequest, resp types.PreviewResponse) {
	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		return
	}
	s.applied = seq
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(PreviewUpdate{
			Display:  ComposeDisplay(resp, req.Variable),
			Response: resp,
		})
	}
}

// ComposeDisplay renders a preview response as the literal reading of the
// integral, for example "integral from 0 to \pi of 3 x \sin\left(x\right) dx".
// Bounds that are missing or failed to parse read as "?". An empty expression
// yields an empty string so callers clear the preview area.
func ComposeDisplay(resp types.PreviewResponse, variable string) string {
	if resp.Expr == "" {
		return ""
	}

	lower := resp.Lower
	if lower == "" {
		lower = "?"
	}
	upper := resp.Upper
	if upper == "" {
		upper = "?"
	}
	variable = strings.TrimSpace(variable)
	if variable == "" {
		variable = "x"
	}

	return fmt.Sprintf("integral from %s to %s of %s d%s", lower, upper, resp.Expr, variable)
}
