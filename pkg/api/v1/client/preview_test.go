package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithhb33/MathVis/pkg/types"
)

// updateCollector gathers applied preview updates across goroutines.
type updateCollector struct {
	mu      sync.Mutex
	updates []PreviewUpdate
}

func (c *updateCollector) add(u PreviewUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u)
}

func (c *updateCollector) all() []PreviewUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PreviewUpdate(nil), c.updates...)
}

func (c *updateCollector) count() int {
	return len(c.all())
}

// TestPreviewSessionDebounces verifies that a burst of field changes issues a
// single request carrying the final state.
func TestPreviewSessionDebounces(t *testing.T) {
	var requests atomic.Int32
	var lastReq atomic.Pointer[types.PreviewRequest]
	stub := &stubClient{
		preview: func(_ context.Context, req *types.PreviewRequest) (types.PreviewResponse, error) {
			requests.Add(1)
			lastReq.Store(req)
			return types.PreviewResponse{Expr: `3 x \sin\left(x\right)`, Lower: "0", Upper: `\pi`}, nil
		},
	}

	collector := &updateCollector{}
	session := NewPreviewSession(stub, &PreviewSessionOptions{
		Debounce: 20 * time.Millisecond,
		OnUpdate: collector.add,
	})
	defer session.Close()

	// Simulate typing: every keystroke lands inside the quiet period.
	for _, integrand := range []string{"3", "3x", "3x*", "3x*s", "3x*sin(x)"} {
		session.Update(context.Background(), types.PreviewRequest{
			Integrand: integrand,
			Variable:  "x",
			Lower:     "0",
			Upper:     "pi",
		})
	}

	require.Eventually(t, func() bool { return collector.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), requests.Load(), "a burst of changes should issue one request")
	assert.Equal(t, "3x*sin(x)", lastReq.Load().Integrand, "the request should carry the final field state")

	update := collector.all()[0]
	assert.Equal(t, `integral from 0 to \pi of 3 x \sin\left(x\right) dx`, update.Display)
	assert.False(t, update.Cleared())
}

// TestPreviewSessionNewestWins verifies the sequence tokens: a stale response
// arriving after a newer one is discarded.
func TestPreviewSessionNewestWins(t *testing.T) {
	gate := make(chan struct{})
	var requests atomic.Int32
	stub := &stubClient{
		preview: func(context.Context, *types.PreviewRequest) (types.PreviewResponse, error) {
			if requests.Add(1) == 1 {
				// Stall the first response until the test releases it.
				<-gate
				return types.PreviewResponse{Expr: "x"}, nil
			}
			return types.PreviewResponse{Expr: "x^{2}"}, nil
		},
	}

	collector := &updateCollector{}
	session := NewPreviewSession(stub, &PreviewSessionOptions{
		Debounce: 5 * time.Millisecond,
		OnUpdate: collector.add,
	})
	defer session.Close()

	session.Update(context.Background(), types.PreviewRequest{Integrand: "x", Variable: "x"})
	require.Eventually(t, func() bool { return requests.Load() == 1 }, 2*time.Second, time.Millisecond,
		"the first request should be in flight")

	session.Update(context.Background(), types.PreviewRequest{Integrand: "x^2", Variable: "x"})
	require.Eventually(t, func() bool { return collector.count() == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, "integral from ? to ? of x^{2} dx", collector.all()[0].Display)

	close(gate)
	assert.Never(t, func() bool { return collector.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond,
		"the stale response must not displace the newer one")
}

// TestPreviewSessionClearsOnEmptyExpr verifies that an unparseable integrand
// produces a clearing update.
func TestPreviewSessionClearsOnEmptyExpr(t *testing.T) {
	stub := &stubClient{
		preview: func(context.Context, *types.PreviewRequest) (types.PreviewResponse, error) {
			return types.PreviewResponse{}, nil
		},
	}

	collector := &updateCollector{}
	session := NewPreviewSession(stub, &PreviewSessionOptions{
		Debounce: 5 * time.Millisecond,
		OnUpdate: collector.add,
	})
	defer session.Close()

	session.Update(context.Background(), types.PreviewRequest{Integrand: "3x*"})
	require.Eventually(t, func() bool { return collector.count() == 1 }, 2*time.Second, time.Millisecond)

	update := collector.all()[0]
	assert.True(t, update.Cleared())
	assert.Empty(t, update.Display)
}

// TestPreviewSessionKeepsLastPreviewOnError verifies that a transport failure
// leaves the last applied preview in place.
func TestPreviewSessionKeepsLastPreviewOnError(t *testing.T) {
	var requests atomic.Int32
	stub := &stubClient{
		preview: func(context.Context, *types.PreviewRequest) (types.PreviewResponse, error) {
			if requests.Add(1) == 1 {
				return types.PreviewResponse{Expr: "x"}, nil
			}
			return types.PreviewResponse{}, errors.New("connection refused")
		},
	}

	collector := &updateCollector{}
	session := NewPreviewSession(stub, &PreviewSessionOptions{
		Debounce: 5 * time.Millisecond,
		OnUpdate: collector.add,
	})
	defer session.Close()

	session.Update(context.Background(), types.PreviewRequest{Integrand: "x", Variable: "x"})
	require.Eventually(t, func() bool { return collector.count() == 1 }, 2*time.Second, time.Millisecond)

	session.Update(context.Background(), types.PreviewRequest{Integrand: "x+", Variable: "x"})
	require.Eventually(t, func() bool { return requests.Load() == 2 }, 2*time.Second, time.Millisecond)

	assert.Never(t, func() bool { return collector.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond,
		"a failed request must not clear the preview")
	assert.Equal(t, "integral from ? to ? of x dx", collector.all()[0].Display)
}

// TestComposeDisplay verifies the literal reading of a preview response.
func TestComposeDisplay(t *testing.T) {
	tests := []struct {
		name     string
		resp     types.PreviewResponse
		variable string
		want     string
	}{
		{
			name:     "full",
			resp:     types.PreviewResponse{Expr: `3 x \sin\left(x\right)`, Lower: "0", Upper: `\pi`},
			variable: "x",
			want:     `integral from 0 to \pi of 3 x \sin\left(x\right) dx`,
		},
		{
			name:     "missing lower",
			resp:     types.PreviewResponse{Expr: "x^{2}", Upper: "1"},
			variable: "x",
			want:     "integral from ? to 1 of x^{2} dx",
		},
		{
			name:     "missing upper",
			resp:     types.PreviewResponse{Expr: "x^{2}", Lower: "0"},
			variable: "x",
			want:     "integral from 0 to ? of x^{2} dx",
		},
		{
			name:     "variable defaults to x",
			resp:     types.PreviewResponse{Expr: "t"},
			variable: "  ",
			want:     "integral from ? to ? of t dx",
		},
		{
			name:     "custom variable trimmed",
			resp:     types.PreviewResponse{Expr: "t^{2}", Lower: "0", Upper: "1"},
			variable: " t ",
			want:     "integral from 0 to 1 of t^{2} dt",
		},
		{
			name:     "empty expr clears",
			resp:     types.PreviewResponse{Lower: "0", Upper: "1"},
			variable: "x",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeDisplay(tt.resp, tt.variable))
		})
	}
}

// TestNewPreviewSessionDefaults verifies defaulting of the options.
func TestNewPreviewSessionDefaults(t *testing.T) {
	session := NewPreviewSession(&stubClient{}, nil)
	assert.Equal(t, DefaultDebounce, session.debounce)

	session = NewPreviewSession(&stubClient{}, &PreviewSessionOptions{Debounce: -1})
	assert.Equal(t, DefaultDebounce, session.debounce)
}
