package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/keithhb33/MathVis/internal/render"
)

// MockRenderer implements render.Renderer for testing. The standard behavior
// writes a placeholder video to the requested path and succeeds; tests script
// other outcomes through SetRenderFn.
type MockRenderer struct {
	mu       sync.Mutex
	renderFn func(ctx context.Context, req render.Request) error
	calls    []render.Request
}

var _ render.Renderer = (*MockRenderer)(nil)

// NewMockRenderer creates a new MockRenderer with the standard success behavior
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// Render records the request and runs the scripted behavior
func (m *MockRenderer) Render(ctx context.Context, req render.Request) error {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.renderFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return WriteVideo(req.OutFile)
}

// SetRenderFn replaces the render behavior for subsequent calls. Set it
// before the submission that should observe it.
func (m *MockRenderer) SetRenderFn(fn func(ctx context.Context, req render.Request) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderFn = fn
}

// ResetToStandard restores the standard success behavior
func (m *MockRenderer) ResetToStandard() {
	m.SetRenderFn(nil)
}

// Calls returns a copy of every render request seen so far
func (m *MockRenderer) Calls() []render.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]render.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// WriteVideo writes a placeholder video file at the given path
func WriteVideo(path string) error {
	if err := os.WriteFile(path, []byte("mathvis placeholder video"), 0o644); err != nil {
		return fmt.Errorf("writing placeholder video: %w", err)
	}
	return nil
}
