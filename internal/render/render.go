// Package render produces solution videos for definite integrals.
package render

import "context"

// Request describes one video to produce. Expressions arrive in canonical
// form, with explicit products and ** exponents, ready for the symbolic
// pipeline.
type Request struct {
	JobID     string
	Integrand string
	Variable  string
	Lower     string
	Upper     string
	// OutFile is the path the finished video must land at.
	OutFile string
}

// Renderer produces a video for a request. Implementations honor context
// cancellation and report failure through the returned error.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, req Request) error

// Render implements Renderer.
func (f Func) Render(ctx context.Context, req Request) error {
	return f(ctx, req)
}
