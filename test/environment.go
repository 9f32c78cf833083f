package test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/keithhb33/MathVis/internal/queue"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/render"
	"github.com/keithhb33/MathVis/pkg/api/v1/client"
	"github.com/keithhb33/MathVis/test/mocks"
)

// testQueueCapacity bounds the in-memory render queue in tests.
const testQueueCapacity = 64

// TestEnvironment encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - In-memory job registry and render queue
//   - Real API server
//   - Real API client
//   - A running worker pool backed by a scripted renderer
type TestEnvironment struct {
	t *testing.T // The testing.T instance for this environment

	// Server components
	App    *fiber.App
	Server *httptest.Server

	// Client components
	APIClient client.Client

	// Job lifecycle components
	Store    registry.Store
	Queue    queue.Queue
	VideoDir string

	// Renderer is the scripted render pipeline. Script outcomes through
	// its SetRenderFn helper; the default writes a placeholder video.
	Renderer *mocks.MockRenderer

	// renderer is what the worker pool actually runs. It defaults to
	// Renderer and is swapped by WithRenderer.
	renderer render.Renderer

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Worker lifecycle
	workerCancel context.CancelFunc
	workerWG     sync.WaitGroup

	// Cleanup function
	cleanup func()
}

// NewTestEnvironment creates a new test environment with the given options.
// The environment must be cleaned up after use by calling Cleanup.
func NewTestEnvironment(t *testing.T, opts ...Option) *TestEnvironment {
	t.Helper()

	// Create environment with default timeout
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	env := &TestEnvironment{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Store:      registry.NewMemoryStore(),
		Queue:      queue.NewMemoryQueue(testQueueCapacity),
		VideoDir:   t.TempDir(),
		Renderer:   mocks.NewMockRenderer(),
	}
	env.renderer = env.Renderer

	// Initialize cleanup function
	env.cleanup = func() {
		if env.Server != nil {
			env.Server.Close()
		}
		if env.workerCancel != nil {
			env.workerCancel()
			env.workerWG.Wait()
		}
		if env.cancelFunc != nil {
			env.cancelFunc()
		}
		_ = env.Queue.Close()
		_ = env.Store.Close()
	}

	// Apply options before the server and worker wire up
	for _, opt := range opts {
		opt(env)
	}

	// Setup server by default
	SetupServer(env)

	// Setup worker pool and webhook notifier by default
	SetupWorker(env)

	return env
}

// Context returns the environment's context, which is automatically
// canceled when the environment is cleaned up.
func (e *TestEnvironment) Context() context.Context {
	return e.ctx
}

// Cleanup tears down the test environment, releasing all resources.
// This should be deferred immediately after creating the environment.
func (e *TestEnvironment) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// Require returns a require.Assertions instance for this environment.
// This is a convenience method to avoid passing t around.
func (e *TestEnvironment) Require() *require.Assertions {
	return require.New(e.t)
}

// WithTimeout returns a new context with the specified timeout.
// The returned context is a child of the environment's context.
func (e *TestEnvironment) WithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(e.ctx, timeout)
}

// T returns the testing.T instance for this environment.
// This is useful for test helpers that need access to the test instance.
func (e *TestEnvironment) T() *testing.T {
	return e.t
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (e *TestEnvironment) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}
