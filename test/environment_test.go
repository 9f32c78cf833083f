package test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/render"
	"github.com/keithhb33/MathVis/pkg/types"
)

func TestMain(m *testing.M) {
	events.Start(context.Background())
	os.Exit(m.Run())
}

func TestNewTestEnvironment(t *testing.T) {
	// Create environment
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	// Basic environment checks
	assert.NotNil(t, env.t, "testing.T should be set")
	assert.NotNil(t, env.ctx, "context should be set")
	assert.NotNil(t, env.cancelFunc, "cancel function should be set")
	assert.NotNil(t, env.cleanup, "cleanup function should be set")
	assert.NotNil(t, env.Store, "registry should be initialized")
	assert.NotNil(t, env.Queue, "queue should be initialized")
	assert.NotNil(t, env.Renderer, "renderer should be initialized")
	assert.NotNil(t, env.App, "fiber app should be initialized")
	assert.NotNil(t, env.Server, "test server should be initialized")
	assert.NotNil(t, env.APIClient, "API client should be initialized")
	assert.DirExists(t, env.VideoDir, "video directory should exist")
}

func TestTestEnvironment_Server(t *testing.T) {
	t.Run("health endpoint", func(t *testing.T) {
		env := NewTestEnvironment(t)
		defer env.Cleanup()

		health, err := env.APIClient.HealthCheck(env.Context())
		require.NoError(t, err, "health check should succeed")
		assert.Equal(t, "healthy", health["status"])
	})

	t.Run("form page is served", func(t *testing.T) {
		env := NewTestEnvironment(t)
		defer env.Cleanup()

		resp, err := http.Get(env.Server.URL + "/")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `name="integrand"`)
	})

	t.Run("registry is shared with the server", func(t *testing.T) {
		env := NewTestEnvironment(t)
		defer env.Cleanup()

		job := &registry.Job{ID: "env-shared-1", Integrand: "x", Variable: "x", Lower: "0", Upper: "1"}
		require.NoError(t, env.Store.Create(env.Context(), job))
		require.NoError(t, env.Store.Complete(env.Context(), job.ID, job.ID+".mp4"))

		status, err := env.APIClient.GetStatus(env.Context(), job.ID)
		require.NoError(t, err)
		assert.True(t, status.Ready, "status endpoint should see the record")
	})
}

func TestTestEnvironment_Worker(t *testing.T) {
	t.Run("default renderer completes jobs", func(t *testing.T) {
		env := NewTestEnvironment(t)
		defer env.Cleanup()

		jobID, err := env.APIClient.SubmitJob(env.Context(), &types.SubmitRequest{
			Integrand: "x",
			Lower:     "0",
			Upper:     "1",
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			status, err := env.APIClient.GetStatus(env.Context(), jobID)
			return err == nil && status.Ready
		}, 5*time.Second, 10*time.Millisecond, "worker should drive the job to ready")

		calls := env.Renderer.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, jobID, calls[0].JobID)
	})

	t.Run("custom renderer option", func(t *testing.T) {
		env := NewTestEnvironment(t, WithRenderer(render.Func(func(_ context.Context, _ render.Request) error {
			return errors.New("scripted failure")
		})))
		defer env.Cleanup()

		jobID, err := env.APIClient.SubmitJob(env.Context(), &types.SubmitRequest{
			Integrand: "x",
			Lower:     "0",
			Upper:     "1",
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			status, err := env.APIClient.GetStatus(env.Context(), jobID)
			return err == nil && status.Failed()
		}, 5*time.Second, 10*time.Millisecond, "worker should run the custom renderer")

		assert.Empty(t, env.Renderer.Calls(), "the default renderer must not run when replaced")
	})
}

func TestTestEnvironment_Context(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		env := NewTestEnvironment(t)
		defer env.Cleanup()

		deadline, ok := env.Context().Deadline()
		require.True(t, ok, "context should have deadline")
		assert.True(t, deadline.After(time.Now()), "deadline should be in the future")
	})

	t.Run("custom timeout", func(t *testing.T) {
		customTimeout := 5 * time.Second
		env := NewTestEnvironment(t, WithTimeout(customTimeout))
		defer env.Cleanup()

		deadline, ok := env.Context().Deadline()
		require.True(t, ok, "context should have deadline")
		expectedDeadline := time.Now().Add(customTimeout)
		assert.WithinDuration(t, expectedDeadline, deadline, time.Second)
	})

	t.Run("context cancellation", func(t *testing.T) {
		env := NewTestEnvironment(t)

		// Get a channel that will be closed when the context is done
		done := make(chan struct{})
		go func() {
			<-env.Context().Done()
			close(done)
		}()

		// Cleanup should cancel the context
		env.Cleanup()

		// Wait for context cancellation or timeout
		select {
		case <-done:
			// Context was cancelled as expected
		case <-time.After(time.Second):
			t.Error("context was not cancelled by cleanup")
		}
	})
}

func TestTestEnvironment_Cleanup(t *testing.T) {
	t.Run("multiple cleanup calls", func(t *testing.T) {
		env := NewTestEnvironment(t)

		// First cleanup should work
		env.Cleanup()

		// Second cleanup should not panic
		env.Cleanup()
	})

	t.Run("custom cleanup function", func(t *testing.T) {
		cleanupCalled := false
		customCleanup := func() {
			cleanupCalled = true
		}

		env := NewTestEnvironment(t, WithCleanupFunc(customCleanup))
		env.Cleanup()

		assert.True(t, cleanupCalled, "custom cleanup should be called")
	})

	t.Run("server shutdown", func(t *testing.T) {
		env := NewTestEnvironment(t)
		serverURL := env.Server.URL

		env.Cleanup()

		_, err := http.Get(serverURL + "/health")
		assert.Error(t, err, "server should be closed after cleanup")
	})
}

func TestTestEnvironment_WithTimeout(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	// Create a child context with timeout
	timeout := 100 * time.Millisecond
	ctx, cancel := env.WithTimeout(timeout)
	defer cancel()

	// Wait for timeout
	<-ctx.Done()

	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestTestEnvironment_Require(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	// Require() should return a require.Assertions
	assert.IsType(t, &require.Assertions{}, env.Require())
}

func TestTestEnvironment_T(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	// T() should return the original testing.T
	assert.Same(t, t, env.T())
}

func TestTestEnvironment_Retry(t *testing.T) {
	env := NewTestEnvironment(t)
	defer env.Cleanup()

	attempts := 0
	err := env.Retry(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	err = env.Retry(func() error { return errors.New("still failing") }, 2, time.Millisecond)
	assert.EqualError(t, err, "still failing")
}
