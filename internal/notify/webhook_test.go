package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/pkg/types"
)

type receiver struct {
	server   *httptest.Server
	calls    atomic.Int32
	status   int
	payloads chan types.WebhookPayload
}

func newReceiver(t *testing.T, status int) *receiver {
	t.Helper()
	r := &receiver{status: status, payloads: make(chan types.WebhookPayload, 8)}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.calls.Add(1)
		var payload types.WebhookPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err == nil {
			r.payloads <- payload
		}
		w.WriteHeader(r.status)
	}))
	t.Cleanup(r.server.Close)
	return r
}

func TestNotifierDeliversCompletion(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()
	rec := newReceiver(t, http.StatusOK)

	job := &registry.Job{ID: "job-hook-1", Integrand: "x", WebhookURL: rec.server.URL}
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.Complete(ctx, job.ID, job.ID+".mp4"))

	n := NewNotifier(store)
	require.NoError(t, n.handle(ctx, events.Event{Type: events.EventRenderCompleted, JobID: job.ID}))

	payload := <-rec.payloads
	assert.Equal(t, job.ID, payload.JobID)
	assert.True(t, payload.Ready)
	assert.Nil(t, payload.Error)

	sent, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, sent.WebhookSent)

	// A duplicate event must not repost.
	require.NoError(t, n.handle(ctx, events.Event{Type: events.EventRenderCompleted, JobID: job.ID}))
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestNotifierDeliversFailure(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()
	rec := newReceiver(t, http.StatusOK)

	job := &registry.Job{ID: "job-hook-2", Integrand: "x", WebhookURL: rec.server.URL}
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.Fail(ctx, job.ID, "integral diverged"))

	n := NewNotifier(store)
	require.NoError(t, n.handle(ctx, events.Event{Type: events.EventRenderFailed, JobID: job.ID}))

	payload := <-rec.payloads
	assert.False(t, payload.Ready)
	require.NotNil(t, payload.Error)
	assert.Equal(t, "error:integral diverged", *payload.Error)
}

func TestNotifierSkipsJobsWithoutWebhook(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()
	rec := newReceiver(t, http.StatusOK)

	job := &registry.Job{ID: "job-hook-3", Integrand: "x"}
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.Complete(ctx, job.ID, job.ID+".mp4"))

	n := NewNotifier(store)
	require.NoError(t, n.handle(ctx, events.Event{Type: events.EventRenderCompleted, JobID: job.ID}))
	assert.Zero(t, rec.calls.Load())
}

func TestNotifierIgnoresUnknownJobs(t *testing.T) {
	n := NewNotifier(registry.NewMemoryStore())
	assert.NoError(t, n.handle(context.Background(), events.Event{Type: events.EventRenderCompleted, JobID: "gone"}))
}

func TestNotifierKeepsJobUnsentOnDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()
	rec := newReceiver(t, http.StatusInternalServerError)

	job := &registry.Job{ID: "job-hook-4", Integrand: "x", WebhookURL: rec.server.URL}
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.Complete(ctx, job.ID, job.ID+".mp4"))

	n := NewNotifier(store)
	err := n.handle(ctx, events.Event{Type: events.EventRenderCompleted, JobID: job.ID})
	require.Error(t, err)

	kept, getErr := store.Get(ctx, job.ID)
	require.NoError(t, getErr)
	assert.False(t, kept.WebhookSent, "a failed delivery must stay retryable")
}
