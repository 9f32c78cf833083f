// Package notify delivers completion webhooks for finished render jobs.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/logger"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/pkg/types"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 30 * time.Second

// Notifier posts a job's terminal status to the webhook URL the submission
// carried. Each job is notified at most once; a failed delivery is logged
// and dropped, it never feeds back into job state.
type Notifier struct {
	store   registry.Store
	timeout time.Duration
}

// NewNotifier creates a webhook notifier backed by the given store.
func NewNotifier(store registry.Store) *Notifier {
	return &Notifier{store: store, timeout: DefaultTimeout}
}

// Register subscribes the notifier to the render lifecycle events.
func (n *Notifier) Register() {
	events.Subscribe(events.EventRenderCompleted, n.handle)
	events.Subscribe(events.EventRenderFailed, n.handle)
}

func (n *Notifier) handle(ctx context.Context, event events.Event) error {
	job, err := n.store.Get(ctx, event.JobID)
	if errors.Is(err, registry.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading job %s: %w", event.JobID, err)
	}
	if job.WebhookURL == "" || job.WebhookSent {
		return nil
	}

	payload := types.WebhookPayload{
		JobID:          job.ID,
		StatusResponse: services.StatusOf(job),
	}
	if err := n.post(job.WebhookURL, payload); err != nil {
		return fmt.Errorf("posting webhook for job %s: %w", job.ID, err)
	}

	if err := n.store.MarkWebhookSent(ctx, job.ID); err != nil {
		return fmt.Errorf("marking webhook sent for job %s: %w", job.ID, err)
	}
	logger.Infof("Webhook for job %s delivered to %s", job.ID, job.WebhookURL)
	return nil
}

// post sends the payload; any non-2xx response counts as a failed delivery.
func (n *Notifier) post(url string, payload types.WebhookPayload) error {
	agent := fiber.Post(url)
	agent.Timeout(n.timeout)
	agent.Set("Content-Type", "application/json")
	agent.JSON(payload)

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}
	return nil
}
