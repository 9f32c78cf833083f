package handlers

import (
	"errors"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/pkg/types"
)

// DefaultListLimit caps the job list endpoint when no limit is given
const DefaultListLimit = 50

// JobsHandler handles the JSON endpoints of the job lifecycle
type JobsHandler struct {
	render *services.Render
}

// NewJobsHandler creates a new jobs handler instance
func NewJobsHandler(render *services.Render) *JobsHandler {
	return &JobsHandler{render: render}
}

// GetStatus reports the polling view of a job.
//
// The body is always {"ready": bool, "error": string|null}. Ids the registry
// does not know answer as pending, so a poll that races the submit keeps
// polling instead of erroring.
func (h *JobsHandler) GetStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "job id is required"})
	}

	status, err := h.render.Status(c.Context(), jobID)
	if err != nil {
		return fmt.Errorf("loading status of job %s: %w", jobID, err)
	}
	return c.JSON(status)
}

// List returns job records for operators, newest first
func (h *JobsHandler) List(c *fiber.Ctx) error {
	jobs, err := h.render.List(c.Context(), c.Query("status"), c.QueryInt("limit", DefaultListLimit))
	if errors.Is(err, services.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	resp := types.JobsResponse{Jobs: make([]types.Job, 0, len(jobs))}
	for i := range jobs {
		resp.Jobs = append(resp.Jobs, jobView(&jobs[i]))
	}
	return c.JSON(resp)
}

// jobView maps a registry record onto the wire shape of the list endpoint
func jobView(job *registry.Job) types.Job {
	return types.Job{
		ID:          job.ID,
		Integrand:   job.Integrand,
		Variable:    job.Variable,
		Lower:       job.Lower,
		Upper:       job.Upper,
		Status:      job.Status.String(),
		Artifact:    job.Artifact,
		Error:       job.Error,
		WebhookURL:  job.WebhookURL,
		WebhookSent: job.WebhookSent,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}
