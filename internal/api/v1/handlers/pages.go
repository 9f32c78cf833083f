package handlers

import (
	"errors"
	"fmt"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
	"github.com/keithhb33/MathVis/pkg/playback"
	"github.com/keithhb33/MathVis/pkg/types"
)

const (
	// DefaultPollIntervalMs is the delay between status polls on the result page
	DefaultPollIntervalMs = 2000
	// DefaultDebounceMs is the quiet period before a preview request is issued
	DefaultDebounceMs = 300
)

// PagesHandler serves the HTML pages: the submission form and the result view
type PagesHandler struct {
	render         *services.Render
	pollIntervalMs int
}

// NewPagesHandler creates a new pages handler instance
func NewPagesHandler(render *services.Render, pollIntervalMs int) *PagesHandler {
	if pollIntervalMs <= 0 {
		pollIntervalMs = DefaultPollIntervalMs
	}
	return &PagesHandler{render: render, pollIntervalMs: pollIntervalMs}
}

// Index serves the submission form
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	return c.Render("index", h.indexData("", &types.SubmitRequest{}))
}

// Submit handles a render submission and redirects to the result page.
// Validation failures re-render the form with the message inline and the
// submitted values echoed back.
func (h *PagesHandler) Submit(c *fiber.Ctx) error {
	req := &types.SubmitRequest{
		Integrand:  c.FormValue("integrand"),
		Variable:   c.FormValue("variable"),
		Lower:      c.FormValue("lower"),
		Upper:      c.FormValue("upper"),
		WebhookURL: c.FormValue("webhook_url"),
	}

	job, err := h.render.Submit(c.Context(), req)
	if errors.Is(err, services.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).Render("index", h.indexData(err.Error(), req))
	}
	if err != nil {
		return fmt.Errorf("submitting render job: %w", err)
	}

	return c.Redirect(routes.ResultURL(job.ID), fiber.StatusSeeOther)
}

// Result serves the result page of a job. A job that is already ready gets
// the video inline and never starts the poller; everything else renders the
// loading view and lets the poller resolve it. Ids the registry does not
// know count as pending.
func (h *PagesHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "job id is required")
	}

	data := fiber.Map{
		"JobID":          jobID,
		"Ready":          false,
		"StatusURL":      routes.JobStatusURL(jobID),
		"VideoURL":       routes.VideoURL(jobID + ".mp4"),
		"PollIntervalMs": h.pollIntervalMs,
	}

	job, err := h.render.Get(c.Context(), jobID)
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		return fmt.Errorf("loading job %s: %w", jobID, err)
	}
	if err == nil && job.Status == registry.StatusReady {
		data["Ready"] = true
		data["VideoURL"] = playback.CacheBust(routes.VideoURL(job.Artifact), time.Now().Unix())
	}

	return c.Render("result", data)
}

func (h *PagesHandler) indexData(errMsg string, form *types.SubmitRequest) fiber.Map {
	return fiber.Map{
		"Error":      errMsg,
		"Form":       form,
		"PreviewURL": routes.PreviewURL(),
		"DebounceMs": DefaultDebounceMs,
	}
}
