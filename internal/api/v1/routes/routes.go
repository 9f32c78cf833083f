package v1

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/internal/api/v1/handlers"
	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
)

// Register configures all the MathVis routes.
//
// NOTE: route ordering is important because routes will try and match in the order they are registered.
func Register(
	app *fiber.App,
	pagesHandler *handlers.PagesHandler,
	jobsHandler *handlers.JobsHandler,
	previewHandler *handlers.PreviewHandler,
) {
	// Pages
	app.Get("/", pagesHandler.Index).Name(routes.IndexPage)
	app.Post("/", pagesHandler.Submit).Name(routes.SubmitJob)
	app.Get("/result/:id", pagesHandler.Result).Name(routes.ResultPage)

	// Polling protocol
	app.Get("/status/:id", jobsHandler.GetStatus).Name(routes.GetJobStatus)

	// Live preview
	app.Post("/latex", previewHandler.Latex).Name(routes.PreviewLatex)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(routes.HealthCheck)

	// Operator API
	api := app.Group(routes.APIv1Prefix)
	api.Get("/jobs", jobsHandler.List).Name(routes.ListJobs)
}
