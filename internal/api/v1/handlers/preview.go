package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/pkg/types"
)

// PreviewHandler handles the stateless LaTeX preview endpoint
type PreviewHandler struct {
	preview *services.Preview
}

// NewPreviewHandler creates a new preview handler instance
func NewPreviewHandler(preview *services.Preview) *PreviewHandler {
	return &PreviewHandler{preview: preview}
}

// Latex typesets the submitted fields. A malformed body previews the same as
// empty fields; user input never turns into an error status here.
func (h *PreviewHandler) Latex(c *fiber.Ctx) error {
	var req types.PreviewRequest
	_ = c.BodyParser(&req)
	return c.JSON(h.preview.Latex(&req))
}
