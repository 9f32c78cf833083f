package services

import (
	"github.com/keithhb33/MathVis/internal/mathexpr"
	"github.com/keithhb33/MathVis/pkg/types"
)

// Preview provides the stateless LaTeX preview backing the form page
type Preview struct{}

// NewPreviewService creates a new preview service instance
func NewPreviewService() *Preview {
	return &Preview{}
}

// Latex renders each submitted field to LaTeX. A field that is empty or does
// not parse comes back as the empty string; user input never produces an
// error here.
func (s *Preview) Latex(req *types.PreviewRequest) types.PreviewResponse {
	return types.PreviewResponse{
		Expr:  latexOrEmpty(req.Integrand),
		Lower: latexOrEmpty(req.Lower),
		Upper: latexOrEmpty(req.Upper),
	}
}

func latexOrEmpty(input string) string {
	expr, err := mathexpr.Parse(input)
	if err != nil {
		return ""
	}
	return expr.LaTeX()
}
