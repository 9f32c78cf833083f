package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keithhb33/MathVis/pkg/types"
)

func TestPreviewLatex(t *testing.T) {
	svc := NewPreviewService()

	tests := []struct {
		name string
		req  types.PreviewRequest
		want types.PreviewResponse
	}{
		{
			name: "full request",
			req:  types.PreviewRequest{Integrand: "3x*sin(x)", Variable: "x", Lower: "0", Upper: "pi"},
			want: types.PreviewResponse{Expr: `3 x \sin\left(x\right)`, Lower: "0", Upper: `\pi`},
		},
		{
			name: "unparseable integrand keeps bounds",
			req:  types.PreviewRequest{Integrand: "3x*", Lower: "0", Upper: "1"},
			want: types.PreviewResponse{Expr: "", Lower: "0", Upper: "1"},
		},
		{
			name: "unparseable bound is dropped alone",
			req:  types.PreviewRequest{Integrand: "x^2", Lower: "((", Upper: "2"},
			want: types.PreviewResponse{Expr: "x^{2}", Lower: "", Upper: "2"},
		},
		{
			name: "empty request",
			req:  types.PreviewRequest{},
			want: types.PreviewResponse{},
		},
		{
			name: "whitespace only",
			req:  types.PreviewRequest{Integrand: "   ", Lower: " ", Upper: ""},
			want: types.PreviewResponse{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.Latex(&tc.req))
		})
	}
}
