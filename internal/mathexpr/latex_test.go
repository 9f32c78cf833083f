package mathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaTeX(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "identifier", input: "x", expected: `x`},
		{name: "greek constant", input: "pi", expected: `\pi`},
		{name: "greek variable", input: "theta", expected: `\theta`},
		{name: "multi letter symbol", input: "foo", expected: `\mathrm{foo}`},
		{name: "integer", input: "42", expected: `42`},
		{name: "implicit product", input: "3x*sin(x)", expected: `3 x \sin\left(x\right)`},
		{name: "numeric product uses cdot", input: "2*3", expected: `2 \cdot 3`},
		{name: "symbol product", input: "x*y", expected: `x y`},
		{name: "power", input: "x^2", expected: `x^{2}`},
		{name: "power of sum", input: "(x+1)^2", expected: `\left(x + 1\right)^{2}`},
		{name: "negated power", input: "-x^2", expected: `-x^{2}`},
		{name: "fraction", input: "(x+1)/2", expected: `\frac{x + 1}{2}`},
		{name: "sqrt", input: "sqrt(x)", expected: `\sqrt{x}`},
		{name: "abs", input: "abs(x-1)", expected: `\left|x - 1\right|`},
		{name: "exp", input: "exp(x)", expected: `e^{x}`},
		{name: "log", input: "log(x)", expected: `\log\left(x\right)`},
		{name: "arc function", input: "asin(x)", expected: `\arcsin\left(x\right)`},
		{name: "unknown function", input: "foo(x)", expected: `\operatorname{foo}\left(x\right)`},
		{name: "product of sums", input: "(x+1)(x-2)", expected: `\left(x + 1\right) \left(x - 2\right)`},
		{name: "difference of sums", input: "x-(y+1)", expected: `x - \left(y + 1\right)`},
		{name: "nested calls", input: "sin(cos(x))", expected: `\sin\left(\cos\left(x\right)\right)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr.LaTeX())
		})
	}
}
