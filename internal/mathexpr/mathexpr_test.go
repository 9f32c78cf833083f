package mathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertImplicitMul(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "number before identifier", input: "3x", expected: "3*x"},
		{name: "number before function", input: "2sin(x)", expected: "2*sin(x)"},
		{name: "number before paren", input: "2(x+1)", expected: "2*(x+1)"},
		{name: "identifier before paren", input: "x(x+1)", expected: "x*(x+1)"},
		{name: "adjacent parens", input: "(x+1)(x-1)", expected: "(x+1)*(x-1)"},
		{name: "close paren before identifier", input: "sin(x)cos(x)", expected: "sin(x)*cos(x)"},
		{name: "function call untouched", input: "sin(x)", expected: "sin(x)"},
		{name: "spaced function call untouched", input: "sin (x)", expected: "sin (x)"},
		{name: "explicit product untouched", input: "3*x", expected: "3*x"},
		{name: "decimal coefficient", input: "2.5x", expected: "2.5*x"},
		{name: "adjacency across space", input: "3 x", expected: "3 *x"},
		{name: "trailing digits stay one symbol", input: "x2", expected: "x2"},
		{name: "letters stay one symbol", input: "xy", expected: "xy"},
		{name: "number before constant", input: "2pi", expected: "2*pi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, insertImplicitMul(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "plain identifier", input: "x"},
		{name: "implicit product", input: "3x*sin(x)"},
		{name: "caret power", input: "x^2"},
		{name: "double star power", input: "x**3"},
		{name: "quotient of sums", input: "(x+1)/(x-1)"},
		{name: "nested calls", input: "sin(cos(x))"},
		{name: "builtin call", input: "abs(x-1)"},
		{name: "unary minus", input: "-x^2"},
		{name: "constants", input: "2pi"},
		{name: "whitespace around", input: "  sin(x)  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.NotEmpty(t, expr.Canonical())
			assert.NotEmpty(t, expr.LaTeX())
		})
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "dangling operator", input: "3x*"},
		{name: "unbalanced paren", input: "sin(x"},
		{name: "string literal", input: `"hello"`},
		{name: "boolean literal", input: "true"},
		{name: "comparison", input: "x > 2"},
		{name: "logical operator", input: "x and y"},
		{name: "array literal", input: "[1, 2]"},
		{name: "conditional", input: "x ? 1 : 2"},
		{name: "member access", input: "a.b"},
		{name: "non-math builtin", input: "len(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "implicit product", input: "3x*sin(x)", expected: "3*x*sin(x)"},
		{name: "implicit function coefficient", input: "2sin(x)", expected: "2*sin(x)"},
		{name: "caret becomes double star", input: "x^2", expected: "x**2"},
		{name: "double star preserved", input: "x**3", expected: "x**3"},
		{name: "sum quotient keeps parens", input: "(x+1)/2", expected: "(x+1)/2"},
		{name: "product divisor keeps parens", input: "x/(2y)", expected: "x/(2*y)"},
		{name: "negative coefficient", input: "-3x", expected: "(-3)*x"},
		{name: "abs maps to Abs", input: "abs(x)", expected: "Abs(x)"},
		{name: "ceil maps to ceiling", input: "ceil(x)", expected: "ceiling(x)"},
		{name: "nested calls", input: "sin(cos(x))", expected: "sin(cos(x))"},
		{name: "negated power", input: "exp(-x^2)", expected: "exp(-(x**2))"},
		{name: "constant product", input: "2pi", expected: "2*pi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr.Canonical())
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("x"))
	assert.True(t, IsIdentifier("x1"))
	assert.True(t, IsIdentifier("_t"))
	assert.True(t, IsIdentifier("theta"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("2x"))
	assert.False(t, IsIdentifier("x y"))
	assert.False(t, IsIdentifier("x-y"))
}
