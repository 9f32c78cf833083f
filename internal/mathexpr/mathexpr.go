// Package mathexpr parses user-typed mathematical expressions into validated
// syntax trees and renders them as LaTeX or as canonical text for the render
// pipeline.
//
// Parsing is purely syntactic. Implicit multiplication is inserted before the
// expression reaches the parser, so "3x*sin(x)" and "3*x*sin(x)" produce the
// same tree. Symbols are not resolved and nothing is evaluated here; an
// integrand that parses can still fail later in the pipeline.
package mathexpr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
)

// ErrEmpty is returned when the input is empty or only whitespace.
var ErrEmpty = errors.New("empty expression")

// Expr is a parsed, validated mathematical expression.
type Expr struct {
	node ast.Node
	src  string
}

// knownFuncs are names treated as function applications rather than implicit
// multiplication when followed by an opening parenthesis.
var knownFuncs = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"sinh": true, "cosh": true, "tanh": true, "coth": true,
	"asin": true, "acos": true, "atan": true,
	"asinh": true, "acosh": true, "atanh": true,
	"exp": true, "log": true, "ln": true, "sqrt": true,
	"abs": true, "ceil": true, "floor": true, "round": true,
	"min": true, "max": true, "gamma": true,
}

// Parse parses a single mathematical expression.
func Parse(input string) (*Expr, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmpty
	}

	src := insertImplicitMul(trimmed)
	tree, err := parser.Parse(src)
	if err != nil {
		var ferr *file.Error
		if errors.As(err, &ferr) {
			return nil, fmt.Errorf("invalid expression %q: %s", trimmed, ferr.Message)
		}
		return nil, fmt.Errorf("invalid expression %q: %w", trimmed, err)
	}

	if err := validate(tree.Node); err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", trimmed, err)
	}

	return &Expr{node: tree.Node, src: src}, nil
}

// IsIdentifier reports whether s is usable as an integration variable name.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

// insertImplicitMul rewrites adjacency into explicit multiplication: a number,
// identifier, or closing parenthesis followed by an identifier, number, or
// opening parenthesis gets a "*" between them. A known function name followed
// by "(" stays a call. Identifiers absorb trailing digits, so "x2" is one
// symbol while "2x" is a product.
func insertImplicitMul(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 8)

	runes := []rune(s)
	afterValue := false
	afterFunc := false

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			out.WriteRune(r)
			i++
		case r == '(':
			if afterValue && !afterFunc {
				out.WriteRune('*')
			}
			out.WriteRune(r)
			afterValue = false
			afterFunc = false
			i++
		case r == ')':
			out.WriteRune(r)
			afterValue = true
			afterFunc = false
			i++
		case unicode.IsDigit(r) || r == '.':
			if afterValue {
				out.WriteRune('*')
			}
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			out.WriteString(string(runes[start:i]))
			afterValue = true
			afterFunc = false
		case unicode.IsLetter(r) || r == '_':
			if afterValue {
				out.WriteRune('*')
			}
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			name := string(runes[start:i])
			out.WriteString(name)
			afterValue = true
			afterFunc = knownFuncs[name]
		default:
			out.WriteRune(r)
			afterValue = false
			afterFunc = false
			i++
		}
	}

	return out.String()
}

// builtinFuncs are parser builtins accepted as mathematical functions.
var builtinFuncs = map[string]bool{
	"abs": true, "ceil": true, "floor": true, "round": true,
	"min": true, "max": true,
}

// validate walks the tree and rejects every construct that is not part of a
// mathematical formula: strings, booleans, collections, comparisons,
// conditionals, member access.
func validate(n ast.Node) error {
	switch node := n.(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.IdentifierNode:
		return nil
	case *ast.UnaryNode:
		if node.Operator != "-" && node.Operator != "+" {
			return fmt.Errorf("unsupported operator %q", node.Operator)
		}
		return validate(node.Node)
	case *ast.BinaryNode:
		switch node.Operator {
		case "+", "-", "*", "/", "%", "^", "**":
		default:
			return fmt.Errorf("unsupported operator %q", node.Operator)
		}
		if err := validate(node.Left); err != nil {
			return err
		}
		return validate(node.Right)
	case *ast.CallNode:
		if _, ok := node.Callee.(*ast.IdentifierNode); !ok {
			return errors.New("unsupported function call")
		}
		for _, arg := range node.Arguments {
			if err := validate(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.BuiltinNode:
		if !builtinFuncs[node.Name] {
			return fmt.Errorf("unsupported function %q", node.Name)
		}
		for _, arg := range node.Arguments {
			if err := validate(arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported syntax %q", n.String())
	}
}
