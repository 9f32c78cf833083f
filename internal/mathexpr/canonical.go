package mathexpr

import (
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
)

// canonicalFuncs maps accepted function names onto the names the render
// pipeline resolves.
var canonicalFuncs = map[string]string{
	"abs":  "Abs",
	"ceil": "ceiling",
	"min":  "Min",
	"max":  "Max",
}

// Canonical renders the expression in explicit form: every product spelled
// with "*", exponentiation as "**", no implicit adjacency left. This is the
// form handed to the render pipeline.
func (e *Expr) Canonical() string {
	return canonicalNode(e.node)
}

func canonicalNode(n ast.Node) string {
	switch node := n.(type) {
	case *ast.IntegerNode:
		return strconv.Itoa(node.Value)
	case *ast.FloatNode:
		return strconv.FormatFloat(node.Value, 'g', -1, 64)
	case *ast.IdentifierNode:
		return node.Value
	case *ast.UnaryNode:
		operand := canonicalNode(node.Node)
		if isBinary(node.Node) {
			operand = "(" + operand + ")"
		}
		if node.Operator == "+" {
			return operand
		}
		return "-" + operand
	case *ast.BinaryNode:
		return canonicalBinary(node)
	case *ast.CallNode:
		name := ""
		if ident, ok := node.Callee.(*ast.IdentifierNode); ok {
			name = ident.Value
		}
		return canonicalCall(name, node.Arguments)
	case *ast.BuiltinNode:
		return canonicalCall(node.Name, node.Arguments)
	}
	return ""
}

func canonicalBinary(node *ast.BinaryNode) string {
	left := canonicalNode(node.Left)
	right := canonicalNode(node.Right)

	switch node.Operator {
	case "+":
		return left + "+" + right
	case "-":
		if isAddSub(node.Right) {
			right = "(" + right + ")"
		}
		return left + "-" + right
	case "*":
		return canonicalLooser(node.Left, left) + "*" + canonicalLooser(node.Right, right)
	case "/":
		if isAddSub(node.Left) || isUnary(node.Left) {
			left = "(" + left + ")"
		}
		if isBinary(node.Right) || isUnary(node.Right) {
			right = "(" + right + ")"
		}
		return left + "/" + right
	case "%":
		if isAddSub(node.Left) || isUnary(node.Left) {
			left = "(" + left + ")"
		}
		if isBinary(node.Right) || isUnary(node.Right) {
			right = "(" + right + ")"
		}
		return left + "%" + right
	case "^", "**":
		if isBinary(node.Left) || isUnary(node.Left) {
			left = "(" + left + ")"
		}
		if isBinary(node.Right) {
			right = "(" + right + ")"
		}
		return left + "**" + right
	}
	return ""
}

// canonicalLooser parenthesizes product operands whose operator binds looser
// than, or differently from, multiplication.
func canonicalLooser(n ast.Node, rendered string) string {
	if isUnary(n) {
		return "(" + rendered + ")"
	}
	if bin, ok := n.(*ast.BinaryNode); ok {
		switch bin.Operator {
		case "+", "-", "%":
			return "(" + rendered + ")"
		}
	}
	return rendered
}

func canonicalCall(name string, args []ast.Node) string {
	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = canonicalNode(arg)
	}
	if mapped, ok := canonicalFuncs[name]; ok {
		name = mapped
	}
	return name + "(" + strings.Join(rendered, ", ") + ")"
}
