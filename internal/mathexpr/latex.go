package mathexpr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/expr-lang/expr/ast"
)

// LaTeX renders the expression for typesetting.
func (e *Expr) LaTeX() string {
	return latexNode(e.node)
}

// greekNames render as their LaTeX command instead of \mathrm.
var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"zeta": true, "eta": true, "theta": true, "kappa": true, "lambda": true,
	"mu": true, "nu": true, "xi": true, "pi": true, "rho": true, "sigma": true,
	"tau": true, "phi": true, "chi": true, "psi": true, "omega": true,
}

// latexFuncs have a native LaTeX operator command.
var latexFuncs = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`, "cot": `\cot`,
	"sec": `\sec`, "csc": `\csc`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`, "coth": `\coth`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"log": `\log`, "ln": `\ln`, "min": `\min`, "max": `\max`,
	"gamma": `\Gamma`,
}

func latexNode(n ast.Node) string {
	switch node := n.(type) {
	case *ast.IntegerNode:
		return strconv.Itoa(node.Value)
	case *ast.FloatNode:
		return strconv.FormatFloat(node.Value, 'g', -1, 64)
	case *ast.IdentifierNode:
		return latexIdent(node.Value)
	case *ast.UnaryNode:
		operand := latexNode(node.Node)
		if isAddSub(node.Node) {
			operand = `\left(` + operand + `\right)`
		}
		if node.Operator == "+" {
			return operand
		}
		return "-" + operand
	case *ast.BinaryNode:
		return latexBinary(node)
	case *ast.CallNode:
		name := ""
		if ident, ok := node.Callee.(*ast.IdentifierNode); ok {
			name = ident.Value
		}
		return latexCall(name, node.Arguments)
	case *ast.BuiltinNode:
		return latexCall(node.Name, node.Arguments)
	}
	return ""
}

func latexBinary(node *ast.BinaryNode) string {
	switch node.Operator {
	case "+":
		return latexNode(node.Left) + " + " + latexNode(node.Right)
	case "-":
		right := latexNode(node.Right)
		if isAddSub(node.Right) || isUnary(node.Right) {
			right = `\left(` + right + `\right)`
		}
		return latexNode(node.Left) + " - " + right
	case "*":
		left := latexFactor(node.Left)
		right := latexFactor(node.Right)
		sep := " "
		if startsWithDigit(right) {
			sep = ` \cdot `
		}
		return left + sep + right
	case "/":
		return `\frac{` + latexNode(node.Left) + `}{` + latexNode(node.Right) + `}`
	case "%":
		return latexFactor(node.Left) + ` \bmod ` + latexFactor(node.Right)
	case "^", "**":
		base := latexNode(node.Left)
		if isBinary(node.Left) || isUnary(node.Left) {
			base = `\left(` + base + `\right)`
		}
		return base + "^{" + latexNode(node.Right) + "}"
	}
	return ""
}

// latexFactor parenthesizes operands that bind looser than a product.
func latexFactor(n ast.Node) string {
	s := latexNode(n)
	if isAddSub(n) || isUnary(n) {
		return `\left(` + s + `\right)`
	}
	return s
}

func latexCall(name string, args []ast.Node) string {
	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = latexNode(arg)
	}
	argList := strings.Join(rendered, ", ")

	switch name {
	case "sqrt":
		return `\sqrt{` + argList + `}`
	case "abs":
		return `\left|` + argList + `\right|`
	case "exp":
		return `e^{` + argList + `}`
	case "ceil":
		return `\lceil ` + argList + ` \rceil`
	case "floor":
		return `\lfloor ` + argList + ` \rfloor`
	}
	if cmd, ok := latexFuncs[name]; ok {
		return cmd + `\left(` + argList + `\right)`
	}
	return `\operatorname{` + name + `}\left(` + argList + `\right)`
}

func latexIdent(name string) string {
	if greekNames[name] {
		return `\` + name
	}
	if utf8.RuneCountInString(name) == 1 {
		return name
	}
	return `\mathrm{` + name + `}`
}

func isAddSub(n ast.Node) bool {
	bin, ok := n.(*ast.BinaryNode)
	return ok && (bin.Operator == "+" || bin.Operator == "-")
}

func isBinary(n ast.Node) bool {
	_, ok := n.(*ast.BinaryNode)
	return ok
}

func isUnary(n ast.Node) bool {
	_, ok := n.(*ast.UnaryNode)
	return ok
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}
