package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Notation selects the printer output style.
type Notation int

const (
	Plain Notation = iota
	LaTeX
)

// Precedence tiers for minimal parenthesization. Atoms (numbers, variables,
// grouped and postfix forms) sit above every operator.
const (
	precAdditive = iota + 1
	precMultiplicative
	precExponent
	precAtom
)

// Print renders a node as plain infix or LaTeX text. The output reparses to
// a value-equivalent tree. Iterators always render in their LaTeX form: the
// plain grammar has no other notation for them.
func Print(node Node, notation Notation) string {
	switch n := node.(type) {
	case *NumberNode:
		return formatNumber(n.Value)

	case *VariableNode:
		if notation == LaTeX && (n.Name == "pi" || n.Name == "phi") {
			return "\\" + n.Name
		}
		return n.Name

	case *BinaryNode:
		return printBinary(n, notation)

	case *ParenNode:
		return "(" + Print(n.Inner, notation) + ")"

	case *FuncNode:
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			args[i] = Print(arg, notation)
		}
		if notation == LaTeX {
			return fmt.Sprintf("\\%s{%s}", n.Name, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))

	case *FactorialNode:
		inner := Print(n.Inner, notation)
		if precedenceOf(n.Inner) < precAtom {
			inner = "(" + inner + ")"
		}
		return inner + "!"

	case *IteratorNode:
		return fmt.Sprintf("\\%s_{%s=%s}^{%s}{%s}",
			n.Kind, n.Variable,
			Print(n.Start, notation), Print(n.End, notation), Print(n.Body, notation))

	default:
		return ""
	}
}

func printBinary(n *BinaryNode, notation Notation) string {
	if notation == LaTeX && n.Op == OpDiv {
		// \frac braces both operands; no parentheses needed.
		return fmt.Sprintf("\\frac{%s}{%s}", Print(n.Left, notation), Print(n.Right, notation))
	}

	if n.Op == OpPow {
		base := Print(n.Left, notation)
		// An exponent base that is itself an exponent is always
		// parenthesized to avoid ambiguous right-associative chains.
		if precedenceOf(n.Left) < precExponent || isPow(n.Left) {
			base = "(" + base + ")"
		}
		if notation == LaTeX {
			return fmt.Sprintf("%s^{%s}", base, Print(n.Right, notation))
		}
		exp := Print(n.Right, notation)
		if precedenceOf(n.Right) < precExponent {
			exp = "(" + exp + ")"
		}
		return base + " ^ " + exp
	}

	op := n.Op
	right := n.Right
	// Addition of a negative literal renders as subtraction of its
	// absolute value.
	if op == OpAdd {
		if num, ok := right.(*NumberNode); ok && num.Value < 0 {
			op = OpSub
			right = &NumberNode{Value: -num.Value, Span: num.Span}
		}
	}

	prec := binaryPrecedence(op)
	left := Print(n.Left, notation)
	if precedenceOf(n.Left) < prec {
		left = "(" + left + ")"
	}
	rightText := Print(right, notation)
	// The right operand of a non-commutative operator needs parentheses at
	// equal precedence as well: a - (b + c), a / (b * c).
	rightPrec := precedenceOf(right)
	if rightPrec < prec || (rightPrec == prec && (op == OpSub || op == OpDiv)) {
		rightText = "(" + rightText + ")"
	}

	symbol := op.String()
	if notation == LaTeX && op == OpMul {
		symbol = "\\cdot"
	}
	return left + " " + symbol + " " + rightText
}

func binaryPrecedence(op BinaryOp) int {
	switch op {
	case OpAdd, OpSub:
		return precAdditive
	case OpMul, OpDiv:
		return precMultiplicative
	default:
		return precExponent
	}
}

func precedenceOf(node Node) int {
	switch n := node.(type) {
	case *BinaryNode:
		return binaryPrecedence(n.Op)
	case *NumberNode:
		// A negative literal binds like an additive expression when
		// placed in context.
		if n.Value < 0 {
			return precAdditive
		}
		return precAtom
	default:
		return precAtom
	}
}

func isPow(node Node) bool {
	b, ok := node.(*BinaryNode)
	return ok && b.Op == OpPow
}

// FormatResult renders a numeric value the way the calculator displays it:
// no exponent notation, no trailing zeros. Step result text and printed
// number literals use the same rendering.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNumber(v float64) string {
	return FormatResult(v)
}
