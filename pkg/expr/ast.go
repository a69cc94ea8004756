package expr

import "github.com/calctrace/calctrace/pkg/types"

// Node is the interface for all expression AST nodes. Trees are immutable
// after parsing; each node exclusively owns its children.
type Node interface {
	Pos() types.Position
	nodeType() string
}

// BinaryOp identifies a binary arithmetic operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

// String returns the operator symbol.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

// NumberNode represents a numeric literal.
type NumberNode struct {
	Value float64
	Span  types.Position
}

func (n *NumberNode) Pos() types.Position { return n.Span }
func (n *NumberNode) nodeType() string    { return "Number" }

// VariableNode represents a variable or constant reference.
type VariableNode struct {
	Name string
	Span types.Position
}

func (n *VariableNode) Pos() types.Position { return n.Span }
func (n *VariableNode) nodeType() string    { return "Variable" }

// BinaryNode represents a binary arithmetic operation.
type BinaryNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
	Span  types.Position
}

func (n *BinaryNode) Pos() types.Position { return n.Span }
func (n *BinaryNode) nodeType() string    { return "Binary" }

// ParenNode represents an explicitly parenthesized subexpression.
type ParenNode struct {
	Inner Node
	Span  types.Position
}

func (n *ParenNode) Pos() types.Position { return n.Span }
func (n *ParenNode) nodeType() string    { return "Paren" }

// FuncNode represents a named function applied to ordered arguments.
type FuncNode struct {
	Name string
	Args []Node
	Span types.Position
}

func (n *FuncNode) Pos() types.Position { return n.Span }
func (n *FuncNode) nodeType() string    { return "Func" }

// FactorialNode represents a postfix factorial.
type FactorialNode struct {
	Inner Node
	Span  types.Position
}

func (n *FactorialNode) Pos() types.Position { return n.Span }
func (n *FactorialNode) nodeType() string    { return "Factorial" }

// IteratorKind distinguishes summation from product.
type IteratorKind int

const (
	IterSum IteratorKind = iota
	IterProd
)

// String returns the LaTeX command name for the kind.
func (k IteratorKind) String() string {
	if k == IterProd {
		return "prod"
	}
	return "sum"
}

// IteratorNode represents a summation or product over an inclusive integer
// range, binding Variable for the duration of each iteration.
type IteratorNode struct {
	Kind     IteratorKind
	Variable string
	Start    Node
	End      Node
	Body     Node
	Span     types.Position
}

func (n *IteratorNode) Pos() types.Position { return n.Span }
func (n *IteratorNode) nodeType() string    { return "Iterator" }

// spanAcross unions the spans of the outermost children, taking line and
// column from the operator token.
func spanAcross(left, right, at types.Position) types.Position {
	return left.Union(right).At(at)
}
