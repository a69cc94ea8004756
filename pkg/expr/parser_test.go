package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/calctrace/calctrace/pkg/types"
)

func mustParse(t *testing.T, input string) Node {
	t.Helper()
	node, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return node
}

func TestParsePrecedence(t *testing.T) {
	// 2 + 3 * 4 parses as 2 + (3 * 4).
	root, ok := mustParse(t, "2 + 3 * 4").(*BinaryNode)
	if !ok || root.Op != OpAdd {
		t.Fatalf("root = %#v, want addition", root)
	}
	right, ok := root.Right.(*BinaryNode)
	if !ok || right.Op != OpMul {
		t.Fatalf("right = %#v, want multiplication", root.Right)
	}
}

func TestParseExponentRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 parses as 2 ^ (3 ^ 2).
	root, ok := mustParse(t, "2 ^ 3 ^ 2").(*BinaryNode)
	if !ok || root.Op != OpPow {
		t.Fatalf("root = %#v, want exponent", root)
	}
	if _, ok := root.Left.(*NumberNode); !ok {
		t.Errorf("base = %#v, want literal 2", root.Left)
	}
	right, ok := root.Right.(*BinaryNode)
	if !ok || right.Op != OpPow {
		t.Fatalf("exponent = %#v, want nested exponent", root.Right)
	}
}

func TestParseUnaryMinusDesugars(t *testing.T) {
	root, ok := mustParse(t, "-5").(*BinaryNode)
	if !ok || root.Op != OpSub {
		t.Fatalf("root = %#v, want subtraction from zero", root)
	}
	zero, ok := root.Left.(*NumberNode)
	if !ok || zero.Value != 0 {
		t.Errorf("left = %#v, want literal 0", root.Left)
	}
}

func TestParseNodeShapes(t *testing.T) {
	tests := []struct {
		input string
		check func(Node) bool
	}{
		{"(1+2)", func(n Node) bool { _, ok := n.(*ParenNode); return ok }},
		{"sin(0)", func(n Node) bool { f, ok := n.(*FuncNode); return ok && f.Name == "sin" && len(f.Args) == 1 }},
		{"5!", func(n Node) bool { _, ok := n.(*FactorialNode); return ok }},
		{"x", func(n Node) bool { v, ok := n.(*VariableNode); return ok && v.Name == "x" }},
		{`\frac{1}{2}`, func(n Node) bool { b, ok := n.(*BinaryNode); return ok && b.Op == OpDiv }},
		{`\sqrt{4}`, func(n Node) bool { f, ok := n.(*FuncNode); return ok && f.Name == "sqrt" }},
		{`\sqrt[3]{27}`, func(n Node) bool { b, ok := n.(*BinaryNode); return ok && b.Op == OpPow }},
		{`\sin{0}`, func(n Node) bool { f, ok := n.(*FuncNode); return ok && f.Name == "sin" }},
		{`\pi`, func(n Node) bool { v, ok := n.(*VariableNode); return ok && v.Name == "pi" }},
		{`2 \cdot 3`, func(n Node) bool { b, ok := n.(*BinaryNode); return ok && b.Op == OpMul }},
		{`2 \times 3`, func(n Node) bool { b, ok := n.(*BinaryNode); return ok && b.Op == OpMul }},
		{"2^{10}", func(n Node) bool { b, ok := n.(*BinaryNode); return ok && b.Op == OpPow }},
		{"(-1)!", func(n Node) bool { _, ok := n.(*FactorialNode); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := mustParse(t, tt.input)
			if !tt.check(node) {
				t.Errorf("unexpected shape %#v", node)
			}
		})
	}
}

func TestParseIterator(t *testing.T) {
	node := mustParse(t, `\sum_{i=1}^{5}{i * 2}`)
	it, ok := node.(*IteratorNode)
	if !ok {
		t.Fatalf("got %#v, want iterator", node)
	}
	if it.Kind != IterSum {
		t.Errorf("kind = %v, want sum", it.Kind)
	}
	if it.Variable != "i" {
		t.Errorf("variable = %q, want i", it.Variable)
	}
	if _, ok := it.Body.(*BinaryNode); !ok {
		t.Errorf("body = %#v, want binary node", it.Body)
	}

	node = mustParse(t, `\prod_{k=2}^{4}{k}`)
	it, ok = node.(*IteratorNode)
	if !ok || it.Kind != IterProd {
		t.Fatalf("got %#v, want product iterator", node)
	}
}

func TestParseNestedCommands(t *testing.T) {
	// Command arguments recurse through the full expression grammar, which
	// dispatches commands again.
	node := mustParse(t, `\frac{\sqrt{16}}{\sum_{i=1}^{2}{i}}`)
	div, ok := node.(*BinaryNode)
	if !ok || div.Op != OpDiv {
		t.Fatalf("root = %#v, want division", node)
	}
	if _, ok := div.Left.(*FuncNode); !ok {
		t.Errorf("numerator = %#v, want function call", div.Left)
	}
	if _, ok := div.Right.(*IteratorNode); !ok {
		t.Errorf("denominator = %#v, want iterator", div.Right)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantMsg string
	}{
		{"(2+3", "to close parenthesis"},
		{"2+", "unexpected end of input"},
		{"2 3", "unexpected"},
		{"*2", "unexpected"},
		{`\frac{1}`, "to open group"},
		{`\frac{1`, "to close group"},
		{`\unknown{2}`, "unknown LaTeX command"},
		{`\sum{i}`, "after \\sum"},
		{`\sum_{i=1}{5}`, "after \\sum lower bound"},
		{`\sum_{1=1}^{5}{1}`, "as the iteration variable"},
		{"2 # 3", "character"},
		{"sin(1,", "unexpected end of input"},
		{"", "unexpected end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected parse error")
			}
			var parseErr *types.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type %T, want *types.ParseError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("1 + @")
	var parseErr *types.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if parseErr.Pos.Line != 1 || parseErr.Pos.Col != 5 {
		t.Errorf("error at %s, want 1:5", parseErr.Pos)
	}
}

func TestParseSpans(t *testing.T) {
	root := mustParse(t, "1 + 23").(*BinaryNode)
	if root.Span.Start != 0 || root.Span.End != 6 {
		t.Errorf("span [%d,%d), want [0,6)", root.Span.Start, root.Span.End)
	}
	// Line and column come from the operator token.
	if root.Span.Col != 3 {
		t.Errorf("col = %d, want 3", root.Span.Col)
	}
}
