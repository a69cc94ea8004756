// Package types defines the source positions and error kinds shared by the
// expression engine packages.
package types

import "fmt"

// Position is a source span attached to tokens and AST nodes. Offsets are
// byte positions into the input; Line and Col are 1-based and refer to the
// start of the span.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Line  int `json:"line"`
	Col   int `json:"col"`
}

// String returns a human-readable "line:col" location.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Union spans from the start of p to the end of other, keeping p's line and
// column. Used to build a composite node's span from its children.
func (p Position) Union(other Position) Position {
	out := p
	if other.End > out.End {
		out.End = other.End
	}
	if other.Start < out.Start {
		out.Start = other.Start
	}
	return out
}

// At returns a copy of p with line and column taken from loc. Composite
// nodes report the line/column of their operator token.
func (p Position) At(loc Position) Position {
	p.Line = loc.Line
	p.Col = loc.Col
	return p
}
