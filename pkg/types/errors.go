package types

import "fmt"

// ParseError reports malformed input: an unexpected or missing token,
// an unknown LaTeX command, or unbalanced grouping. Parsing never partially
// succeeds; a ParseError always carries the position of the offending token.
type ParseError struct {
	Message string
	Pos     Position
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

// NewParseError creates a ParseError at the given position.
func NewParseError(msg string, pos Position) *ParseError {
	return &ParseError{Message: msg, Pos: pos}
}

// EvalError reports a well-formed but semantically invalid expression:
// an undefined variable, division by zero, a non-integer factorial or
// iterator bound, a function domain violation, or a wrong argument count.
// Evaluation never substitutes a sentinel value; the error propagates.
type EvalError struct {
	Message string
	Pos     Position
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation error at %s: %s", e.Pos, e.Message)
}

// NewEvalError creates an EvalError at the given position.
func NewEvalError(msg string, pos Position) *EvalError {
	return &EvalError{Message: msg, Pos: pos}
}
