// Package calc provides the high-level calculator facade: it wires the
// parser, evaluators, registry, and format policy together and owns the
// mutable variable table shared across evaluations.
package calc

import (
	"strings"

	"github.com/calctrace/calctrace/pkg/expr"
	"github.com/calctrace/calctrace/pkg/format"
)

// Calculator evaluates expressions against a persistent variable table under
// a configurable format policy. It performs no locking: concurrent use of
// one Calculator must be serialized by the caller.
type Calculator struct {
	vars   expr.VarMap
	policy format.Policy
}

// New creates a calculator with an empty variable table and the identity
// format policy.
func New() *Calculator {
	return &Calculator{vars: expr.VarMap{}, policy: format.None()}
}

// SetPolicy replaces the format policy used by subsequent evaluations.
func (c *Calculator) SetPolicy(p format.Policy) { c.policy = p }

// Policy returns the current format policy.
func (c *Calculator) Policy() format.Policy { return c.policy }

// SetVariable assigns a variable. Names are case-folded like the tokenizer
// folds identifiers.
func (c *Calculator) SetVariable(name string, value float64) {
	c.vars.SetVariable(strings.ToLower(name), value)
}

// Variable returns a variable's value, if assigned.
func (c *Calculator) Variable(name string) (float64, bool) {
	return c.vars.Variable(strings.ToLower(name))
}

// DeleteVariable removes a variable.
func (c *Calculator) DeleteVariable(name string) {
	c.vars.DeleteVariable(strings.ToLower(name))
}

// Variables returns a copy of the variable table.
func (c *Calculator) Variables() map[string]float64 {
	out := make(map[string]float64, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// Parse parses an expression without evaluating it.
func (c *Calculator) Parse(text string) (expr.Node, error) {
	return expr.Parse(text)
}

// Evaluate parses and evaluates an expression, returning the formatted
// numeric result.
func (c *Calculator) Evaluate(text string) (float64, error) {
	node, err := expr.Parse(text)
	if err != nil {
		return 0, err
	}
	return expr.Evaluate(node, c.vars, c.policy)
}

// EvaluateSteps parses and evaluates an expression, returning the result
// together with the ordered trace of intermediate calculation steps.
func (c *Calculator) EvaluateSteps(text string) (float64, []expr.Step, error) {
	node, err := expr.Parse(text)
	if err != nil {
		return 0, nil, err
	}
	return expr.EvaluateSteps(node, c.vars, c.policy)
}

// Validate reports whether the text parses. It never evaluates.
func (c *Calculator) Validate(text string) bool {
	_, err := expr.Parse(text)
	return err == nil
}

// FormatExpression parses the text and re-renders it in the requested
// notation.
func (c *Calculator) FormatExpression(text string, notation expr.Notation) (string, error) {
	node, err := expr.Parse(text)
	if err != nil {
		return "", err
	}
	return expr.Print(node, notation), nil
}
