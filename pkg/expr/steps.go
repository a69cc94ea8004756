package expr

import (
	"fmt"
	"math"

	"github.com/calctrace/calctrace/pkg/format"
	"github.com/calctrace/calctrace/pkg/stdlib"
	"github.com/calctrace/calctrace/pkg/types"
)

// Step records one intermediate calculation: the subexpression it computed,
// a natural-language description of the operation, and the post-format
// result. Steps are immutable and produced in evaluation order.
type Step struct {
	Expression string `json:"expression"`
	Operation  string `json:"operation"`
	Result     string `json:"result"`
}

// EvaluateSteps evaluates a node with the same semantics as Evaluate and
// additionally returns the ordered trace of every arithmetic step.
func EvaluateSteps(node Node, scope Scope, policy format.Policy) (float64, []Step, error) {
	switch n := node.(type) {
	case *NumberNode:
		return n.Value, nil, nil

	case *VariableNode:
		v, err := evalVariable(n, scope)
		return v, nil, err

	case *BinaryNode:
		return stepsBinary(n, scope, policy)

	case *ParenNode:
		v, steps, err := EvaluateSteps(n.Inner, scope, policy)
		if err != nil {
			return 0, nil, err
		}
		// Grouping only surfaces as a step when something happened inside.
		if len(steps) == 0 {
			return v, nil, nil
		}
		steps = append(steps, Step{
			Expression: Print(n, Plain),
			Operation:  "Evaluate the expression in parentheses",
			Result:     formatNumber(v),
		})
		return v, steps, nil

	case *FuncNode:
		return stepsFunc(n, scope, policy)

	case *FactorialNode:
		return stepsFactorial(n, scope, policy)

	case *IteratorNode:
		return stepsIterator(n, scope, policy)

	default:
		return 0, nil, types.NewEvalError(fmt.Sprintf("unsupported expression node type %T", node), node.Pos())
	}
}

func stepsBinary(n *BinaryNode, scope Scope, policy format.Policy) (float64, []Step, error) {
	left, steps, err := EvaluateSteps(n.Left, scope, policy)
	if err != nil {
		return 0, nil, err
	}
	right, rightSteps, err := EvaluateSteps(n.Right, scope, policy)
	if err != nil {
		return 0, nil, err
	}
	steps = append(steps, rightSteps...)

	var result float64
	switch n.Op {
	case OpAdd:
		result = left + right
	case OpSub:
		result = left - right
	case OpMul:
		result = left * right
	case OpDiv:
		if right == 0 {
			return 0, nil, types.NewEvalError("division by zero", n.Span)
		}
		result = left / right
	case OpPow:
		result = power(left, right)
	default:
		return 0, nil, types.NewEvalError(fmt.Sprintf("unsupported binary operator %s", n.Op), n.Span)
	}
	result, err = policy.Apply(result)
	if err != nil {
		return 0, nil, err
	}

	steps = append(steps, Step{
		Expression: Print(n, Plain),
		Operation:  describeBinary(n.Op, left, right) + policy.Describe(),
		Result:     formatNumber(result),
	})
	return result, steps, nil
}

func describeBinary(op BinaryOp, left, right float64) string {
	l, r := formatNumber(left), formatNumber(right)
	switch op {
	case OpAdd:
		return fmt.Sprintf("Add %s and %s", l, r)
	case OpSub:
		return fmt.Sprintf("Subtract %s from %s", r, l)
	case OpMul:
		return fmt.Sprintf("Multiply %s by %s", l, r)
	case OpDiv:
		return fmt.Sprintf("Divide %s by %s", l, r)
	default:
		return fmt.Sprintf("Raise %s to the power of %s", l, r)
	}
}

func stepsFunc(n *FuncNode, scope Scope, policy format.Policy) (float64, []Step, error) {
	fn, ok := stdlib.Lookup(n.Name)
	if !ok {
		return 0, nil, types.NewEvalError(fmt.Sprintf("unknown function %q", n.Name), n.Span)
	}
	if len(n.Args) != 1 {
		return 0, nil, types.NewEvalError(fmt.Sprintf("function %q expects 1 argument, got %d", n.Name, len(n.Args)), n.Span)
	}
	arg, steps, err := EvaluateSteps(n.Args[0], scope, policy)
	if err != nil {
		return 0, nil, err
	}
	v, err := fn.Eval(arg)
	if err != nil {
		return 0, nil, types.NewEvalError(err.Error(), n.Span)
	}
	v, err = policy.Apply(v)
	if err != nil {
		return 0, nil, err
	}
	steps = append(steps, Step{
		Expression: Print(n, Plain),
		Operation:  fmt.Sprintf(fn.Describe, formatNumber(arg)) + policy.Describe(),
		Result:     formatNumber(v),
	})
	return v, steps, nil
}

func stepsFactorial(n *FactorialNode, scope Scope, policy format.Policy) (float64, []Step, error) {
	v, steps, err := EvaluateSteps(n.Inner, scope, policy)
	if err != nil {
		return 0, nil, err
	}
	if !isInteger(v) || v < -epsilon {
		return 0, nil, types.NewEvalError(fmt.Sprintf("factorial requires a non-negative integer, got %v", v), n.Span)
	}
	result := 1.0
	for i := 2.0; i <= math.Round(v); i++ {
		result *= i
	}
	result, err = policy.Apply(result)
	if err != nil {
		return 0, nil, err
	}
	steps = append(steps, Step{
		Expression: Print(n, Plain),
		Operation:  fmt.Sprintf("Take the factorial of %s", formatNumber(v)) + policy.Describe(),
		Result:     formatNumber(result),
	})
	return result, steps, nil
}

func stepsIterator(n *IteratorNode, scope Scope, policy format.Policy) (float64, []Step, error) {
	scope = writableScope(scope)

	startV, steps, err := EvaluateSteps(n.Start, scope, policy)
	if err != nil {
		return 0, nil, err
	}
	endV, endSteps, err := EvaluateSteps(n.End, scope, policy)
	if err != nil {
		return 0, nil, err
	}
	steps = append(steps, endSteps...)
	if !isInteger(startV) {
		return 0, nil, types.NewEvalError(fmt.Sprintf("%s lower bound must be an integer, got %v", n.Kind, startV), n.Span)
	}
	if !isInteger(endV) {
		return 0, nil, types.NewEvalError(fmt.Sprintf("%s upper bound must be an integer, got %v", n.Kind, endV), n.Span)
	}
	lo, hi := int(math.Round(startV)), int(math.Round(endV))

	prev, had := scope.Variable(n.Variable)
	defer func() {
		if had {
			scope.SetVariable(n.Variable, prev)
		} else {
			scope.DeleteVariable(n.Variable)
		}
	}()

	expression := Print(n, Plain)
	acc := 0.0
	verb := "Add %s to the running sum for %s = %d"
	if n.Kind == IterProd {
		acc = 1.0
		verb = "Multiply the running product by %s for %s = %d"
	}
	for i := lo; i <= hi; i++ {
		scope.SetVariable(n.Variable, float64(i))
		body, bodySteps, err := EvaluateSteps(n.Body, scope, policy)
		if err != nil {
			return 0, nil, err
		}
		steps = append(steps, bodySteps...)
		if n.Kind == IterProd {
			acc *= body
		} else {
			acc += body
		}
		acc, err = policy.Apply(acc)
		if err != nil {
			return 0, nil, err
		}
		steps = append(steps, Step{
			Expression: expression,
			Operation:  fmt.Sprintf(verb, formatNumber(body), n.Variable, i) + policy.Describe(),
			Result:     formatNumber(acc),
		})
	}
	return acc, steps, nil
}
