package expr

import (
	"fmt"
	"math"

	"github.com/calctrace/calctrace/pkg/format"
	"github.com/calctrace/calctrace/pkg/stdlib"
	"github.com/calctrace/calctrace/pkg/types"
)

// epsilon governs every "effectively integer" check: factorial operands,
// iterator bounds, and integer exponents.
const epsilon = 1e-10

// Scope provides variable lookup and binding for expression evaluation.
// Constants shadow scope variables of the same name.
type Scope interface {
	Variable(name string) (float64, bool)
	SetVariable(name string, value float64)
	DeleteVariable(name string)
}

// VarMap is a map-backed Scope.
type VarMap map[string]float64

// Variable implements Scope.
func (m VarMap) Variable(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// SetVariable implements Scope.
func (m VarMap) SetVariable(name string, value float64) { m[name] = value }

// DeleteVariable implements Scope.
func (m VarMap) DeleteVariable(name string) { delete(m, name) }

// writableScope returns a scope that accepts bindings. Both a nil interface
// and an interface holding a nil VarMap are replaced; the nil map would
// panic on SetVariable.
func writableScope(scope Scope) Scope {
	if m, ok := scope.(VarMap); scope == nil || (ok && m == nil) {
		return VarMap{}
	}
	return scope
}

// Evaluate evaluates an expression node within the given scope, applying the
// format policy after every arithmetic primitive. Semantic failures are
// reported as *types.EvalError at the offending node's position.
func Evaluate(node Node, scope Scope, policy format.Policy) (float64, error) {
	switch n := node.(type) {
	case *NumberNode:
		return n.Value, nil
	case *VariableNode:
		return evalVariable(n, scope)
	case *BinaryNode:
		return evalBinary(n, scope, policy)
	case *ParenNode:
		// No extra formatting around grouping.
		return Evaluate(n.Inner, scope, policy)
	case *FuncNode:
		return evalFunc(n, scope, policy)
	case *FactorialNode:
		return evalFactorial(n, scope, policy)
	case *IteratorNode:
		return evalIterator(n, scope, policy)
	default:
		return 0, types.NewEvalError(fmt.Sprintf("unsupported expression node type %T", node), node.Pos())
	}
}

func evalVariable(n *VariableNode, scope Scope) (float64, error) {
	if v, ok := stdlib.Constant(n.Name); ok {
		return v, nil
	}
	if scope != nil {
		if v, ok := scope.Variable(n.Name); ok {
			return v, nil
		}
	}
	return 0, types.NewEvalError(fmt.Sprintf("undefined variable %q", n.Name), n.Span)
}

func evalBinary(n *BinaryNode, scope Scope, policy format.Policy) (float64, error) {
	left, err := Evaluate(n.Left, scope, policy)
	if err != nil {
		return 0, err
	}
	right, err := Evaluate(n.Right, scope, policy)
	if err != nil {
		return 0, err
	}

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
			return 0, types.NewEvalError("division by zero", n.Span)
		}
		result = left / right
	case OpPow:
		result = power(left, right)
	default:
		return 0, types.NewEvalError(fmt.Sprintf("unsupported binary operator %s", n.Op), n.Span)
	}
	return policy.Apply(result)
}

// power computes left^right, routing effectively-integer exponents through
// iterated multiplication to avoid drift from the general real algorithm.
func power(base, exp float64) float64 {
	if exp == 0 {
		return 1
	}
	if base == 0 {
		return 0
	}
	if isInteger(exp) {
		return intPow(base, int(math.Round(exp)))
	}
	return math.Pow(base, exp)
}

func intPow(base float64, n int) float64 {
	if n < 0 {
		return 1 / intPow(base, -n)
	}
	result := 1.0
	for i := 0; i < n; i++ {
		result *= base
	}
	return result
}

func isInteger(v float64) bool {
	return math.Abs(v-math.Round(v)) < epsilon
}

func evalFunc(n *FuncNode, scope Scope, policy format.Policy) (float64, error) {
	fn, ok := stdlib.Lookup(n.Name)
	if !ok {
		return 0, types.NewEvalError(fmt.Sprintf("unknown function %q", n.Name), n.Span)
	}
	if len(n.Args) != 1 {
		return 0, types.NewEvalError(fmt.Sprintf("function %q expects 1 argument, got %d", n.Name, len(n.Args)), n.Span)
	}
	arg, err := Evaluate(n.Args[0], scope, policy)
	if err != nil {
		return 0, err
	}
	v, err := fn.Eval(arg)
	if err != nil {
		return 0, types.NewEvalError(err.Error(), n.Span)
	}
	return policy.Apply(v)
}

func evalFactorial(n *FactorialNode, scope Scope, policy format.Policy) (float64, error) {
	v, err := Evaluate(n.Inner, scope, policy)
	if err != nil {
		return 0, err
	}
	if !isInteger(v) || v < -epsilon {
		return 0, types.NewEvalError(fmt.Sprintf("factorial requires a non-negative integer, got %v", v), n.Span)
	}
	result := 1.0
	for i := 2.0; i <= math.Round(v); i++ {
		result *= i
	}
	return policy.Apply(result)
}

func evalIterator(n *IteratorNode, scope Scope, policy format.Policy) (float64, error) {
	scope = writableScope(scope)

	lo, hi, err := iteratorBounds(n, scope, policy)
	if err != nil {
		return 0, err
	}

	// Capture the prior binding (or its absence) before the loop; it is
	// restored on every exit path, including error propagation.
	prev, had := scope.Variable(n.Variable)
	defer func() {
		if had {
			scope.SetVariable(n.Variable, prev)
		} else {
			scope.DeleteVariable(n.Variable)
		}
	}()

	acc := 0.0
	if n.Kind == IterProd {
		acc = 1.0
	}
	for i := lo; i <= hi; i++ {
		scope.SetVariable(n.Variable, float64(i))
		body, err := Evaluate(n.Body, scope, policy)
		if err != nil {
			return 0, err
		}
		if n.Kind == IterProd {
			acc *= body
		} else {
			acc += body
		}
		// The policy is re-applied after every iteration, not just at
		// the end.
		acc, err = policy.Apply(acc)
		if err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// iteratorBounds evaluates both bounds and requires them to be effectively
// integer.
func iteratorBounds(n *IteratorNode, scope Scope, policy format.Policy) (int, int, error) {
	startV, err := Evaluate(n.Start, scope, policy)
	if err != nil {
		return 0, 0, err
	}
	endV, err := Evaluate(n.End, scope, policy)
	if err != nil {
		return 0, 0, err
	}
	if !isInteger(startV) {
		return 0, 0, types.NewEvalError(fmt.Sprintf("%s lower bound must be an integer, got %v", n.Kind, startV), n.Span)
	}
	if !isInteger(endV) {
		return 0, 0, types.NewEvalError(fmt.Sprintf("%s upper bound must be an integer, got %v", n.Kind, endV), n.Span)
	}
	return int(math.Round(startV)), int(math.Round(endV)), nil
}
