// Package stdlib implements the calculator's built-in functions and
// constants. The registry is an explicit static table built once at package
// init; lookups are case-insensitive.
package stdlib

import (
	"fmt"
	"math"
	"strings"
)

// Function is a built-in unary real function together with the description
// template used for step text. The template has one slot for the argument.
type Function struct {
	Name     string
	Eval     func(float64) (float64, error)
	Describe string
}

var functions = make(map[string]Function)

func register(name string, eval func(float64) (float64, error), describe string) {
	functions[name] = Function{Name: name, Eval: eval, Describe: describe}
}

func init() {
	// Trigonometric functions operate in radians.
	register("sin", func(x float64) (float64, error) { return math.Sin(x), nil },
		"Take the sine of %s")
	register("cos", func(x float64) (float64, error) { return math.Cos(x), nil },
		"Take the cosine of %s")
	register("tan", func(x float64) (float64, error) { return math.Tan(x), nil },
		"Take the tangent of %s")
	register("log", requirePositive("log", math.Log10),
		"Take the base-10 logarithm of %s")
	register("ln", requirePositive("ln", math.Log),
		"Take the natural logarithm of %s")
	register("sqrt", sqrt, "Take the square root of %s")
}

// requirePositive wraps a function whose domain is (0, +inf).
func requirePositive(name string, fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("%s is undefined for %v (argument must be positive)", name, x)
		}
		return fn(x), nil
	}
}

func sqrt(x float64) (float64, error) {
	if x < 0 {
		return 0, fmt.Errorf("sqrt is undefined for %v (argument must be non-negative)", x)
	}
	return math.Sqrt(x), nil
}

// Lookup returns the built-in function with the given name, ignoring case.
func Lookup(name string) (Function, bool) {
	fn, ok := functions[strings.ToLower(name)]
	return fn, ok
}

// Exact high-precision constant literals; never computed at runtime.
var constants = map[string]float64{
	"pi":  3.14159265358979323846,
	"e":   2.71828182845904523536,
	"phi": 1.61803398874989484820,
}

// Constant returns the named constant, ignoring case. Constants shadow
// user variables of the same name.
func Constant(name string) (float64, bool) {
	v, ok := constants[strings.ToLower(name)]
	return v, ok
}
