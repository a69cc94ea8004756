package expr

import (
	"strings"
	"testing"

	"github.com/calctrace/calctrace/pkg/format"
)

func evalStepsString(t *testing.T, input string, scope Scope, policy format.Policy) (float64, []Step) {
	t.Helper()
	node := mustParse(t, input)
	got, steps, err := EvaluateSteps(node, scope, policy)
	if err != nil {
		t.Fatalf("EvaluateSteps(%q) error: %v", input, err)
	}
	return got, steps
}

func TestEvaluateStepsOrder(t *testing.T) {
	got, steps := evalStepsString(t, "2 + 3 * 4", nil, format.None())
	if got != 14 {
		t.Fatalf("result = %v, want 14", got)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2: %+v", len(steps), steps)
	}

	// The multiplication happens first.
	if steps[0].Expression != "3 * 4" {
		t.Errorf("step 1 expression = %q, want %q", steps[0].Expression, "3 * 4")
	}
	if steps[0].Operation != "Multiply 3 by 4" {
		t.Errorf("step 1 operation = %q", steps[0].Operation)
	}
	if steps[0].Result != "12" {
		t.Errorf("step 1 result = %q, want %q", steps[0].Result, "12")
	}

	if steps[1].Expression != "2 + 3 * 4" {
		t.Errorf("step 2 expression = %q", steps[1].Expression)
	}
	if steps[1].Operation != "Add 2 and 12" {
		t.Errorf("step 2 operation = %q", steps[1].Operation)
	}
}

func TestEvaluateStepsFinalResultMatches(t *testing.T) {
	inputs := []string{
		"2 + 3 * 4",
		"(1 + 2) * (3 + 4)",
		"10 / 4 + 2 ^ 3",
		"5! - sqrt(16)",
		`\sum_{i=1}^{4}{i + 1}`,
	}
	policy := format.Round(2, format.DecimalPlaces)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, steps := evalStepsString(t, input, nil, policy)
			if len(steps) == 0 {
				t.Fatal("composite expression produced no steps")
			}
			final := steps[len(steps)-1]
			if final.Result != FormatResult(got) {
				t.Errorf("final step result %q != formatted value %q", final.Result, FormatResult(got))
			}
		})
	}
}

func TestEvaluateStepsLeaves(t *testing.T) {
	// Leaves perform no arithmetic and record no steps.
	for _, input := range []string{"42", "x", "pi"} {
		_, steps := evalStepsString(t, input, VarMap{"x": 1}, format.None())
		if len(steps) != 0 {
			t.Errorf("%q: steps = %d, want 0", input, len(steps))
		}
	}
}

func TestEvaluateStepsParentheses(t *testing.T) {
	// A grouping with no inner arithmetic stays silent.
	_, steps := evalStepsString(t, "(2)", nil, format.None())
	if len(steps) != 0 {
		t.Errorf("steps = %d, want 0", len(steps))
	}

	// A grouping whose inner expression computed something reports itself.
	_, steps = evalStepsString(t, "(1 + 2)", nil, format.None())
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2: %+v", len(steps), steps)
	}
	if steps[1].Operation != "Evaluate the expression in parentheses" {
		t.Errorf("paren step operation = %q", steps[1].Operation)
	}
	if steps[1].Result != "3" {
		t.Errorf("paren step result = %q, want 3", steps[1].Result)
	}
}

func TestEvaluateStepsDescribePolicy(t *testing.T) {
	policy := format.Round(2, format.DecimalPlaces)
	_, steps := evalStepsString(t, "10 / 3", nil, policy)
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	want := "Divide 10 by 3, rounding to 2 decimal places"
	if steps[0].Operation != want {
		t.Errorf("operation = %q, want %q", steps[0].Operation, want)
	}
	if steps[0].Result != "3.33" {
		t.Errorf("result = %q, want 3.33", steps[0].Result)
	}
}

func TestEvaluateStepsFunctionDescription(t *testing.T) {
	_, steps := evalStepsString(t, "sqrt(16)", nil, format.None())
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].Operation != "Take the square root of 16" {
		t.Errorf("operation = %q", steps[0].Operation)
	}
	if steps[0].Result != "4" {
		t.Errorf("result = %q, want 4", steps[0].Result)
	}
}

func TestEvaluateStepsFactorial(t *testing.T) {
	_, steps := evalStepsString(t, "5!", nil, format.None())
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].Operation != "Take the factorial of 5" {
		t.Errorf("operation = %q", steps[0].Operation)
	}
	if steps[0].Result != "120" {
		t.Errorf("result = %q, want 120", steps[0].Result)
	}
}

func TestEvaluateStepsIterator(t *testing.T) {
	vars := VarMap{}
	got, steps := evalStepsString(t, `\sum_{i=1}^{3}{i * 2}`, vars, format.None())
	if got != 12 {
		t.Fatalf("result = %v, want 12", got)
	}
	// Each iteration records the body multiplication plus the accumulation.
	if len(steps) != 6 {
		t.Fatalf("steps = %d, want 6: %+v", len(steps), steps)
	}
	if !strings.Contains(steps[1].Operation, "for i = 1") {
		t.Errorf("first accumulation = %q, want mention of i = 1", steps[1].Operation)
	}
	if steps[5].Result != "12" {
		t.Errorf("last accumulation result = %q, want 12", steps[5].Result)
	}
	if _, ok := vars.Variable("i"); ok {
		t.Error("iteration variable leaked out of the loop")
	}
}

func TestEvaluateStepsIteratorBounds(t *testing.T) {
	// Bound expressions that compute something contribute their own steps.
	_, steps := evalStepsString(t, `\sum_{i=1}^{2 + 1}{i}`, nil, format.None())
	if len(steps) != 4 {
		t.Fatalf("steps = %d, want 4 (1 bound + 3 iterations): %+v", len(steps), steps)
	}
	if steps[0].Expression != "2 + 1" {
		t.Errorf("bound step expression = %q", steps[0].Expression)
	}
}

func TestEvaluateStepsProduct(t *testing.T) {
	got, steps := evalStepsString(t, `\prod_{k=1}^{3}{k}`, nil, format.None())
	if got != 6 {
		t.Fatalf("result = %v, want 6", got)
	}
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	if !strings.Contains(steps[0].Operation, "running product") {
		t.Errorf("operation = %q, want product accumulation text", steps[0].Operation)
	}
}

func TestEvaluateStepsErrorPropagates(t *testing.T) {
	node := mustParse(t, "1 + 1/0")
	_, steps, err := EvaluateSteps(node, nil, format.None())
	if err == nil {
		t.Fatal("expected error")
	}
	if steps != nil {
		t.Errorf("steps = %+v, want none on error", steps)
	}
}
