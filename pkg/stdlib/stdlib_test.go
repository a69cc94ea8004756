package stdlib

import (
	"math"
	"testing"
)

func TestLookupCaseInsensitive(t *testing.T) {
	for _, name := range []string{"sin", "SIN", "Sqrt", "LN"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) = false, want true", name)
		}
	}
	if _, ok := Lookup("cot"); ok {
		t.Error("Lookup(\"cot\") = true, want false")
	}
}

func TestFunctionValues(t *testing.T) {
	tests := []struct {
		name string
		arg  float64
		want float64
	}{
		{"sin", 0, 0},
		{"cos", 0, 1},
		{"tan", 0, 0},
		{"log", 100, 2},
		{"ln", 1, 0},
		{"sqrt", 16, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) = false", tt.name)
			}
			got, err := fn.Eval(tt.arg)
			if err != nil {
				t.Fatalf("%s(%v) error: %v", tt.name, tt.arg, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s(%v) = %v, want %v", tt.name, tt.arg, got, tt.want)
			}
		})
	}
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		arg  float64
	}{
		{"sqrt", -1},
		{"log", 0},
		{"log", -5},
		{"ln", 0},
	}
	for _, tt := range tests {
		fn, ok := Lookup(tt.name)
		if !ok {
			t.Fatalf("Lookup(%q) = false", tt.name)
		}
		if _, err := fn.Eval(tt.arg); err == nil {
			t.Errorf("%s(%v): expected domain error", tt.name, tt.arg)
		}
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"pi", math.Pi},
		{"PI", math.Pi},
		{"e", math.E},
		{"phi", 1.618033988749895},
	}
	for _, tt := range tests {
		got, ok := Constant(tt.name)
		if !ok {
			t.Fatalf("Constant(%q) = false", tt.name)
		}
		if got != tt.want {
			t.Errorf("Constant(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, ok := Constant("tau"); ok {
		t.Error("Constant(\"tau\") = true, want false")
	}
}
