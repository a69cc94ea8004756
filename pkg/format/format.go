// Package format implements the numeric post-processing policy applied after
// every arithmetic primitive. A policy either passes values through, truncates
// them, or rounds them, counting precision in decimal places or in
// significant digits.
package format

import (
	"fmt"
	"math"
)

// Mode selects what the policy does to a value.
type Mode int

const (
	ModeNone Mode = iota // identity
	ModeTruncate
	ModeRound
)

// String returns the mode name used in configuration and step text.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeTruncate:
		return "truncate"
	case ModeRound:
		return "round"
	default:
		return "unknown"
	}
}

// Unit selects how precision is counted.
type Unit int

const (
	DecimalPlaces Unit = iota
	SignificantDigits
)

// String returns the unit name used in configuration.
func (u Unit) String() string {
	switch u {
	case DecimalPlaces:
		return "decimal-places"
	case SignificantDigits:
		return "significant-digits"
	default:
		return "unknown"
	}
}

// Policy is a pure value -> value numeric formatting policy.
type Policy struct {
	Mode      Mode
	Precision int
	Unit      Unit
}

// None returns the identity policy.
func None() Policy {
	return Policy{Mode: ModeNone}
}

// Truncate returns a truncating policy with the given precision and unit.
func Truncate(precision int, unit Unit) Policy {
	return Policy{Mode: ModeTruncate, Precision: precision, Unit: unit}
}

// Round returns a rounding policy with the given precision and unit.
func Round(precision int, unit Unit) Policy {
	return Policy{Mode: ModeRound, Precision: precision, Unit: unit}
}

// Validate reports an invalid precision configuration. This is a caller
// programming error, distinct from the data errors raised during evaluation.
func (p Policy) Validate() error {
	if p.Mode == ModeNone {
		return nil
	}
	switch p.Unit {
	case DecimalPlaces:
		if p.Precision < 0 {
			return fmt.Errorf("invalid format policy: decimal places must be >= 0, got %d", p.Precision)
		}
	case SignificantDigits:
		if p.Precision <= 0 {
			return fmt.Errorf("invalid format policy: significant digits must be > 0, got %d", p.Precision)
		}
	default:
		return fmt.Errorf("invalid format policy: unknown unit %d", int(p.Unit))
	}
	return nil
}

// Apply formats a single value under the policy. Apply is idempotent:
// Apply(Apply(x)) == Apply(x).
func (p Policy) Apply(v float64) (float64, error) {
	if p.Mode == ModeNone {
		return v, nil
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	places := p.Precision
	if p.Unit == SignificantDigits {
		if v == 0 {
			return 0, nil
		}
		// The decimal-place count derived from a significant-digit budget
		// may be negative for values >= 10^precision; the shift below then
		// moves the point left instead of right.
		exp := int(math.Floor(math.Log10(math.Abs(v))))
		places = p.Precision - exp - 1
	}

	switch p.Mode {
	case ModeTruncate:
		return truncateTo(v, places), nil
	default:
		return roundTo(v, places), nil
	}
}

// Describe returns the suffix appended to step operation text, e.g.
// ", rounding to 2 decimal places". The identity policy describes as "".
func (p Policy) Describe() string {
	if p.Mode == ModeNone {
		return ""
	}
	verb := "rounding"
	if p.Mode == ModeTruncate {
		verb = "truncating"
	}
	unit := "decimal places"
	if p.Unit == SignificantDigits {
		unit = "significant digits"
	}
	if p.Precision == 1 {
		unit = unit[:len(unit)-1]
	}
	return fmt.Sprintf(", %s to %d %s", verb, p.Precision, unit)
}

func truncateTo(v float64, places int) float64 {
	shifted := shift(v, places)
	// A shifted value within representation error of an integer snaps to it
	// before the floor; otherwise an already-truncated value like 0.0012,
	// whose shift lands just below 12, would lose another digit.
	if nearest := math.Round(shifted); math.Abs(shifted-nearest) <= math.Abs(shifted)*1e-12 {
		shifted = nearest
	} else if v >= 0 {
		shifted = math.Floor(shifted)
	} else {
		shifted = math.Ceil(shifted)
	}
	return unshift(shifted, places)
}

func roundTo(v float64, places int) float64 {
	return unshift(math.Round(shift(v, places)), places)
}

// shift moves the decimal point right by places (left when negative).
// Division is used for the negative direction so the inverse unshift
// multiplies by an exact power of ten.
func shift(v float64, places int) float64 {
	if places >= 0 {
		return v * math.Pow(10, float64(places))
	}
	return v / math.Pow(10, float64(-places))
}

func unshift(v float64, places int) float64 {
	if places >= 0 {
		return v / math.Pow(10, float64(places))
	}
	return v * math.Pow(10, float64(-places))
}
