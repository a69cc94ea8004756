package calc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calctrace/calctrace/pkg/format"
)

// Profile is a YAML-loadable calculator configuration: a format policy plus
// predefined variables.
//
//	format:
//	  mode: round
//	  precision: 2
//	  unit: decimal-places
//	variables:
//	  x: 3
//	  rate: 0.0425
type Profile struct {
	Format    FormatConfig       `yaml:"format"`
	Variables map[string]float64 `yaml:"variables"`
}

// FormatConfig is the serialized form of a format.Policy.
type FormatConfig struct {
	Mode      string `yaml:"mode" json:"mode"`
	Precision int    `yaml:"precision" json:"precision"`
	Unit      string `yaml:"unit" json:"unit"`
}

// Policy converts the config into a format.Policy, validating names and
// precision.
func (c FormatConfig) Policy() (format.Policy, error) {
	var mode format.Mode
	switch c.Mode {
	case "", "none":
		return format.None(), nil
	case "truncate":
		mode = format.ModeTruncate
	case "round":
		mode = format.ModeRound
	default:
		return format.Policy{}, fmt.Errorf("unknown format mode %q", c.Mode)
	}

	var unit format.Unit
	switch c.Unit {
	case "", "decimal-places":
		unit = format.DecimalPlaces
	case "significant-digits":
		unit = format.SignificantDigits
	default:
		return format.Policy{}, fmt.Errorf("unknown format unit %q", c.Unit)
	}

	p := format.Policy{Mode: mode, Precision: c.Precision, Unit: unit}
	if err := p.Validate(); err != nil {
		return format.Policy{}, err
	}
	return p, nil
}

// ConfigFor serializes a policy back into its config form.
func ConfigFor(p format.Policy) FormatConfig {
	return FormatConfig{Mode: p.Mode.String(), Precision: p.Precision, Unit: p.Unit.String()}
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply configures a calculator from the profile.
func (p *Profile) Apply(c *Calculator) error {
	policy, err := p.Format.Policy()
	if err != nil {
		return err
	}
	c.SetPolicy(policy)
	for name, value := range p.Variables {
		c.SetVariable(name, value)
	}
	return nil
}
