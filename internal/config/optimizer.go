package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
)

const (
	OptimizerFieldExtraPayment = "extraPayment"

	OptimizerKindPayoffTarget = "payoff_target"

	defaultToleranceAmount = constants.CurrencyTolerance
	defaultMaxIterations   = 60
)

// OptimizerConfig defines a payoff-target optimization directive: find the
// smallest extra monthly payment that retires each loan within TargetMonths.
type OptimizerConfig struct {
	Field         string  `yaml:"field,omitempty" mapstructure:"field"`
	Kind          string  `yaml:"kind,omitempty" mapstructure:"kind"`
	TargetMonths  int     `yaml:"targetMonths" mapstructure:"targetMonths"`
	Max           float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldExtraPayment
	}
	switch strings.ToLower(trimmed) {
	case "extrapayment", "extra_payment", "extra-payment", "extra":
		return OptimizerFieldExtraPayment
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		o.Kind = OptimizerKindPayoffTarget
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if o.Field != OptimizerFieldExtraPayment {
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}
	if o.Kind != OptimizerKindPayoffTarget {
		return fmt.Errorf("optimizer kind %q is not supported", o.Kind)
	}
	if o.TargetMonths < 1 {
		return fmt.Errorf("optimizer target of %d months must be at least 1", o.TargetMonths)
	}
	if o.Max < 0 {
		return fmt.Errorf("optimizer maximum %.2f cannot be negative", o.Max)
	}

	return nil
}
