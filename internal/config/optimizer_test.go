package config

import "testing"

func TestCanonicalOptimizerField(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to extra payment", input: "", expected: OptimizerFieldExtraPayment},
		{name: "camel case", input: "extraPayment", expected: OptimizerFieldExtraPayment},
		{name: "snake case", input: "EXTRA_PAYMENT", expected: OptimizerFieldExtraPayment},
		{name: "short form", input: "extra", expected: OptimizerFieldExtraPayment},
		{name: "unknown lowered", input: "Rate", expected: "rate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalOptimizerField(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestOptimizerConfigNormalize(t *testing.T) {
	cfg := &OptimizerConfig{TargetMonths: 120}
	cfg.Normalize()

	if cfg.Field != OptimizerFieldExtraPayment {
		t.Errorf("expected field %q, got %q", OptimizerFieldExtraPayment, cfg.Field)
	}
	if cfg.Kind != OptimizerKindPayoffTarget {
		t.Errorf("expected kind %q, got %q", OptimizerKindPayoffTarget, cfg.Kind)
	}
	if cfg.Tolerance != defaultToleranceAmount {
		t.Errorf("expected tolerance %.2f, got %.2f", defaultToleranceAmount, cfg.Tolerance)
	}
	if cfg.MaxIterations != defaultMaxIterations {
		t.Errorf("expected %d iterations, got %d", defaultMaxIterations, cfg.MaxIterations)
	}

	var nilCfg *OptimizerConfig
	nilCfg.Normalize()
}

func TestOptimizerConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *OptimizerConfig
		wantErr bool
	}{
		{name: "valid", cfg: &OptimizerConfig{TargetMonths: 60}},
		{name: "valid with bound", cfg: &OptimizerConfig{TargetMonths: 60, Max: 2500}},
		{name: "nil", cfg: nil, wantErr: true},
		{name: "zero target", cfg: &OptimizerConfig{}, wantErr: true},
		{name: "unsupported field", cfg: &OptimizerConfig{Field: "rate", TargetMonths: 60}, wantErr: true},
		{name: "unsupported kind", cfg: &OptimizerConfig{Kind: "cash_floor", TargetMonths: 60}, wantErr: true},
		{name: "negative bound", cfg: &OptimizerConfig{TargetMonths: 60, Max: -1}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
