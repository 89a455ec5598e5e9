package config

import (
	"strings"
	"testing"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test configuration",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "info" || config.Logging.Format != "console" {
		t.Errorf("Logging = %+v, expected info/console", config.Logging)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("Output.Format = %s, expected pretty", config.Output.Format)
	}
	if config.Evaluation.Workers != 4 {
		t.Errorf("Evaluation.Workers = %d, expected 4", config.Evaluation.Workers)
	}

	expectedScenarios := []string{"baseline mortgage", "mortgage with extra principal payments", "auto loan"}
	if len(config.Scenarios) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(config.Scenarios))
	}
	for i, expectedName := range expectedScenarios {
		if config.Scenarios[i].Name != expectedName {
			t.Errorf("Expected scenario name %s, got %s", expectedName, config.Scenarios[i].Name)
		}
	}

	extra := config.Scenarios[1]
	if extra.StartDate != "2025-01" || !extra.IncludeInGraph {
		t.Errorf("scenario metadata = %+v", extra)
	}
	loan := extra.Loan
	if loan.Principal != 250000 || loan.DownPayment != 50000 || loan.AnnualRate != 5 || loan.TermYears != 30 || loan.ExtraPayment != 500 {
		t.Errorf("loan parameters = %+v", loan)
	}
	if config.Scenarios[2].IncludeInGraph {
		t.Errorf("auto loan should not be charted")
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	input := `
output:
  format: csv
optimizer:
  targetMonths: 120
scenarios:
  - loan:
      principal: 10000
      interestRate: 3.5
      termYears: 2
`
	config, err := LoadConfigurationFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Output.Format = %s, expected csv", config.Output.Format)
	}
	if config.Optimizer == nil || config.Optimizer.TargetMonths != 120 {
		t.Fatalf("Optimizer = %+v, expected target 120", config.Optimizer)
	}
	if config.Optimizer.Tolerance != defaultToleranceAmount || config.Optimizer.MaxIterations != defaultMaxIterations {
		t.Errorf("Optimizer defaults not applied: %+v", config.Optimizer)
	}

	portfolio, err := config.Portfolio()
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if got := portfolio.Scenarios()[0].Name; got != "Loan 1" {
		t.Errorf("default scenario name = %s, expected Loan 1", got)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader("scenarios: []\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("Output.Format = %s, expected pretty default", config.Output.Format)
	}
	if config.Optimizer != nil {
		t.Errorf("Optimizer = %+v, expected nil", config.Optimizer)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("LOAN_ANALYZER_OUTPUT_FORMAT", "json")
	t.Setenv("LOAN_ANALYZER_STORAGE_PATH", "/tmp/scenarios.db")

	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "json" {
		t.Errorf("Output.Format = %s, expected json from environment", config.Output.Format)
	}
	if config.Storage.Path != "/tmp/scenarios.db" {
		t.Errorf("Storage.Path = %s, expected environment value", config.Storage.Path)
	}
}

func TestPortfolioRejectsInvalidScenario(t *testing.T) {
	input := `
scenarios:
  - name: broken
    loan:
      principal: 10000
      downPayment: 10000
      termYears: 2
`
	config, err := LoadConfigurationFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if _, err := config.Portfolio(); err == nil {
		t.Error("Portfolio() expected error for a zero loan amount")
	}
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("ValidateConfiguration() = %v, expected no warnings", warnings)
	}

	config.Output.Format = "xml"
	config.Scenarios = append(config.Scenarios, config.Scenarios[0])
	config.Optimizer = &OptimizerConfig{TargetMonths: 0}

	warnings := config.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Fatalf("ValidateConfiguration() = %v, expected 3 warnings", warnings)
	}
	if !strings.Contains(warnings[0], "used more than once") {
		t.Errorf("warning = %s, expected duplicate name", warnings[0])
	}
	if !strings.Contains(warnings[1], "output format") {
		t.Errorf("warning = %s, expected output format", warnings[1])
	}
	if !strings.Contains(warnings[2], "at least 1") {
		t.Errorf("warning = %s, expected optimizer target", warnings[2])
	}
}
