// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/datetime"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
)

// ValidateLoanRanges reports loan values outside the reference input ranges.
// Out-of-range values are still computed; these are warnings only.
func ValidateLoanRanges(name string, p loans.LoanParameters) []string {
	var warnings []string

	check := func(field string, value, low, high float64) {
		if value < low || value > high {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' %s %.2f is outside the usual range [%.2f, %.2f]",
				name, field, value, low, high))
		}
	}

	check("loan amount", p.Principal, constants.MinLoanAmount, constants.MaxLoanAmount)
	check("down payment", p.DownPayment, constants.MinDownPayment, constants.MaxDownPayment)
	check("interest rate", p.AnnualRate, constants.MinInterestRate, constants.MaxInterestRate)
	check("term (years)", float64(p.TermYears), constants.MinTermYears, constants.MaxTermYears)
	check("extra payment", p.ExtraPayment, constants.MinExtraPayment, constants.MaxExtraPayment)

	return warnings
}

// ValidateStartDate checks that a scenario start date, when given, parses.
func ValidateStartDate(name, startDate string) error {
	if startDate == "" {
		return nil
	}
	if err := datetime.ValidateDate(startDate); err != nil {
		return fmt.Errorf("scenario '%s' has an invalid start date %q: %w", name, startDate, err)
	}
	return nil
}

// ConfigValidator checks a set of scenarios as a whole.
type ConfigValidator struct {
	Scenarios []ScenarioConfig
}

// ScenarioConfig is the part of a scenario the validator looks at.
type ScenarioConfig struct {
	Name      string
	StartDate string
	Loan      loans.LoanParameters
}

// ValidateAll validates every scenario and returns warnings.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	seen := make(map[string]bool)
	for _, s := range cv.Scenarios {
		if s.Name != "" && seen[s.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", s.Name))
		}
		seen[s.Name] = true

		warnings = append(warnings, ValidateLoanRanges(s.Name, s.Loan)...)

		if err := ValidateStartDate(s.Name, s.StartDate); err != nil {
			warnings = append(warnings, err.Error())
		}

		if base, err := loans.BaseMonthlyPayment(s.Loan.LoanAmount(), s.Loan.AnnualRate, s.Loan.TermYears); err == nil &&
			s.Loan.ExtraPayment > 0 && s.Loan.ExtraPayment*float64(s.Loan.NumPayments()) < base {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' extra payment may not shorten the loan", s.Name))
		}
	}

	return warnings
}
