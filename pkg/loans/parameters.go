package loans

import (
	"errors"
	"fmt"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/mathutil"
)

var (
	// ErrInvalidParameter marks input outside its valid domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericOverflow marks a calculation that produced NaN or Inf.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// LoanParameters holds the inputs of one amortization calculation.
type LoanParameters struct {
	Principal    float64 `json:"principal" yaml:"principal"`
	DownPayment  float64 `json:"downPayment" yaml:"downPayment"`
	AnnualRate   float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"` // percent
	TermYears    int     `json:"termYears" yaml:"termYears"`
	ExtraPayment float64 `json:"extraPayment" yaml:"extraPayment"` // per month
}

// LoanAmount is the amount actually financed.
func (p LoanParameters) LoanAmount() float64 {
	return p.Principal - p.DownPayment
}

// NumPayments is the nominal number of monthly payments.
func (p LoanParameters) NumPayments() int {
	return p.TermYears * constants.MonthsPerYear
}

// WithoutExtraPayment returns a copy of p with no extra principal.
func (p LoanParameters) WithoutExtraPayment() LoanParameters {
	p.ExtraPayment = 0
	return p
}

// Validate checks every field against its domain.
func (p LoanParameters) Validate() error {
	if !mathutil.IsFinite(p.Principal, p.DownPayment, p.AnnualRate, p.ExtraPayment) {
		return fmt.Errorf("%w: parameters must be finite numbers", ErrInvalidParameter)
	}
	if p.Principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidParameter, p.Principal)
	}
	if p.DownPayment < 0 {
		return fmt.Errorf("%w: down payment cannot be negative, got %.2f", ErrInvalidParameter, p.DownPayment)
	}
	if p.LoanAmount() <= 0 {
		return fmt.Errorf("%w: down payment %.2f must be less than principal %.2f",
			ErrInvalidParameter, p.DownPayment, p.Principal)
	}
	if p.AnnualRate < 0 {
		return fmt.Errorf("%w: interest rate cannot be negative, got %.2f", ErrInvalidParameter, p.AnnualRate)
	}
	if p.TermYears <= 0 {
		return fmt.Errorf("%w: term must be a positive number of years, got %d", ErrInvalidParameter, p.TermYears)
	}
	if p.TermYears > constants.MaxSupportedTermYears {
		return fmt.Errorf("%w: term cannot exceed %d years, got %d",
			ErrInvalidParameter, constants.MaxSupportedTermYears, p.TermYears)
	}
	if p.ExtraPayment < 0 {
		return fmt.Errorf("%w: extra payment cannot be negative, got %.2f", ErrInvalidParameter, p.ExtraPayment)
	}
	return nil
}
