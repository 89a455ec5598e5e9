// Package loans implements fixed-rate loan amortization: the base monthly
// payment and the month-by-month split of each payment into principal and
// interest, optionally accelerated by an extra monthly principal payment.
//
// Every function here is a pure transformation of its inputs, so schedules for
// independent loans may be computed from any number of goroutines at once.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/mathutil"
)

// BaseMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
// With a zero rate the loan is repaid in equal straight-line installments.
func BaseMonthlyPayment(loanAmount, annualRate float64, termYears int) (float64, error) {
	if !mathutil.IsFinite(loanAmount, annualRate) {
		return 0, fmt.Errorf("%w: loan amount and rate must be finite numbers", ErrInvalidParameter)
	}
	if loanAmount < 0 {
		return 0, fmt.Errorf("%w: loan amount cannot be negative, got %.2f", ErrInvalidParameter, loanAmount)
	}
	if annualRate < 0 {
		return 0, fmt.Errorf("%w: interest rate cannot be negative, got %.2f", ErrInvalidParameter, annualRate)
	}
	if termYears <= 0 {
		return 0, fmt.Errorf("%w: term must be a positive number of years, got %d", ErrInvalidParameter, termYears)
	}
	if termYears > math.MaxInt32/constants.MonthsPerYear {
		return 0, fmt.Errorf("%w: term of %d years exceeds the payment counter", ErrNumericOverflow, termYears)
	}

	numPayments := float64(termYears * constants.MonthsPerYear)
	monthlyRate := mathutil.PercentToMonthlyRate(annualRate)

	var payment float64
	if monthlyRate == 0 {
		payment = loanAmount / numPayments
	} else {
		// 1 - (1+r)^-n, evaluated without cancellation for very small rates.
		discountFactor := -math.Expm1(-numPayments * math.Log1p(monthlyRate))
		payment = loanAmount * monthlyRate / discountFactor
	}

	if !mathutil.IsFinite(payment) {
		return 0, fmt.Errorf("%w: monthly payment for %.2f at %.2f%% over %d years is not finite",
			ErrNumericOverflow, loanAmount, annualRate, termYears)
	}
	return payment, nil
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRate float64) float64 {
	return remainingPrincipal * mathutil.PercentToMonthlyRate(annualRate)
}
