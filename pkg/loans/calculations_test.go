package loans

import (
	"errors"
	"math"
	"testing"
)

func TestBaseMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		loanAmount    float64
		annualRate    float64
		termYears     int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 30-year mortgage",
			loanAmount:    200000,
			annualRate:    5.0,
			termYears:     30,
			expectedRange: []float64{1073.63, 1073.65}, // 1073.64
		},
		{
			name:          "5-year car loan",
			loanAmount:    20000,
			annualRate:    4.0,
			termYears:     5,
			expectedRange: []float64{360, 380}, // Around $368
		},
		{
			name:          "Zero interest loan",
			loanAmount:    12000,
			annualRate:    0.0,
			termYears:     5,
			expectedRange: []float64{200, 200},
		},
		{
			name:          "Zero loan amount",
			loanAmount:    0,
			annualRate:    5.0,
			termYears:     5,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "High interest loan",
			loanAmount:    10000,
			annualRate:    18.0,
			termYears:     3,
			expectedRange: []float64{360, 380}, // Around $362
		},
		{
			name:          "Very small rate",
			loanAmount:    12000,
			annualRate:    1e-12,
			termYears:     1,
			expectedRange: []float64{999.99, 1000.01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BaseMonthlyPayment(tt.loanAmount, tt.annualRate, tt.termYears)
			if err != nil {
				t.Fatalf("BaseMonthlyPayment() error = %v", err)
			}

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("BaseMonthlyPayment() = %.4f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestBaseMonthlyPaymentZeroRateIsExact(t *testing.T) {
	loanAmount := 200000.0
	result, err := BaseMonthlyPayment(loanAmount, 0, 30)
	if err != nil {
		t.Fatalf("BaseMonthlyPayment() error = %v", err)
	}
	if result != loanAmount/360 {
		t.Errorf("BaseMonthlyPayment() = %v, expected exactly %v", result, loanAmount/360)
	}
}

func TestBaseMonthlyPaymentCoversLoan(t *testing.T) {
	rates := []float64{0.5, 3.25, 5.0, 9.9, 15.0}
	terms := []int{1, 5, 15, 30}

	for _, rate := range rates {
		for _, term := range terms {
			payment, err := BaseMonthlyPayment(150000, rate, term)
			if err != nil {
				t.Fatalf("BaseMonthlyPayment(%v, %d) error = %v", rate, term, err)
			}
			if payment*float64(term*12) <= 150000 {
				t.Errorf("BaseMonthlyPayment(%v, %d) = %.2f does not cover the loan over %d payments",
					rate, term, payment, term*12)
			}
		}
	}
}

func TestBaseMonthlyPaymentErrors(t *testing.T) {
	tests := []struct {
		name       string
		loanAmount float64
		annualRate float64
		termYears  int
		wantErr    error
	}{
		{"Zero term", 1000, 5, 0, ErrInvalidParameter},
		{"Negative term", 1000, 5, -3, ErrInvalidParameter},
		{"Negative loan amount", -1000, 5, 10, ErrInvalidParameter},
		{"Negative rate", 1000, -1, 10, ErrInvalidParameter},
		{"NaN loan amount", math.NaN(), 5, 10, ErrInvalidParameter},
		{"Infinite rate", 1000, math.Inf(1), 10, ErrInvalidParameter},
		{"Overflowing amount", math.MaxFloat64, 2400, 30, ErrNumericOverflow},
		{"Overflowing term", 1000, 5, math.MaxInt32, ErrNumericOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BaseMonthlyPayment(tt.loanAmount, tt.annualRate, tt.termYears)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BaseMonthlyPayment() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualInterestRate float64
		expected           float64
	}{
		{
			name:               "Standard mortgage interest",
			remainingPrincipal: 200000,
			annualInterestRate: 6.0,
			expected:           1000.0, // 200000 * 0.06 / 12
		},
		{
			name:               "Car loan interest",
			remainingPrincipal: 15000,
			annualInterestRate: 4.5,
			expected:           56.25, // 15000 * 0.045 / 12
		},
		{
			name:               "Zero interest",
			remainingPrincipal: 10000,
			annualInterestRate: 0.0,
			expected:           0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualInterestRate)

			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateInterestPayment() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestLoanParametersValidate(t *testing.T) {
	valid := LoanParameters{Principal: 250000, DownPayment: 50000, AnnualRate: 5, TermYears: 30}

	tests := []struct {
		name    string
		mutate  func(p *LoanParameters)
		wantErr bool
	}{
		{"Valid", func(p *LoanParameters) {}, false},
		{"Zero rate", func(p *LoanParameters) { p.AnnualRate = 0 }, false},
		{"Zero principal", func(p *LoanParameters) { p.Principal = 0 }, true},
		{"Negative down payment", func(p *LoanParameters) { p.DownPayment = -1 }, true},
		{"Down payment equals principal", func(p *LoanParameters) { p.DownPayment = p.Principal }, true},
		{"Down payment above principal", func(p *LoanParameters) { p.DownPayment = p.Principal + 1 }, true},
		{"Negative rate", func(p *LoanParameters) { p.AnnualRate = -0.1 }, true},
		{"Zero term", func(p *LoanParameters) { p.TermYears = 0 }, true},
		{"Negative extra payment", func(p *LoanParameters) { p.ExtraPayment = -5 }, true},
		{"NaN extra payment", func(p *LoanParameters) { p.ExtraPayment = math.NaN() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			err := params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Validate() error = %v, expected ErrInvalidParameter", err)
			}
		})
	}
}

func TestLoanParametersDerivedValues(t *testing.T) {
	params := LoanParameters{Principal: 250000, DownPayment: 50000, AnnualRate: 5, TermYears: 30, ExtraPayment: 500}

	if got := params.LoanAmount(); got != 200000 {
		t.Errorf("LoanAmount() = %v, expected 200000", got)
	}
	if got := params.NumPayments(); got != 360 {
		t.Errorf("NumPayments() = %v, expected 360", got)
	}
	if got := params.WithoutExtraPayment(); got.ExtraPayment != 0 || params.ExtraPayment != 500 {
		t.Errorf("WithoutExtraPayment() = %+v, original = %+v", got, params)
	}
}
