package loans

import (
	"fmt"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/mathutil"
	"go.uber.org/zap"
)

// PaymentPeriod holds the values for a given monthly payment.
type PaymentPeriod struct {
	Month               int     `json:"month"`
	Payment             float64 `json:"payment"`
	Principal           float64 `json:"principal"`
	Interest            float64 `json:"interest"`
	Balance             float64 `json:"balance"`
	CumulativeInterest  float64 `json:"cumulativeInterest"`
	CumulativePrincipal float64 `json:"cumulativePrincipal"`
}

// Result is a complete amortization schedule.
type Result struct {
	BasePayment float64         `json:"basePayment"`
	Periods     []PaymentPeriod `json:"periods"`
	PeriodsUsed int             `json:"periodsUsed"`
}

// ScheduleGenerator produces amortization schedules and logs payoff details.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule computes the schedule for params without logging.
func GenerateSchedule(params LoanParameters) (Result, error) {
	return NewScheduleGenerator(nil).GenerateSchedule(params)
}

// GenerateSchedule creates a complete amortization schedule for a loan.
//
// Each month the interest on the outstanding balance is charged and the rest
// of the base payment plus the extra payment reduces the balance. The period
// that would overpay the balance, and in any case the last nominal month,
// pays exactly the remaining balance plus its interest; the extra payment is
// not added on top of that final payment. Iteration stops once the balance
// reaches zero.
func (g *ScheduleGenerator) GenerateSchedule(params LoanParameters) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	loanAmount := params.LoanAmount()
	basePayment, err := BaseMonthlyPayment(loanAmount, params.AnnualRate, params.TermYears)
	if err != nil {
		return Result{}, err
	}

	numPayments := params.NumPayments()
	balance := loanAmount
	cumulativeInterest := 0.0
	cumulativePrincipal := 0.0
	periods := make([]PaymentPeriod, 0, min(numPayments, constants.MonthsPerYear*constants.MaxTermYears))

	for month := 1; month <= numPayments; month++ {
		interest := CalculateInterestPayment(balance, params.AnnualRate)
		principal := basePayment - interest + params.ExtraPayment
		payment := basePayment + params.ExtraPayment

		// The last nominal month retires whatever float residue is left.
		if principal > balance || month == numPayments {
			principal = balance
			interest = CalculateInterestPayment(balance, params.AnnualRate)
			payment = principal + interest
		}

		if !mathutil.IsFinite(interest, principal, payment) {
			return Result{}, fmt.Errorf("%w: month %d produced a non-finite payment", ErrNumericOverflow, month)
		}
		if principal <= 0 {
			// Only reachable when interest swallows the whole payment.
			return Result{}, fmt.Errorf("%w: month %d does not reduce the balance of %.2f",
				ErrNumericOverflow, month, balance)
		}

		balance -= principal
		cumulativeInterest += interest
		cumulativePrincipal += principal

		periods = append(periods, PaymentPeriod{
			Month:               month,
			Payment:             payment,
			Principal:           principal,
			Interest:            interest,
			Balance:             balance,
			CumulativeInterest:  cumulativeInterest,
			CumulativePrincipal: cumulativePrincipal,
		})

		if balance <= 0 {
			break
		}
	}

	if !mathutil.IsFinite(cumulativeInterest, cumulativePrincipal) {
		return Result{}, fmt.Errorf("%w: schedule totals are not finite", ErrNumericOverflow)
	}

	result := Result{
		BasePayment: basePayment,
		Periods:     periods,
		PeriodsUsed: len(periods),
	}

	if result.PeriodsUsed < numPayments {
		g.logger.Debug(fmt.Sprintf("loan paid off after %d of %d months with extra payment %.2f",
			result.PeriodsUsed, numPayments, params.ExtraPayment),
			zap.String("op", "loans.GenerateSchedule"),
		)
	}
	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("loan_amount", loanAmount),
		zap.Float64("base_payment", basePayment),
		zap.Int("periods", result.PeriodsUsed),
		zap.Float64("total_interest", cumulativeInterest),
	)

	return result, nil
}

// TotalInterest is the sum of the interest portions.
func (r Result) TotalInterest() float64 {
	return mathutil.Sum(r.column(interestOf))
}

// TotalPrincipal is the sum of the principal portions.
func (r Result) TotalPrincipal() float64 {
	return mathutil.Sum(r.column(principalOf))
}

// TotalPaid is everything paid over the life of the loan.
func (r Result) TotalPaid() float64 {
	return r.TotalInterest() + r.TotalPrincipal()
}

// EffectiveTermMonths is the number of periods actually generated.
func (r Result) EffectiveTermMonths() int {
	return len(r.Periods)
}

// EffectiveTermYears expresses EffectiveTermMonths in years.
func (r Result) EffectiveTermYears() float64 {
	return float64(r.EffectiveTermMonths()) / constants.MonthsPerYear
}

// AveragePrincipal is the mean principal portion per period.
func (r Result) AveragePrincipal() float64 {
	return mathutil.Mean(r.column(principalOf))
}

// AverageInterest is the mean interest portion per period.
func (r Result) AverageInterest() float64 {
	return mathutil.Mean(r.column(interestOf))
}

func interestOf(p PaymentPeriod) float64  { return p.Interest }
func principalOf(p PaymentPeriod) float64 { return p.Principal }

func (r Result) column(value func(PaymentPeriod) float64) []float64 {
	out := make([]float64, len(r.Periods))
	for i, p := range r.Periods {
		out[i] = value(p)
	}
	return out
}

// FinalBalance is the balance after the last generated period.
func (r Result) FinalBalance() float64 {
	if len(r.Periods) == 0 {
		return 0
	}
	return r.Periods[len(r.Periods)-1].Balance
}
