package scenario

import (
	"context"
	"fmt"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/datetime"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary holds the headline figures of an evaluated scenario.
type Summary struct {
	LoanAmount     float64 `json:"loanAmount"`
	AnnualRate     float64 `json:"interestRate"`
	BasePayment    float64 `json:"basePayment"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalPaid      float64 `json:"totalPaid"`
	PeriodsUsed    int     `json:"periodsUsed"`
	AvgPrincipal   float64 `json:"averagePrincipal"`
	AvgInterest    float64 `json:"averageInterest"`
	TermYears      float64 `json:"termYears"`
	PayoffDate     string  `json:"payoffDate,omitempty"`
	InterestSaved  float64 `json:"interestSaved"`
	MonthsSaved    int     `json:"monthsSaved"`
}

// Evaluation is a scenario together with its schedule.
type Evaluation struct {
	Scenario Scenario     `json:"scenario"`
	Result   loans.Result `json:"result"`
	Summary  Summary      `json:"summary"`
	Dates    []string     `json:"dates,omitempty"`
}

// ScheduleFunc computes the schedule of one loan.
type ScheduleFunc func(ctx context.Context, params loans.LoanParameters) (loans.Result, error)

// Evaluator computes schedules for scenarios.
type Evaluator struct {
	logger   *zap.Logger
	schedule ScheduleFunc
	workers  int
}

// NewEvaluator creates an Evaluator running at most workers schedules at once.
func NewEvaluator(logger *zap.Logger, workers int) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = constants.DefaultEvaluationWorkers
	}
	generator := loans.NewScheduleGenerator(logger)
	return &Evaluator{
		logger: logger,
		schedule: func(_ context.Context, params loans.LoanParameters) (loans.Result, error) {
			return generator.GenerateSchedule(params)
		},
		workers: workers,
	}
}

// WithScheduleFunc replaces the schedule source, e.g. with a cached one.
func (e *Evaluator) WithScheduleFunc(fn ScheduleFunc) *Evaluator {
	if fn != nil {
		e.schedule = fn
	}
	return e
}

// EvaluateOne computes the schedule and summary of a single scenario.
func (e *Evaluator) EvaluateOne(ctx context.Context, s Scenario) (Evaluation, error) {
	if err := s.Validate(); err != nil {
		return Evaluation{}, err
	}

	result, err := e.schedule(ctx, s.Loan)
	if err != nil {
		return Evaluation{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return e.EvaluateResult(ctx, s, result)
}

// EvaluateResult builds the evaluation of s around a schedule that was already
// computed for s.Loan.
func (e *Evaluator) EvaluateResult(ctx context.Context, s Scenario, result loans.Result) (Evaluation, error) {
	var err error
	summary := summarize(s.Loan, result)
	if s.Loan.ExtraPayment > 0 {
		baseline, err := e.schedule(ctx, s.Loan.WithoutExtraPayment())
		if err != nil {
			return Evaluation{}, fmt.Errorf("scenario %s baseline: %w", s.Name, err)
		}
		summary.InterestSaved = baseline.TotalInterest() - summary.TotalInterest
		summary.MonthsSaved = baseline.PeriodsUsed - summary.PeriodsUsed
	}

	evaluation := Evaluation{Scenario: s, Result: result, Summary: summary}
	if s.StartDate != "" {
		evaluation.Dates, err = datetime.PeriodDates(s.StartDate, result.PeriodsUsed)
		if err != nil {
			return Evaluation{}, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		evaluation.Summary.PayoffDate = evaluation.Dates[len(evaluation.Dates)-1]
	}

	e.logger.Debug(fmt.Sprintf("evaluated scenario %s", s.Name),
		zap.String("op", "scenario.EvaluateResult"),
		zap.Int("periods", summary.PeriodsUsed),
		zap.Float64("total_interest", summary.TotalInterest),
	)
	return evaluation, nil
}

// Evaluate computes all scenarios concurrently. Results keep the input order.
// The first failure cancels the remaining work and is returned.
func (e *Evaluator) Evaluate(ctx context.Context, scenarios []Scenario) ([]Evaluation, error) {
	evaluations := make([]Evaluation, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluation, err := e.EvaluateOne(ctx, scenarios[i])
			if err != nil {
				return err
			}
			evaluations[i] = evaluation
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Error("scenario evaluation failed",
			zap.String("op", "scenario.Evaluate"),
			zap.Error(err),
		)
		return nil, err
	}
	return evaluations, nil
}

func summarize(params loans.LoanParameters, result loans.Result) Summary {
	return Summary{
		LoanAmount:     params.LoanAmount(),
		AnnualRate:     params.AnnualRate,
		BasePayment:    result.BasePayment,
		MonthlyPayment: result.BasePayment + params.ExtraPayment,
		TotalInterest:  result.TotalInterest(),
		TotalPaid:      result.TotalPaid(),
		PeriodsUsed:    result.PeriodsUsed,
		AvgPrincipal:   result.AveragePrincipal(),
		AvgInterest:    result.AverageInterest(),
		TermYears:      result.EffectiveTermYears(),
	}
}
