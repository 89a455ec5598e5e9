// Package optimizer searches for the extra monthly payment that retires a loan
// within a target number of months.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-analyzer/internal/config"
	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/format"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"github.com/iwvelando/loan-analyzer/pkg/mathutil"
	"github.com/iwvelando/loan-analyzer/pkg/optimization"
	"go.uber.org/zap"
)

// Runner applies one payoff-target directive to scenarios.
type Runner struct {
	logger    *zap.Logger
	cfg       config.OptimizerConfig
	generator *loans.ScheduleGenerator
}

type evaluation struct {
	value         float64
	periods       int
	totalInterest float64
	target        int
}

func (e evaluation) feasible() bool {
	return e.periods <= e.target
}

// Result summarizes optimizer adjustments keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// NewRunner constructs a Runner for the provided directive.
func NewRunner(logger *zap.Logger, cfg config.OptimizerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", loans.ErrInvalidParameter, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, cfg: cfg, generator: loans.NewScheduleGenerator(logger)}, nil
}

// Run optimizes every scenario.
func (r *Runner) Run(scenarios []scenario.Scenario) (*Result, error) {
	summaries := make(map[string][]optimization.Summary)
	for _, s := range scenarios {
		summary, err := r.Optimize(s)
		if err != nil {
			return nil, err
		}
		summaries[s.Name] = append(summaries[s.Name], summary)
	}
	return &Result{Summaries: summaries}, nil
}

// Optimize bisects the extra monthly payment between zero and the upper bound
// until the smallest amount meeting the target is bracketed within tolerance.
// The reported value is rounded up to whole cents.
func (r *Runner) Optimize(s scenario.Scenario) (optimization.Summary, error) {
	if err := s.Validate(); err != nil {
		return optimization.Summary{}, err
	}

	upper := r.cfg.Max
	if upper <= 0 {
		upper = s.Loan.LoanAmount()
	}

	summary := optimization.Summary{
		TargetName:      s.Name,
		Field:           r.cfg.Field,
		TargetMonths:    r.cfg.TargetMonths,
		Original:        s.Loan.ExtraPayment,
		OriginalDisplay: format.Currency(s.Loan.ExtraPayment),
	}

	lowerEval, err := r.evaluate(s.Loan, 0)
	if err != nil {
		return optimization.Summary{}, err
	}

	if lowerEval.feasible() {
		r.finish(&summary, lowerEval, lowerEval)
		summary.Converged = true
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"loan is already paid off within %d months without extra payment", r.cfg.TargetMonths))
		r.log(summary)
		return summary, nil
	}

	upperEval, err := r.evaluate(s.Loan, upper)
	if err != nil {
		return optimization.Summary{}, err
	}

	if !upperEval.feasible() {
		r.finish(&summary, upperEval, lowerEval)
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"unable to pay off within %d months with extra payment up to %s",
			r.cfg.TargetMonths, format.Currency(upper)))
		r.log(summary)
		return summary, nil
	}

	lo, hi := lowerEval.value, upperEval.value
	iterations := 0
	for !mathutil.WithinTolerance(hi, lo, r.cfg.Tolerance) && iterations < r.cfg.MaxIterations {
		mid := lo + (hi-lo)/2
		midEval, err := r.evaluate(s.Loan, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		if midEval.feasible() {
			hi = mid
		} else {
			lo = mid
		}
		iterations++
	}

	value := math.Min(math.Ceil(hi*constants.DecimalPrecision)/constants.DecimalPrecision, upper)
	finalEval, err := r.evaluate(s.Loan, value)
	if err != nil {
		return optimization.Summary{}, err
	}

	r.finish(&summary, finalEval, lowerEval)
	summary.Iterations = iterations
	summary.Converged = mathutil.WithinTolerance(hi, lo, r.cfg.Tolerance)
	if !summary.Converged {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"search stopped after %d iterations with a bracket of %s", iterations, format.Currency(hi-lo)))
	}
	r.log(summary)
	return summary, nil
}

func (r *Runner) evaluate(params loans.LoanParameters, extra float64) (evaluation, error) {
	params.ExtraPayment = extra
	result, err := r.generator.GenerateSchedule(params)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer schedule evaluation failed: %w", err)
	}
	return evaluation{
		value:         extra,
		periods:       result.PeriodsUsed,
		totalInterest: result.TotalInterest(),
		target:        r.cfg.TargetMonths,
	}, nil
}

func (r *Runner) finish(summary *optimization.Summary, chosen, baseline evaluation) {
	summary.Value = chosen.value
	summary.ValueDisplay = format.Currency(chosen.value)
	summary.PeriodsUsed = chosen.periods
	summary.TotalInterest = chosen.totalInterest
	summary.InterestSaved = mathutil.Round(baseline.totalInterest - chosen.totalInterest)
}

func (r *Runner) log(summary optimization.Summary) {
	r.logger.Info("optimizer adjusted extra payment",
		zap.String("op", "optimizer.Optimize"),
		zap.String("scenario", summary.TargetName),
		zap.Int("targetMonths", summary.TargetMonths),
		zap.Float64("originalNumeric", summary.Original),
		zap.String("originalDisplay", summary.OriginalDisplay),
		zap.Float64("optimizedNumeric", summary.Value),
		zap.String("optimizedDisplay", summary.ValueDisplay),
		zap.Int("periods", summary.PeriodsUsed),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
}
