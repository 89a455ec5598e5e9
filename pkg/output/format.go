// Package output provides utilities for formatting and displaying loan schedules.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/format"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"github.com/iwvelando/loan-analyzer/pkg/optimization"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ScheduleHeader is the column header of an exported schedule.
var ScheduleHeader = []string{"Month", "Monthly Payment", "Principal", "Interest", "Balance"}

// PrettyFormat writes a human-readable summary and schedule table per scenario.
func PrettyFormat(w io.Writer, evaluations []scenario.Evaluation) error {
	p := message.NewPrinter(language.English)
	for i, evaluation := range evaluations {
		s := evaluation.Summary
		lines := []string{
			fmt.Sprintf("--- Results for scenario %s ---", evaluation.Scenario.Name),
			fmt.Sprintf("Loan amount:     %s", format.Currency(s.LoanAmount)),
			fmt.Sprintf("Interest rate:   %s", format.Percent(s.AnnualRate)),
			fmt.Sprintf("Monthly payment: %s", format.Currency(s.MonthlyPayment)),
			fmt.Sprintf("Total interest:  %s", format.Currency(s.TotalInterest)),
			fmt.Sprintf("Total paid:      %s", format.Currency(s.TotalPaid)),
			fmt.Sprintf("Payoff term:     %s years (%d payments)", format.Years(s.TermYears), s.PeriodsUsed),
			fmt.Sprintf("Avg principal:   %s", format.Currency(s.AvgPrincipal)),
			fmt.Sprintf("Avg interest:    %s", format.Currency(s.AvgInterest)),
		}
		if s.PayoffDate != "" {
			lines = append(lines, fmt.Sprintf("Payoff date:     %s", s.PayoffDate))
		}
		if evaluation.Scenario.Loan.ExtraPayment > 0 {
			lines = append(lines,
				fmt.Sprintf("Interest saved:  %s", format.Currency(s.InterestSaved)),
				fmt.Sprintf("Months saved:    %d", s.MonthsSaved),
			)
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "\nMonth | Payment | Principal | Interest | Balance\n_____ | _______ | _________ | ________ | _______\n"); err != nil {
			return err
		}
		for j, period := range evaluation.Result.Periods {
			label := strconv.Itoa(period.Month)
			if j < len(evaluation.Dates) {
				label = evaluation.Dates[j]
			}
			if _, err := p.Fprintf(w, "%s | $%.2f | $%.2f | $%.2f | $%.2f\n",
				label, period.Payment, period.Principal, period.Interest, period.Balance); err != nil {
				return err
			}
		}
		if i < len(evaluations)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// CsvFormat writes the schedules of several scenarios side by side, one row per
// month. Scenarios that finish early leave their columns empty.
func CsvFormat(w io.Writer, evaluations []scenario.Evaluation) error {
	cw := csv.NewWriter(w)

	header := []string{"month"}
	maxPeriods := 0
	for _, evaluation := range evaluations {
		name := evaluation.Scenario.Name
		header = append(header,
			fmt.Sprintf("payment (%s)", name),
			fmt.Sprintf("principal (%s)", name),
			fmt.Sprintf("interest (%s)", name),
			fmt.Sprintf("balance (%s)", name),
		)
		if n := len(evaluation.Result.Periods); n > maxPeriods {
			maxPeriods = n
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for month := 0; month < maxPeriods; month++ {
		row := []string{strconv.Itoa(month + 1)}
		for _, evaluation := range evaluations {
			if month >= len(evaluation.Result.Periods) {
				row = append(row, "", "", "", "")
				continue
			}
			period := evaluation.Result.Periods[month]
			row = append(row, cents(period.Payment), cents(period.Principal), cents(period.Interest), cents(period.Balance))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScheduleCSV writes one evaluated schedule. A Date column is appended
// when the scenario has a start date.
func WriteScheduleCSV(w io.Writer, evaluation scenario.Evaluation) error {
	cw := csv.NewWriter(w)
	dated := len(evaluation.Dates) == len(evaluation.Result.Periods) && len(evaluation.Dates) > 0

	header := append([]string{}, ScheduleHeader...)
	if dated {
		header = append(header, "Date")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, period := range evaluation.Result.Periods {
		row := scheduleRow(period)
		if dated {
			row = append(row, evaluation.Dates[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString renders a single schedule as CSV text.
func CsvString(evaluation scenario.Evaluation) (string, error) {
	var sb strings.Builder
	if err := WriteScheduleCSV(&sb, evaluation); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// JSONFormat writes the evaluations as an indented JSON array.
func JSONFormat(w io.Writer, evaluations []scenario.Evaluation) error {
	if evaluations == nil {
		evaluations = []scenario.Evaluation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(evaluations)
}

// Write dispatches to the writer for the named output format.
func Write(w io.Writer, outputFormat string, evaluations []scenario.Evaluation) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, evaluations)
	case constants.OutputFormatCSV:
		return CsvFormat(w, evaluations)
	case constants.OutputFormatJSON:
		return JSONFormat(w, evaluations)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

func scheduleRow(period loans.PaymentPeriod) []string {
	return []string{
		strconv.Itoa(period.Month),
		cents(period.Payment),
		cents(period.Principal),
		cents(period.Interest),
		cents(period.Balance),
	}
}

// cents renders a value rounded half away from zero to two places.
func cents(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(constants.CurrencyPlaces)
}

// OptimizationFormat writes one line per optimizer summary, followed by its notes.
func OptimizationFormat(w io.Writer, summaries []optimization.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Optimization adjustments:"); err != nil {
		return err
	}
	for _, s := range summaries {
		original, value := s.OriginalDisplay, s.ValueDisplay
		if original == "" {
			original = format.Currency(s.Original)
		}
		if value == "" {
			value = format.Currency(s.Value)
		}
		status := "converged"
		if !s.Converged {
			status = "not converged"
		}
		if _, err := fmt.Fprintf(w, "  %s (%s): %s -> %s, paid off in %d months (target %d), interest saved %s, %d iterations, %s\n",
			s.TargetName, s.Field, original, value, s.PeriodsUsed, s.TargetMonths,
			format.Currency(s.InterestSaved), s.Iterations, status); err != nil {
			return err
		}
		for _, note := range s.Notes {
			if _, err := fmt.Fprintf(w, "    note: %s\n", note); err != nil {
				return err
			}
		}
	}
	return nil
}
