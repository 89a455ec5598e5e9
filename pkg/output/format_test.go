package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"github.com/iwvelando/loan-analyzer/pkg/optimization"
	"go.uber.org/zap"
)

func evaluate(t *testing.T, scenarios ...scenario.Scenario) []scenario.Evaluation {
	t.Helper()
	evaluator := scenario.NewEvaluator(zap.NewNop(), 1)
	var evaluations []scenario.Evaluation
	for _, s := range scenarios {
		evaluation, err := evaluator.EvaluateOne(context.Background(), s)
		if err != nil {
			t.Fatalf("EvaluateOne(%s) error = %v", s.Name, err)
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations
}

func shortLoan(name string, extra float64, start string) scenario.Scenario {
	return scenario.Scenario{
		Name:      name,
		StartDate: start,
		Loan:      loans.LoanParameters{Principal: 12000, AnnualRate: 6, TermYears: 1, ExtraPayment: extra},
	}
}

func TestPrettyFormatSingleScenario(t *testing.T) {
	var buf bytes.Buffer
	evaluations := evaluate(t, shortLoan("Car", 0, "2025-01"))
	if err := PrettyFormat(&buf, evaluations); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Results for scenario Car ---",
		"Loan amount:     $12,000.00",
		"Interest rate:   6.00%",
		"Monthly payment: $1,032.80",
		"Payoff term:     1.0 years (12 payments)",
		"Avg principal:   $1,000.00",
		"Avg interest:    $32.80",
		"Payoff date:     2025-12",
		"Month | Payment | Principal | Interest | Balance",
		"2025-01 | $1,032.80 | $972.80 | $60.00 | $11,027.20",
		"| $0.00\n",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat() output missing %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "Interest saved") {
		t.Errorf("PrettyFormat() printed savings for a loan without extra payment")
	}
}

func TestPrettyFormatExtraPaymentSavings(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, evaluate(t, shortLoan("Car", 500, ""))); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Interest saved:") || !strings.Contains(output, "Months saved:") {
		t.Errorf("PrettyFormat() missing savings lines\n%s", output)
	}
	if !strings.Contains(output, "\n1 | $1,532.80") {
		t.Errorf("PrettyFormat() undated rows should be labelled by month number\n%s", output)
	}
}

func TestPrettyFormatEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("PrettyFormat() with no results wrote %q", buf.String())
	}
}

func TestWriteScheduleCSV(t *testing.T) {
	tests := []struct {
		name       string
		scenario   scenario.Scenario
		wantHeader string
		wantFirst  string
		wantLast   string
		wantRows   int
	}{
		{
			name:       "Undated schedule",
			scenario:   shortLoan("Car", 0, ""),
			wantHeader: "Month,Monthly Payment,Principal,Interest,Balance",
			wantFirst:  "1,1032.80,972.80,60.00,11027.20",
			wantRows:   12,
		},
		{
			name:       "Dated schedule",
			scenario:   shortLoan("Car", 0, "2024-11"),
			wantHeader: "Month,Monthly Payment,Principal,Interest,Balance,Date",
			wantFirst:  "1,1032.80,972.80,60.00,11027.20,2024-11",
			wantLast:   "2025-10",
			wantRows:   12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteScheduleCSV(&buf, evaluate(t, tt.scenario)[0]); err != nil {
				t.Fatalf("WriteScheduleCSV() error = %v", err)
			}
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != tt.wantRows+1 {
				t.Fatalf("WriteScheduleCSV() wrote %d lines, expected %d", len(lines), tt.wantRows+1)
			}
			if lines[0] != tt.wantHeader {
				t.Errorf("header = %s, expected %s", lines[0], tt.wantHeader)
			}
			if lines[1] != tt.wantFirst {
				t.Errorf("first row = %s, expected %s", lines[1], tt.wantFirst)
			}
			last := lines[len(lines)-1]
			if !strings.Contains(last, ",0.00") {
				t.Errorf("last row = %s, expected zero balance", last)
			}
			if tt.wantLast != "" && !strings.HasSuffix(last, tt.wantLast) {
				t.Errorf("last row = %s, expected date %s", last, tt.wantLast)
			}
		})
	}
}

func TestCsvStringMatchesWriteScheduleCSV(t *testing.T) {
	evaluation := evaluate(t, shortLoan("Car", 100, "2025-01"))[0]

	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, evaluation); err != nil {
		t.Fatalf("WriteScheduleCSV() error = %v", err)
	}
	got, err := CsvString(evaluation)
	if err != nil {
		t.Fatalf("CsvString() error = %v", err)
	}
	if got != buf.String() {
		t.Errorf("CsvString() differs from WriteScheduleCSV()")
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	evaluations := evaluate(t, shortLoan("Plain", 0, ""), shortLoan("Fast", 3000, ""))
	if err := CsvFormat(&buf, evaluations); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CsvFormat() produced unreadable CSV: %v", err)
	}
	if len(records) != 13 {
		t.Fatalf("CsvFormat() wrote %d records, expected 13", len(records))
	}
	if len(records[0]) != 9 || records[0][1] != "payment (Plain)" || records[0][5] != "payment (Fast)" {
		t.Errorf("CsvFormat() header = %v", records[0])
	}

	fastPeriods := len(evaluations[1].Result.Periods)
	if fastPeriods >= 12 {
		t.Fatalf("extra payment scenario used %d periods, expected fewer than 12", fastPeriods)
	}
	after := records[fastPeriods+1]
	if after[1] == "" || after[5] != "" {
		t.Errorf("row after payoff = %v, expected only the plain scenario populated", after)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, evaluate(t, shortLoan("Car", 0, ""))); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("JSONFormat() decoded %d evaluations, expected 1", len(decoded))
	}
	if _, ok := decoded[0]["summary"]; !ok {
		t.Errorf("JSONFormat() missing summary: %v", decoded[0])
	}

	buf.Reset()
	if err := JSONFormat(&buf, nil); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("JSONFormat(nil) = %s, expected []", buf.String())
	}
}

func TestWriteDispatch(t *testing.T) {
	evaluations := evaluate(t, shortLoan("Car", 0, ""))
	for _, f := range []string{"pretty", "csv", "json"} {
		var buf bytes.Buffer
		if err := Write(&buf, f, evaluations); err != nil {
			t.Errorf("Write(%s) error = %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) wrote nothing", f)
		}
	}
	if err := Write(&bytes.Buffer{}, "xml", evaluations); err == nil {
		t.Error("Write(xml) expected error")
	}
}

func TestOptimizationFormat(t *testing.T) {
	var buf bytes.Buffer
	summaries := []optimization.Summary{
		{
			TargetName:    "House",
			Field:         "extraPayment",
			TargetMonths:  180,
			Value:         507.95,
			PeriodsUsed:   180,
			InterestSaved: 56000,
			Iterations:    25,
			Converged:     true,
		},
		{
			TargetName:   "Car",
			Field:        "extraPayment",
			TargetMonths: 1,
			Notes:        []string{"unable to pay off within 1 months"},
		},
	}
	if err := OptimizationFormat(&buf, summaries); err != nil {
		t.Fatalf("OptimizationFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"Optimization adjustments:",
		"House (extraPayment): $0.00 -> $507.95, paid off in 180 months (target 180)",
		"interest saved $56,000.00, 25 iterations, converged",
		"Car (extraPayment)",
		"not converged",
		"    note: unable to pay off within 1 months",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("OptimizationFormat() output missing %q\n%s", want, output)
		}
	}

	buf.Reset()
	if err := OptimizationFormat(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("OptimizationFormat(nil) wrote %q, err = %v", buf.String(), err)
	}
}
