// Package datetime provides date utilities for labelling payment periods.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
)

const (
	// DateTimeLayout is the format of scenario start dates and period labels.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ValidateDate checks that date matches DateTimeLayout.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM: %w", date, err)
	}
	return nil
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// PeriodDates labels count consecutive monthly periods, the first of which
// falls on start.
func PeriodDates(start string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("period count cannot be negative, got %d", count)
	}
	startT, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	dates := make([]string, count)
	for i := range dates {
		dates[i] = startT.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return dates, nil
}

// PayoffDate returns the label of the last of periods monthly payments
// starting on start.
func PayoffDate(start string, periods int) (string, error) {
	if periods < 1 {
		return "", fmt.Errorf("payoff requires at least one period, got %d", periods)
	}
	return OffsetDate(start, DateTimeLayout, periods-1)
}
