package datetime

import (
	"testing"
)

func TestMustParseTime(t *testing.T) {
	result := MustParseTime(DateTimeLayout, "2030-12")
	if result.Format(DateTimeLayout) != "2030-12" {
		t.Errorf("MustParseTime() = %s, expected 2030-12", result.Format(DateTimeLayout))
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateTimeLayout, "invalid-date")
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"Valid", "2025-01", false},
		{"Full date", "2025-01-15", true},
		{"Month out of range", "2025-13", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.date)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		months   int
		expected string
		wantErr  bool
	}{
		{"Add multiple years", "2025-01", 24, "2027-01", false},
		{"Subtract multiple years", "2025-01", -24, "2023-01", false},
		{"Cross year boundary forward", "2025-06", 8, "2026-02", false},
		{"Invalid date", "2025/06", 1, "2025/06", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, DateTimeLayout, tt.months)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestPeriodDates(t *testing.T) {
	dates, err := PeriodDates("2025-11", 4)
	if err != nil {
		t.Fatalf("PeriodDates() error = %v", err)
	}
	expected := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	if len(dates) != len(expected) {
		t.Fatalf("PeriodDates() returned %d dates, expected %d", len(dates), len(expected))
	}
	for i := range expected {
		if dates[i] != expected[i] {
			t.Errorf("PeriodDates()[%d] = %s, expected %s", i, dates[i], expected[i])
		}
	}

	if _, err := PeriodDates("bad", 3); err == nil {
		t.Error("PeriodDates() expected error for invalid start date")
	}
	if _, err := PeriodDates("2025-01", -1); err == nil {
		t.Error("PeriodDates() expected error for negative count")
	}
}

func TestPayoffDate(t *testing.T) {
	date, err := PayoffDate("2025-01", 360)
	if err != nil {
		t.Fatalf("PayoffDate() error = %v", err)
	}
	if date != "2054-12" {
		t.Errorf("PayoffDate() = %s, expected 2054-12", date)
	}

	if _, err := PayoffDate("2025-01", 0); err == nil {
		t.Error("PayoffDate() expected error for zero periods")
	}
}
