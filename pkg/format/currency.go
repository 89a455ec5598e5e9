// Package format renders amounts for human-readable output.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 && !isNegligible(amount) {
		return "-$" + NumericCurrency(math.Abs(amount))
	}
	return "$" + NumericCurrency(math.Abs(amount))
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if isNegligible(amount) {
		amount = 0
	}
	return printer.Sprintf("%.2f", amount)
}

// Percent renders an annual rate, e.g. "5.00%".
func Percent(rate float64) string {
	return printer.Sprintf("%.2f%%", rate)
}

// Years renders a term in years with one decimal, e.g. "22.4".
func Years(years float64) string {
	return printer.Sprintf("%.1f", years)
}

// isNegligible avoids printing "-0.00" for float residue.
func isNegligible(amount float64) bool {
	return math.Abs(amount) < 0.005
}
