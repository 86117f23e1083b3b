package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatWithPrecision formats an amount with the given number of decimals.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// FormatEuro renders a whole-euro amount with locale grouping: "€ 1.234" for nl, "€1,234" otherwise.
func FormatEuro(amount decimal.Decimal, language string) string {
	digits := amount.Abs().Round(0).String()
	sep := ","
	prefix := "€"
	if language == "nl" {
		sep = "."
		prefix = "€ "
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	if amount.Round(0).IsNegative() {
		return "-" + prefix + b.String()
	}
	return prefix + b.String()
}
