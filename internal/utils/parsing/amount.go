// Package parsing converts raw spreadsheet cell values into amounts, dates and text.
// Every function here is total: malformed input yields a safe default instead of an error.
package parsing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyReplacer removes currency markers and grouping whitespace before separator detection.
var currencyReplacer = strings.NewReplacer(
	"€", "", "$", "", "£", "", "EUR", "", "eur", "",
	" ", "", " ", "", "\t", "",
)

// ParseAmount converts a raw cell value to a decimal amount.
//
// Numbers pass through unchanged. Strings may carry a trailing minus ("100-"), Dutch
// grouping ("1.234,56") or English grouping ("1,234.56"); when both separators occur
// the one appearing last is the decimal separator, and a lone comma is treated as a
// decimal comma. Anything unparseable yields zero.
func ParseAmount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case int32:
		return decimal.NewFromInt32(v)
	case string:
		return parseAmountString(v)
	default:
		return parseAmountString(CellText(v))
	}
}

func parseAmountString(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}
	s = currencyReplacer.Replace(s)

	dot := strings.Index(s, ".")
	comma := strings.Index(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if dot < comma {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, ok := leadingDecimal(s)
	if !ok {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// leadingDecimal parses the longest numeric prefix of s ("12.5abc" -> 12.5).
func leadingDecimal(s string) (decimal.Decimal, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
			digits++
		}
		end = frac
	}
	if digits == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s[:end], "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
