package parsing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CellText renders a raw cell as text. Integral numbers print without a fraction so that
// numeric account codes ("8010") survive the round trip.
func CellText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case decimal.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// RowText joins the text of every cell with single spaces, lowercased.
func RowText(row []any) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = CellText(c)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// IsNumeric reports whether a raw cell holds a number rather than text.
func IsNumeric(raw any) bool {
	switch raw.(type) {
	case float64, float32, int, int64, int32, decimal.Decimal:
		return true
	}
	return false
}
