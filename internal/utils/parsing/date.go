package parsing

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical ISO calendar date format used for ledger entries.
const DateLayout = "2006-01-02"

// serialEpochOffset is the number of days between the spreadsheet epoch (1899-12-30) and 1970-01-01.
const serialEpochOffset = 25569

// serialDateThreshold separates spreadsheet serial dates from ordinary numbers.
const serialDateThreshold = 20000

var (
	dayFirstDate = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseDate converts a raw cell value to an ISO date string (YYYY-MM-DD).
// Serial numbers above 20000 are read as spreadsheet dates, DD-MM-YYYY is transposed and
// YYYY-MM-DD passes through. Everything else resolves to today.
func ParseDate(raw any, today time.Time) string {
	fallback := today.Format(DateLayout)

	switch v := raw.(type) {
	case nil:
		return fallback
	case float64:
		return serialDate(v, fallback)
	case int:
		return serialDate(float64(v), fallback)
	case int64:
		return serialDate(float64(v), fallback)
	case decimal.Decimal:
		return serialDate(v.InexactFloat64(), fallback)
	case time.Time:
		return v.Format(DateLayout)
	}

	s := strings.TrimSpace(CellText(raw))
	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if isoDate.MatchString(s) {
		return s
	}
	return fallback
}

func serialDate(serial float64, fallback string) string {
	if serial <= serialDateThreshold {
		return fallback
	}
	ms := math.Round((serial - serialEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC().Format(DateLayout)
}

// YearEndDate returns the last calendar day of a fiscal year ("2023" -> "2023-12-31").
func YearEndDate(year string) string {
	return year + "-12-31"
}
