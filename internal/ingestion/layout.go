package ingestion

import (
	"regexp"
	"strings"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/utils/parsing"
)

const (
	metadataScanRows = 20
	headerScanRows   = 25
	noColumn         = -1
)

var (
	fiscalYearToken = regexp.MustCompile(`(?:boekjaar|bookyear|fiscal year|jaar|year)\s*:?\s*(\d{4})`)
	periodToken     = regexp.MustCompile(`(?:periode|period)\s*:?\s*(\d{4}|\d{1,2}(?:\s*-\s*\d{1,2})?)`)
	yearToken       = regexp.MustCompile(`\b(20\d{2})\b`)
)

// headerKeywords score candidate header rows; Dutch exports first, English equivalents after.
var headerKeywords = []string{
	"grootboek", "code", "nr", "omschrijving", "naam", "balans", "bedrag", "debet", "credit", "eindsaldo",
	"account", "number", "description", "name", "balance", "amount", "debit",
}

var (
	fiscalYearKeywords = []string{"boekjaar", "bookyear", "fiscal year"}
	amountKeywords     = []string{"bedrag", "amount"}
)

// column role keywords, matched as case-insensitive substrings of the header cell
var (
	codeColumnKeywords   = []string{"grootboek", "code", "nr", "account no", "account number", "number"}
	descColumnKeywords   = []string{"omschrijving", "naam", "description", "name"}
	dateColumnKeywords   = []string{"datum", "date"}
	debitColumnKeywords  = []string{"debet", "debit"}
	creditColumnKeywords = []string{"credit"}
	amountColumnKeywords = []string{"bedrag", "amount", "saldo", "balance"}
)

// YearColumn is a wide-format column holding the values of one fiscal year.
type YearColumn struct {
	Index int    `json:"index"`
	Year  string `json:"year"`
}

// Mode is the way amounts are laid out in the data rows.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeMultiYear Mode = "multiYear"
	ModeSplit     Mode = "debitCredit"
	ModeSingle    Mode = "singleAmount"
)

// Layout describes where the header and each column role were found. Column indexes are
// -1 when the role is absent.
type Layout struct {
	HeaderRow   int          `json:"headerRow"`
	CodeCol     int          `json:"codeCol"`
	DescCol     int          `json:"descCol"`
	DateCol     int          `json:"dateCol"`
	DebitCol    int          `json:"debitCol"`
	CreditCol   int          `json:"creditCol"`
	AmountCol   int          `json:"amountCol"`
	YearColumns []YearColumn `json:"yearColumns"`
}

// Mode reports how data rows should be read. Year columns take precedence over
// debit/credit, which take precedence over a single amount column.
func (l Layout) Mode() Mode {
	switch {
	case len(l.YearColumns) > 0:
		return ModeMultiYear
	case l.DebitCol != noColumn && l.CreditCol != noColumn:
		return ModeSplit
	case l.AmountCol != noColumn:
		return ModeSingle
	default:
		return ModeNone
	}
}

// ScanMetadata looks for fiscal year and period tokens in the first rows. The first match of
// each token wins.
func ScanMetadata(rows []Row) domain.Metadata {
	var meta domain.Metadata
	for i := 0; i < len(rows) && i < metadataScanRows; i++ {
		text := parsing.RowText(rows[i])
		if meta.FiscalYear == "" {
			if m := fiscalYearToken.FindStringSubmatch(text); m != nil {
				meta.FiscalYear = m[1]
			}
		}
		if meta.Period == "" {
			if m := periodToken.FindStringSubmatch(text); m != nil {
				meta.Period = strings.ReplaceAll(m[1], " ", "")
			}
		}
		if meta.FiscalYear != "" && meta.Period != "" {
			break
		}
	}
	return meta
}

// DetectLayout finds the header row among the first rows and resolves column roles from it.
func DetectLayout(rows []Row) Layout {
	layout := Layout{
		HeaderRow: noColumn,
		CodeCol:   noColumn,
		DescCol:   noColumn,
		DateCol:   noColumn,
		DebitCol:  noColumn,
		CreditCol: noColumn,
		AmountCol: noColumn,
	}

	best := 0
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if score := headerScore(rows[i]); score > best {
			best = score
			layout.HeaderRow = i
		}
	}
	if layout.HeaderRow == noColumn {
		return layout
	}

	header := make([]string, len(rows[layout.HeaderRow]))
	for i, cell := range rows[layout.HeaderRow] {
		header[i] = strings.ToLower(strings.TrimSpace(parsing.CellText(cell)))
	}

	layout.CodeCol = findColumn(header, codeColumnKeywords)
	layout.DescCol = findColumn(header, descColumnKeywords)
	if layout.CodeCol == noColumn {
		layout.CodeCol = findColumnExcept(header, []string{"account"}, layout.DescCol)
	}
	if layout.CodeCol == noColumn {
		layout.CodeCol = layout.DescCol
	}
	if layout.DescCol == noColumn {
		layout.DescCol = layout.CodeCol
	}
	if layout.DescCol == noColumn {
		layout.DescCol = 0
	}

	layout.DateCol = findColumn(header, dateColumnKeywords)
	layout.DebitCol = findColumn(header, debitColumnKeywords)
	layout.CreditCol = findColumn(header, creditColumnKeywords)
	if layout.DebitCol == noColumn || layout.CreditCol == noColumn {
		layout.AmountCol = findColumn(header, amountColumnKeywords)
	}

	for i, h := range header {
		if m := yearToken.FindStringSubmatch(h); m != nil {
			layout.YearColumns = append(layout.YearColumns, YearColumn{Index: i, Year: m[1]})
		}
	}
	return layout
}

// headerScore counts header keywords in the row text plus one per cell holding a year.
// Metadata rows (fiscal-year keyword without an amount keyword) score zero.
func headerScore(row Row) int {
	if len(row) == 0 {
		return 0
	}
	text := parsing.RowText(row)
	if containsAny(text, fiscalYearKeywords) && !containsAny(text, amountKeywords) {
		return 0
	}

	score := 0
	for _, k := range headerKeywords {
		if strings.Contains(text, k) {
			score++
		}
	}
	for _, cell := range row {
		if yearToken.MatchString(parsing.CellText(cell)) {
			score++
		}
	}
	return score
}

func findColumn(header []string, keywords []string) int {
	for i, h := range header {
		if containsAny(h, keywords) {
			return i
		}
	}
	return noColumn
}

func findColumnExcept(header []string, keywords []string, except int) int {
	for i, h := range header {
		if i != except && containsAny(h, keywords) {
			return i
		}
	}
	return noColumn
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
