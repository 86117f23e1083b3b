package ingestion

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/utils/accounting"
	"github.com/SscSPs/finanalysis/internal/utils/parsing"
	"github.com/shopspring/decimal"
)

const (
	// FallbackAccountCode is assigned to coded-less line items so they still reach the P&L.
	FallbackAccountCode = "9999"
	// UnknownDescription names entries whose description cell was empty.
	UnknownDescription = "Unknown"
	// DefaultTotalLabel names total rows whose description cell was empty.
	DefaultTotalLabel = "Total"
)

var (
	combinedCodePattern = regexp.MustCompile(`^(\d{3,})\s*-\s*(.*)`)
	leadingCodePattern  = regexp.MustCompile(`^(\d{4})\s`)
	nonDigits           = regexp.MustCompile(`[^0-9]`)
)

var (
	totalRowKeywords = []string{"totaal", "total"}
	labelKeywords    = []string{"totaal", "total", "balance", "balans"}
)

// Normalizer converts data rows below a detected header into ledger entries and reported totals.
type Normalizer struct {
	layout Layout
	today  time.Time
}

// NewNormalizer creates a Normalizer for one file layout. today is used for undated rows.
func NewNormalizer(layout Layout, today time.Time) *Normalizer {
	return &Normalizer{layout: layout, today: today}
}

// Normalize converts one row. Rows that are neither a total nor a valid transaction yield nothing.
func (n *Normalizer) Normalize(index int, row Row) ([]domain.LedgerEntry, []domain.ReportedTotal) {
	if isEmptyRow(row) {
		return nil, nil
	}
	if containsAny(parsing.RowText(row), totalRowKeywords) {
		return nil, n.totals(row)
	}

	l := n.layout
	var entries []domain.LedgerEntry
	switch l.Mode() {
	case ModeMultiYear:
		for _, yc := range l.YearColumns {
			debit, credit := accounting.SplitSigned(parsing.ParseAmount(cell(row, yc.Index)))
			if entry, ok := n.entry(index, nil, cell(row, l.CodeCol), cell(row, l.DescCol), debit, credit, yc.Year); ok {
				entries = append(entries, entry)
			}
		}
	case ModeSplit:
		debit, credit := accounting.NormalizeDebitCredit(
			parsing.ParseAmount(cell(row, l.DebitCol)),
			parsing.ParseAmount(cell(row, l.CreditCol)),
		)
		if entry, ok := n.entry(index, cell(row, l.DateCol), cell(row, l.CodeCol), cell(row, l.DescCol), debit, credit, ""); ok {
			entries = append(entries, entry)
		}
	case ModeSingle:
		debit, credit := accounting.SplitSigned(parsing.ParseAmount(cell(row, l.AmountCol)))
		if entry, ok := n.entry(index, cell(row, l.DateCol), cell(row, l.CodeCol), cell(row, l.DescCol), debit, credit, ""); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// totals extracts reported totals: one per year column, otherwise a single value from
// debit minus credit, the amount column or the first numeric cell. Zero values are skipped.
func (n *Normalizer) totals(row Row) []domain.ReportedTotal {
	l := n.layout
	label := strings.TrimSpace(parsing.CellText(cell(row, l.DescCol)))
	if label == "" {
		label = DefaultTotalLabel
	}

	var totals []domain.ReportedTotal
	if len(l.YearColumns) > 0 {
		for _, yc := range l.YearColumns {
			v := parsing.ParseAmount(cell(row, yc.Index))
			if !v.IsZero() {
				totals = append(totals, domain.ReportedTotal{Label: label, Value: v, FiscalYear: yc.Year})
			}
		}
		return totals
	}

	var v decimal.Decimal
	switch {
	case l.DebitCol != noColumn && l.CreditCol != noColumn:
		v = parsing.ParseAmount(cell(row, l.DebitCol)).Sub(parsing.ParseAmount(cell(row, l.CreditCol)))
	case l.AmountCol != noColumn:
		v = parsing.ParseAmount(cell(row, l.AmountCol))
	default:
		for _, c := range row {
			if parsing.IsNumeric(c) {
				v = parsing.ParseAmount(c)
				break
			}
		}
	}
	if v.IsZero() {
		return nil
	}
	return append(totals, domain.ReportedTotal{Label: label, Value: v})
}

// entry resolves date, code and description for one (row, year) and applies the emission rule.
func (n *Normalizer) entry(index int, dateRaw, codeRaw, descRaw any, debit, credit decimal.Decimal, year string) (domain.LedgerEntry, bool) {
	date := parsing.YearEndDate(year)
	if year == "" {
		date = parsing.ParseDate(dateRaw, n.today)
	}

	code, desc := resolveCodeAndDescription(
		strings.TrimSpace(parsing.CellText(codeRaw)),
		strings.TrimSpace(parsing.CellText(descRaw)),
	)

	hasAmount := !debit.IsZero() || !credit.IsZero()
	if code == "" && desc != "" && hasAmount && !containsAny(strings.ToLower(desc), labelKeywords) {
		code = FallbackAccountCode
	}
	if code == "" || !hasAmount {
		return domain.LedgerEntry{}, false
	}
	if desc == "" {
		desc = UnknownDescription
	}

	suffix := year
	if suffix == "" {
		suffix = "single"
	}
	return domain.LedgerEntry{
		ID:          fmt.Sprintf("row-%d-%s", index, suffix),
		Date:        date,
		AccountCode: code,
		Description: desc,
		Debit:       debit,
		Credit:      credit,
	}, true
}

// resolveCodeAndDescription untangles combined "8010 - Sales" cells, swapped code and
// description columns and descriptions prefixed with a four-digit code. The returned code
// holds digits only.
func resolveCodeAndDescription(code, desc string) (string, string) {
	if m := combinedCodePattern.FindStringSubmatch(code); m != nil {
		if desc == "" || desc == code {
			desc = strings.TrimSpace(m[2])
		}
		code = m[1]
	} else if m := combinedCodePattern.FindStringSubmatch(desc); m != nil {
		code = m[1]
		desc = strings.TrimSpace(m[2])
	}

	if code == "" {
		if m := leadingCodePattern.FindStringSubmatch(desc); m != nil {
			code = m[1]
		}
	}
	return nonDigits.ReplaceAllString(code, ""), desc
}

func cell(row Row, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func isEmptyRow(row Row) bool {
	for _, c := range row {
		if strings.TrimSpace(parsing.CellText(c)) != "" {
			return false
		}
	}
	return true
}
