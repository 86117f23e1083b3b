package domain

import (
	"github.com/shopspring/decimal"
)

// LedgerEntry is one normalized transaction line. Amount() is the signed effect
// (debit minus credit); credit-nature buckets such as sales therefore sum negative.
type LedgerEntry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Amount returns debit minus credit.
func (e LedgerEntry) Amount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Month returns the YYYY-MM key of the entry date.
func (e LedgerEntry) Month() string {
	if len(e.Date) < 7 {
		return "Unknown"
	}
	return e.Date[:7]
}

// ReportedTotal is a total or subtotal line found in the source file. It is only used
// for reconciliation and never merged into the entries.
type ReportedTotal struct {
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	FiscalYear string          `json:"fiscalYear,omitempty"`
}

// Metadata holds the fiscal year and period tokens found in the header area of a file.
type Metadata struct {
	FiscalYear string `json:"fiscalYear,omitempty"`
	Period     string `json:"period,omitempty"`
}

// Ledger is the successful outcome of one upload.
type Ledger struct {
	Entries        []LedgerEntry   `json:"entries"`
	ReportedTotals []ReportedTotal `json:"reportedTotals"`
	Metadata       Metadata        `json:"metadata"`
	FiscalYears    []string        `json:"fiscalYears"` // distinct wide-format years, most recent first
}
