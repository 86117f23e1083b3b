package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/utils/parsing"
	"github.com/shopspring/decimal"
)

type demoNature int

const (
	demoDebit demoNature = iota
	demoCredit
)

// demoGroup is one family of generated accounts: a two-digit code prefix, a value range and
// the side the amount is booked on.
type demoGroup struct {
	prefix   string
	min, max int
	nature   demoNature
	nl, en   []string
}

var demoGroups = []demoGroup{
	{"80", 15000, 35000, demoCredit,
		[]string{"Verkoop Eten", "Verkoop Drank", "Wijn", "Bier"},
		[]string{"Food Sales", "Beverage Sales", "Wine", "Beer"}},
	{"70", 5000, 10000, demoDebit,
		[]string{"Inkoop Eten", "Inkoop Drank"},
		[]string{"Food Cost", "Beverage Cost"}},
	{"40", 1000, 5000, demoDebit,
		[]string{"Huur", "Gas/Water/Licht", "Marketing", "Onderhoud"},
		[]string{"Rent", "Utilities", "Marketing", "Repairs & Maintenance"}},
	{"48", 500, 1500, demoDebit,
		[]string{"Afschrijving Inventaris", "Afschrijving Verbouwing"},
		[]string{"Depreciation Inventory", "Depreciation Improvements"}},
	{"90", 500, 2000, demoDebit,
		[]string{"Rentelasten Bank", "Vennootschapsbelasting", "Bankkosten"},
		[]string{"Interest Expense", "Corporate Tax", "Bank Charges"}},
	{"01", 5000, 50000, demoDebit,
		[]string{"Inventaris", "Computers", "Debiteuren", "Bank ING"},
		[]string{"Inventory", "Computers", "Accounts Receivable", "Bank ING"}},
	{"16", 2000, 20000, demoCredit,
		[]string{"Crediteuren", "Lening Rabobank", "BTW Te Betalen"},
		[]string{"Accounts Payable", "Loan Rabobank", "VAT Payable"}},
	{"05", 10000, 100000, demoCredit,
		[]string{"Aandelenkapitaal", "Winstreserve", "Resultaat geselecteerde perioden"},
		[]string{"Share Capital", "Retained Earnings", "Result Current Period"}},
}

// GenerateDemoLedger builds a small hospitality ledger dated today. The same rng seed always
// yields the same ledger. language "nl" selects Dutch descriptions, anything else English.
func GenerateDemoLedger(language string, rng *rand.Rand, today time.Time) domain.Ledger {
	date := today.Format(parsing.DateLayout)
	var entries []domain.LedgerEntry
	for _, g := range demoGroups {
		names := g.en
		if language == "nl" {
			names = g.nl
		}
		for _, name := range names {
			amount := decimal.NewFromInt(int64(rng.Intn(g.max-g.min) + g.min))
			e := domain.LedgerEntry{
				ID:          fmt.Sprintf("demo-%d", len(entries)+1),
				Date:        date,
				AccountCode: fmt.Sprintf("%s%02d", g.prefix, rng.Intn(99)),
				Description: name,
				Debit:       decimal.Zero,
				Credit:      decimal.Zero,
			}
			if g.nature == demoCredit {
				e.Credit = amount
			} else {
				e.Debit = amount
			}
			entries = append(entries, e)
		}
	}
	return domain.Ledger{
		Entries:        entries,
		ReportedTotals: []domain.ReportedTotal{},
		Metadata:       domain.Metadata{FiscalYear: date[:4]},
		FiscalYears:    []string{},
	}
}
