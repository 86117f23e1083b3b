package domain

import (
	"github.com/shopspring/decimal"
)

// ReportItem is one grouped statement line: every entry sharing a description, summed.
type ReportItem struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// ReportSection holds the items of one bucket. Total is always the exact sum of the item values.
type ReportSection struct {
	Items []ReportItem    `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyPoint is one month of the revenue/cost chart series.
type MonthlyPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"` // absolute revenue
	Costs   decimal.Decimal `json:"costs"`
	Result  decimal.Decimal `json:"result"` // signed revenue plus costs
}

// DistributionSlice is one positive expense total for the cost breakdown chart.
type DistributionSlice struct {
	Bucket Bucket          `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

// KeyRatios are expressed in the human sign convention (revenue and profit positive).
type KeyRatios struct {
	GrossMarginPct decimal.Decimal `json:"grossMarginPct"`
	NetMarginPct   decimal.Decimal `json:"netMarginPct"`
	EquityRatioPct decimal.Decimal `json:"equityRatioPct"`
	DebtRatioPct   decimal.Decimal `json:"debtRatioPct"`
	AssetTurnover  decimal.Decimal `json:"assetTurnover"`
}

// ReconciliationLabel names a canonical total that can be checked against the source file.
type ReconciliationLabel string

const (
	ReconcileAssets      ReconciliationLabel = "assets"
	ReconcileLiabilities ReconciliationLabel = "liabilities"
	ReconcileEquity      ReconciliationLabel = "equity"
	ReconcileNetResult   ReconciliationLabel = "netResult"
)

// ReconciliationStatus is the outcome of one reconciliation check.
type ReconciliationStatus string

const (
	ReconciliationOK         ReconciliationStatus = "OK"
	ReconciliationDifference ReconciliationStatus = "DIFFERENCE"
	ReconciliationUnmatched  ReconciliationStatus = "UNMATCHED"
)

// Reconciliation annotates a computed total with the matching source-reported total, if any.
type Reconciliation struct {
	Label         ReconciliationLabel  `json:"label"`
	Computed      decimal.Decimal      `json:"computed"`
	ReportedLabel string               `json:"reportedLabel,omitempty"`
	Reported      *decimal.Decimal     `json:"reported,omitempty"`
	Difference    decimal.Decimal      `json:"difference"`
	Status        ReconciliationStatus `json:"status"`
}

// ProcessedStatement is the read-only snapshot produced by one full recomputation.
type ProcessedStatement struct {
	Sections map[Bucket]ReportSection `json:"sections"`

	GrossProfit                   decimal.Decimal `json:"grossProfit"`
	OperatingIncome               decimal.Decimal `json:"operatingIncome"`
	NetIncome                     decimal.Decimal `json:"netIncome"` // negative means profit
	TotalExpenses                 decimal.Decimal `json:"totalExpenses"`
	TotalOperationalOtherExpenses decimal.Decimal `json:"totalOperationalOtherExpenses"`
	TotalAssets                   decimal.Decimal `json:"totalAssets"`
	TotalLiabilities              decimal.Decimal `json:"totalLiabilities"`
	TotalEquity                   decimal.Decimal `json:"totalEquity"`

	MonthlySeries       []MonthlyPoint      `json:"monthlySeries"`
	ExpenseDistribution []DistributionSlice `json:"expenseDistribution"`
	KeyRatios           KeyRatios           `json:"keyRatios"`
	Reconciliation      []Reconciliation    `json:"reconciliation"`

	Metadata       Metadata        `json:"metadata"`
	FiscalYears    []string        `json:"fiscalYears"`
	SelectedYear   string          `json:"selectedYear,omitempty"`
	ReportedTotals []ReportedTotal `json:"reportedTotals"`
	EntryCount     int             `json:"entryCount"`
	Version        int64           `json:"version"`
}

// Section returns the section for b, or an empty section.
func (p *ProcessedStatement) Section(b Bucket) ReportSection {
	if s, ok := p.Sections[b]; ok {
		return s
	}
	return ReportSection{Items: []ReportItem{}, Total: decimal.Zero}
}
