package statement

import (
	"sort"
	"strings"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Filter selects the entry population a statement is computed over.
type Filter struct {
	Year                string
	HideImmaterial      bool
	ImmaterialThreshold decimal.Decimal
}

// FilterEntries applies the year and immaterial-amount filters. Both run before grouping
// so section totals reflect the filtered population exactly.
func FilterEntries(entries []domain.LedgerEntry, f Filter) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if f.Year != "" && !strings.HasPrefix(e.Date, f.Year) {
			continue
		}
		if f.HideImmaterial && e.Amount().Abs().LessThan(f.ImmaterialThreshold) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ClassifiedEntry pairs an entry with the bucket it was assigned to.
type ClassifiedEntry struct {
	Entry  domain.LedgerEntry
	Bucket domain.Bucket
}

// ClassifyAll classifies entries in order.
func (c *Classifier) ClassifyAll(entries []domain.LedgerEntry, overrides map[string]domain.Bucket) []ClassifiedEntry {
	out := make([]ClassifiedEntry, len(entries))
	for i, e := range entries {
		out[i] = ClassifiedEntry{Entry: e, Bucket: c.Classify(e, overrides)}
	}
	return out
}

// GroupItems sums the amounts of entries sharing a description, keeping first-seen order.
func GroupItems(entries []domain.LedgerEntry) []domain.ReportItem {
	index := map[string]int{}
	items := make([]domain.ReportItem, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Description]; ok {
			items[i].Value = items[i].Value.Add(e.Amount())
			continue
		}
		index[e.Description] = len(items)
		items = append(items, domain.ReportItem{Name: e.Description, Value: e.Amount()})
	}
	return items
}

// ApplySortOrder emits the items named in order first, in that order, followed by the
// remaining items in their original relative order. Unknown names are ignored.
func ApplySortOrder(items []domain.ReportItem, order []string) []domain.ReportItem {
	if len(order) == 0 {
		return items
	}
	pending := make(map[string]int, len(items))
	for i, it := range items {
		pending[it.Name] = i
	}
	out := make([]domain.ReportItem, 0, len(items))
	for _, name := range order {
		if i, ok := pending[name]; ok {
			out = append(out, items[i])
			delete(pending, name)
		}
	}
	for _, it := range items {
		if _, ok := pending[it.Name]; ok {
			out = append(out, it)
		}
	}
	return out
}

// NewSection builds a section whose total is the exact sum of its items.
func NewSection(items []domain.ReportItem) domain.ReportSection {
	values := make([]decimal.Decimal, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	return domain.ReportSection{Items: items, Total: accounting.Sum(values...)}
}

// Aggregate builds every section from classified entries and fills in the derived metrics,
// the monthly series and the expense distribution.
func Aggregate(classified []ClassifiedEntry, sortOrder map[domain.Bucket][]string) *domain.ProcessedStatement {
	byBucket := make(map[domain.Bucket][]domain.LedgerEntry, len(domain.Buckets))
	for _, ce := range classified {
		byBucket[ce.Bucket] = append(byBucket[ce.Bucket], ce.Entry)
	}

	st := &domain.ProcessedStatement{Sections: make(map[domain.Bucket]domain.ReportSection, len(domain.Buckets))}
	for _, b := range domain.Buckets {
		st.Sections[b] = NewSection(ApplySortOrder(GroupItems(byBucket[b]), sortOrder[b]))
	}

	total := func(b domain.Bucket) decimal.Decimal { return st.Sections[b].Total }
	sales, cogs := total(domain.BucketSales), total(domain.BucketCOGS)
	labor, other := total(domain.BucketLabor), total(domain.BucketOtherExpenses)
	depreciation, nonOp := total(domain.BucketDepreciation), total(domain.BucketNonOperationalExpenses)

	st.GrossProfit = sales.Add(cogs)
	st.OperatingIncome = accounting.Sum(st.GrossProfit, labor, other, depreciation)
	st.NetIncome = st.OperatingIncome.Add(nonOp)
	st.TotalOperationalOtherExpenses = other.Add(depreciation)
	st.TotalExpenses = accounting.Sum(labor, other, depreciation, nonOp)
	st.TotalAssets = total(domain.BucketAssets)
	st.TotalLiabilities = total(domain.BucketLiabilities)
	st.TotalEquity = total(domain.BucketEquity)

	st.MonthlySeries = MonthlySeries(classified)
	st.ExpenseDistribution = ExpenseDistribution(st)
	st.EntryCount = len(classified)
	return st
}

type monthTotals struct {
	revenue decimal.Decimal
	costs   decimal.Decimal
}

// MonthlySeries accumulates P&L entries (code 4000 and up) per year-month. Sales count as
// revenue, every other P&L bucket as costs; results adjustments are left out.
func MonthlySeries(classified []ClassifiedEntry) []domain.MonthlyPoint {
	months := map[string]*monthTotals{}
	for _, ce := range classified {
		f := FactsOf(ce.Entry)
		if !f.NumericCode || f.Code < profitAndLossFrom {
			continue
		}
		if ce.Bucket == domain.BucketResultsAdjustments || ce.Bucket.IsBalanceSheet() {
			continue
		}
		key := ce.Entry.Month()
		m, ok := months[key]
		if !ok {
			m = &monthTotals{}
			months[key] = m
		}
		if ce.Bucket == domain.BucketSales {
			m.revenue = m.revenue.Add(ce.Entry.Amount())
		} else {
			m.costs = m.costs.Add(ce.Entry.Amount())
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]domain.MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		series = append(series, domain.MonthlyPoint{
			Month:   k,
			Revenue: m.revenue.Abs(),
			Costs:   m.costs,
			Result:  m.revenue.Add(m.costs),
		})
	}
	return series
}

var expenseBuckets = []domain.Bucket{
	domain.BucketCOGS,
	domain.BucketLabor,
	domain.BucketOtherExpenses,
	domain.BucketDepreciation,
	domain.BucketNonOperationalExpenses,
}

// ExpenseDistribution lists the strictly positive expense section totals.
func ExpenseDistribution(st *domain.ProcessedStatement) []domain.DistributionSlice {
	out := []domain.DistributionSlice{}
	for _, b := range expenseBuckets {
		if t := st.Section(b).Total; t.IsPositive() {
			out = append(out, domain.DistributionSlice{Bucket: b, Value: t})
		}
	}
	return out
}
