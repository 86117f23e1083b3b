package statement_test

import (
	"testing"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/core/statement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func itemNames(items []domain.ReportItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func TestApplySortOrder(t *testing.T) {
	items := []domain.ReportItem{
		{Name: "A", Value: decimal.NewFromInt(1)},
		{Name: "B", Value: decimal.NewFromInt(2)},
		{Name: "C", Value: decimal.NewFromInt(3)},
	}

	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{"no order keeps insertion order", nil, []string{"A", "B", "C"}},
		{"listed items first", []string{"C"}, []string{"C", "A", "B"}},
		{"full order", []string{"B", "C", "A"}, []string{"B", "C", "A"}},
		{"unknown names are ignored", []string{"X", "B"}, []string{"B", "A", "C"}},
		{"duplicates are emitted once", []string{"C", "C"}, []string{"C", "A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statement.ApplySortOrder(items, tt.order)
			assert.Equal(t, tt.want, itemNames(got))
		})
	}
}

func TestGroupItems_SumsByDescription(t *testing.T) {
	items := statement.GroupItems([]domain.LedgerEntry{
		entry("4100", "Huur", 100, 0),
		entry("4200", "Energie", 50, 0),
		entry("4101", "Huur", 25, 0),
	})

	require.Len(t, items, 2)
	assert.Equal(t, []string{"Huur", "Energie"}, itemNames(items))
	assertDecimal(t, "125", items[0].Value)
}

func TestFilterEntries(t *testing.T) {
	small := entry("4100", "Koffie", 10, 0)
	big := entry("4100", "Huur", 1000, 0)
	old := big
	old.Date = "2023-12-31"
	entries := []domain.LedgerEntry{small, big, old}

	t.Run("year prefix", func(t *testing.T) {
		got := statement.FilterEntries(entries, statement.Filter{Year: "2024"})
		assert.Len(t, got, 2)
	})
	t.Run("immaterial amounts", func(t *testing.T) {
		got := statement.FilterEntries(entries, statement.Filter{HideImmaterial: true, ImmaterialThreshold: decimal.NewFromInt(50)})
		assert.Len(t, got, 2)
		for _, e := range got {
			assert.NotEqual(t, "Koffie", e.Description)
		}
	})
	t.Run("threshold is inclusive", func(t *testing.T) {
		got := statement.FilterEntries(entries, statement.Filter{HideImmaterial: true, ImmaterialThreshold: decimal.NewFromInt(10)})
		assert.Len(t, got, 3)
	})
	t.Run("filter off keeps everything", func(t *testing.T) {
		got := statement.FilterEntries(entries, statement.Filter{ImmaterialThreshold: decimal.NewFromInt(5000)})
		assert.Len(t, got, 3)
	})
}

func TestAggregate_DerivedMetrics(t *testing.T) {
	c := statement.NewClassifier(statement.DefaultKeywords())
	entries := []domain.LedgerEntry{
		entry("8010", "Sales", 0, 1000),
		entry("7010", "Food Cost", 400, 0),
		entry("4000", "Salarissen", 200, 0),
		entry("4300", "Huur", 100, 0),
		entry("4800", "Afschrijving", 50, 0),
		entry("9100", "Rente", 20, 0),
		entry("0100", "Inventaris", 500, 0),
		entry("1600", "Crediteuren", 0, 300),
		entry("0500", "Kapitaal", 0, 200),
	}

	st := statement.Aggregate(c.ClassifyAll(entries, nil), nil)

	assertDecimal(t, "-1000", st.Section(domain.BucketSales).Total)
	assertDecimal(t, "400", st.Section(domain.BucketCOGS).Total)
	assertDecimal(t, "-600", st.GrossProfit)
	assertDecimal(t, "-250", st.OperatingIncome)
	assertDecimal(t, "-230", st.NetIncome)
	assertDecimal(t, "370", st.TotalExpenses)
	assertDecimal(t, "150", st.TotalOperationalOtherExpenses)
	assertDecimal(t, "500", st.TotalAssets)
	assertDecimal(t, "-300", st.TotalLiabilities)
	assertDecimal(t, "-200", st.TotalEquity)
	assert.Equal(t, len(entries), st.EntryCount)

	for _, b := range domain.Buckets {
		section := st.Section(b)
		sum := decimal.Zero
		for _, it := range section.Items {
			sum = sum.Add(it.Value)
		}
		assert.True(t, sum.Equal(section.Total), "section %s total must equal the sum of its items", b)
	}

	require.Len(t, st.ExpenseDistribution, 5)
	assert.Equal(t, domain.BucketCOGS, st.ExpenseDistribution[0].Bucket)
	assertDecimal(t, "20", st.ExpenseDistribution[4].Value)
}

func TestAggregate_ExpenseDistributionDropsNonPositive(t *testing.T) {
	c := statement.NewClassifier(statement.DefaultKeywords())
	st := statement.Aggregate(c.ClassifyAll([]domain.LedgerEntry{
		entry("8010", "Sales", 0, 1000),
		entry("4300", "Huur", 100, 0),
		entry("9100", "Rente ontvangen", 0, 30),
	}, nil), nil)

	require.Len(t, st.ExpenseDistribution, 1)
	assert.Equal(t, domain.BucketOtherExpenses, st.ExpenseDistribution[0].Bucket)
}

func TestMonthlySeries(t *testing.T) {
	c := statement.NewClassifier(statement.DefaultKeywords())
	feb := entry("8010", "Sales", 0, 300)
	feb.Date = "2024-02-10"
	entries := []domain.LedgerEntry{
		entry("8010", "Sales", 0, 1000),
		entry("7010", "Food Cost", 400, 0),
		feb,
		entry("4990", "Resultaat", 0, 600),
		entry("1100", "Bank", 1000, 0),
	}

	series := statement.MonthlySeries(c.ClassifyAll(entries, nil))

	require.Len(t, series, 2)
	assert.Equal(t, "2024-02", series[0].Month)
	assertDecimal(t, "300", series[0].Revenue)
	assertDecimal(t, "0", series[0].Costs)
	assert.Equal(t, "2024-03", series[1].Month)
	assertDecimal(t, "1000", series[1].Revenue)
	assertDecimal(t, "400", series[1].Costs)
	assertDecimal(t, "-600", series[1].Result)
}
