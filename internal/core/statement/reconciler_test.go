package statement_test

import (
	"testing"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/core/statement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconciliationFor(recs []domain.Reconciliation, label domain.ReconciliationLabel) domain.Reconciliation {
	for _, r := range recs {
		if r.Label == label {
			return r
		}
	}
	return domain.Reconciliation{}
}

func TestReconciler_Tolerance(t *testing.T) {
	r := statement.NewReconciler(statement.DefaultKeywords())
	st := &domain.ProcessedStatement{TotalAssets: decimal.RequireFromString("1000.40")}

	tests := []struct {
		name     string
		reported string
		want     domain.ReconciliationStatus
	}{
		{"within tolerance", "1000.00", domain.ReconciliationOK},
		{"sign is ignored", "-1000.00", domain.ReconciliationOK},
		{"outside tolerance", "995.00", domain.ReconciliationDifference},
		{"exactly one apart is a difference", "1001.40", domain.ReconciliationDifference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := r.Reconcile(st, []domain.ReportedTotal{
				{Label: "Totaal activa", Value: decimal.RequireFromString(tt.reported)},
			}, "")
			got := reconciliationFor(recs, domain.ReconcileAssets)
			assert.Equal(t, tt.want, got.Status)
			require.NotNil(t, got.Reported)
			assert.Equal(t, "Totaal activa", got.ReportedLabel)
		})
	}
}

func TestReconciler_LabelHeuristics(t *testing.T) {
	r := statement.NewReconciler(statement.DefaultKeywords())
	st := &domain.ProcessedStatement{
		TotalAssets:      decimal.NewFromInt(500),
		TotalLiabilities: decimal.NewFromInt(-300),
		TotalEquity:      decimal.NewFromInt(-200),
		NetIncome:        decimal.NewFromInt(-230),
	}
	reported := []domain.ReportedTotal{
		{Label: "Totaal vaste activa", Value: decimal.NewFromInt(400)},
		{Label: "Totaal activa", Value: decimal.NewFromInt(500)},
		{Label: "Equity invested in fixed assets", Value: decimal.NewFromInt(50)},
		{Label: "Total equity", Value: decimal.NewFromInt(200)},
		{Label: "Winst", Value: decimal.NewFromInt(999)},
	}

	recs := r.Reconcile(st, reported, "")

	require.Len(t, recs, 4)
	assets := reconciliationFor(recs, domain.ReconcileAssets)
	assert.Equal(t, "Totaal activa", assets.ReportedLabel, "fixed assets subtotal must be skipped")
	assert.Equal(t, domain.ReconciliationOK, assets.Status)
	assert.Equal(t, domain.ReconciliationUnmatched, reconciliationFor(recs, domain.ReconcileLiabilities).Status)
	equity := reconciliationFor(recs, domain.ReconcileEquity)
	assert.Equal(t, "Total equity", equity.ReportedLabel, "equity tied up in fixed assets must be skipped")
	assert.Equal(t, domain.ReconciliationOK, equity.Status)
	netResult := reconciliationFor(recs, domain.ReconcileNetResult)
	assert.Equal(t, domain.ReconciliationDifference, netResult.Status)
	assertDecimal(t, "769", netResult.Difference)
}

func TestReconciler_YearConstraint(t *testing.T) {
	r := statement.NewReconciler(statement.DefaultKeywords())
	st := &domain.ProcessedStatement{TotalAssets: decimal.NewFromInt(150)}
	reported := []domain.ReportedTotal{
		{Label: "Totaal activa", Value: decimal.NewFromInt(100), FiscalYear: "2022"},
		{Label: "Totaal activa", Value: decimal.NewFromInt(150), FiscalYear: "2023"},
	}

	assets := reconciliationFor(r.Reconcile(st, reported, "2023"), domain.ReconcileAssets)
	assert.Equal(t, domain.ReconciliationOK, assets.Status)

	assets = reconciliationFor(r.Reconcile(st, reported, ""), domain.ReconcileAssets)
	assert.Equal(t, domain.ReconciliationDifference, assets.Status, "without a year the first match wins")
}
