package domain_test

import (
	"testing"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionState_CommandsDoNotMutateReceiver(t *testing.T) {
	base := domain.NewInteractionState(domain.DefaultImmaterialThreshold)

	moved, err := base.MoveItem("Rent", domain.BucketOtherExpenses, domain.BucketCOGS)
	require.NoError(t, err)
	reordered, err := moved.Reorder(domain.BucketSales, []string{"Wine", "Beer"})
	require.NoError(t, err)

	assert.Empty(t, base.Overrides)
	assert.Empty(t, base.SortOrder)
	assert.Equal(t, int64(0), base.Version)

	assert.Equal(t, domain.BucketCOGS, moved.Overrides["Rent"])
	assert.Empty(t, moved.SortOrder)
	assert.Equal(t, int64(1), moved.Version)

	assert.Equal(t, domain.BucketCOGS, reordered.Overrides["Rent"])
	assert.Equal(t, []string{"Wine", "Beer"}, reordered.SortOrder[domain.BucketSales])
	assert.Equal(t, int64(2), reordered.Version)
}

func TestInteractionState_Validation(t *testing.T) {
	s := domain.NewInteractionState(domain.DefaultImmaterialThreshold)

	tests := []struct {
		name string
		run  func() error
	}{
		{name: "reorder unknown bucket", run: func() error { _, err := s.Reorder("revenue", []string{"A"}); return err }},
		{name: "move without description", run: func() error { _, err := s.MoveItem(" ", "", domain.BucketSales); return err }},
		{name: "move to unknown bucket", run: func() error { _, err := s.MoveItem("A", "", "misc"); return err }},
		{name: "move from unknown bucket", run: func() error { _, err := s.MoveItem("A", "misc", domain.BucketSales); return err }},
		{name: "malformed year", run: func() error { _, err := s.SelectYear("23"); return err }},
		{name: "negative threshold", run: func() error { _, err := s.SetImmaterialThreshold(decimal.NewFromInt(-1)); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), apperrors.ErrValidation)
		})
	}
}

func TestInteractionState_FilterAndReset(t *testing.T) {
	s := domain.NewInteractionState(domain.DefaultImmaterialThreshold)
	s = s.ToggleImmaterialFilter(true)
	s, err := s.SetImmaterialThreshold(decimal.NewFromInt(100))
	require.NoError(t, err)
	s, err = s.SelectYear("2022")
	require.NoError(t, err)
	s, err = s.Reorder(domain.BucketSales, []string{"A"})
	require.NoError(t, err)

	assert.True(t, s.HideImmaterial)
	assert.True(t, decimal.NewFromInt(100).Equal(s.ImmaterialThreshold))

	cleared, err := s.Reorder(domain.BucketSales, nil)
	require.NoError(t, err)
	assert.NotContains(t, cleared.SortOrder, domain.BucketSales)

	reset := s.Reset("2023", domain.DefaultImmaterialThreshold)
	assert.Empty(t, reset.Overrides)
	assert.Empty(t, reset.SortOrder)
	assert.False(t, reset.HideImmaterial)
	assert.Equal(t, "2023", reset.SelectedYear)
	assert.Equal(t, s.Version+1, reset.Version)
}

func TestParseBucket(t *testing.T) {
	b, err := domain.ParseBucket("nonOperationalExpenses")
	require.NoError(t, err)
	assert.Equal(t, domain.BucketNonOperationalExpenses, b)
	assert.False(t, b.IsBalanceSheet())
	assert.True(t, domain.BucketEquity.IsBalanceSheet())

	_, err = domain.ParseBucket("Sales")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLedgerEntry_Amount(t *testing.T) {
	e := domain.LedgerEntry{Date: "2023-05-01", Debit: decimal.Zero, Credit: decimal.NewFromInt(1000)}
	assert.True(t, decimal.NewFromInt(-1000).Equal(e.Amount()))
	assert.Equal(t, "2023-05", e.Month())
	assert.Equal(t, "Unknown", domain.LedgerEntry{}.Month())
}
