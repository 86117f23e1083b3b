package ingestion_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/ingestion"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

func TestIngest_DebitCreditLedger(t *testing.T) {
	rows := []ingestion.Row{
		{"Grootboekkaart"},
		{"Boekjaar: 2023", nil, "Periode: 1-12"},
		{},
		{"Datum", "Grootboek", "Omschrijving", "Debet", "Credit"},
		{float64(45000), float64(8010), "Omzet", nil, float64(1000)},
		{"31-01-2023", "7010 - Inkoop", "", float64(400), nil},
		{nil, nil, "Kasverschil", float64(12.5), nil},
		{nil, nil, "Totaal", float64(412.5), float64(1000)},
		{nil, nil, nil, nil, nil},
	}

	result, err := ingestion.Ingest(rows, today)
	require.NoError(t, err)

	ledger := result.Ledger
	assert.Equal(t, "2023", ledger.Metadata.FiscalYear)
	assert.Equal(t, "1-12", ledger.Metadata.Period)
	assert.Empty(t, ledger.FiscalYears, "only wide-format columns contribute fiscal years")
	assert.Equal(t, ingestion.ModeSplit, result.Mode)
	assert.Equal(t, 3, result.Layout.HeaderRow)

	require.Len(t, ledger.Entries, 3)
	assert.Equal(t, "8010", ledger.Entries[0].AccountCode)
	assert.Equal(t, "2023-03-15", ledger.Entries[0].Date)
	assert.Equal(t, "7010", ledger.Entries[1].AccountCode)
	assert.Equal(t, "Inkoop", ledger.Entries[1].Description)
	assert.Equal(t, "9999", ledger.Entries[2].AccountCode)

	require.Len(t, ledger.ReportedTotals, 1)
	assert.True(t, decimal.RequireFromString("-587.5").Equal(ledger.ReportedTotals[0].Value))
}

func TestIngest_MultiYearCollectsFiscalYears(t *testing.T) {
	rows := []ingestion.Row{
		{"Code", "Omschrijving", "2022", "2023"},
		{"4000", "Huur", float64(100), float64(150)},
		{"0100", "Inventaris", nil, float64(900)},
	}

	result, err := ingestion.Ingest(rows, today)
	require.NoError(t, err)

	assert.Equal(t, []string{"2023", "2022"}, result.Ledger.FiscalYears)
	require.Len(t, result.Ledger.Entries, 3)
	assert.Equal(t, "2022-12-31", result.Ledger.Entries[0].Date)
	assert.Equal(t, "2023-12-31", result.Ledger.Entries[1].Date)
	assert.Equal(t, "Huur", result.Ledger.Entries[0].Description)
	assert.Equal(t, "Huur", result.Ledger.Entries[1].Description)
}

func TestIngest_Failures(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		_, err := ingestion.Ingest(nil, today)
		assert.ErrorIs(t, err, apperrors.ErrEmptyFile)
	})

	t.Run("no header", func(t *testing.T) {
		rows := []ingestion.Row{{"foo", "bar"}, {float64(1), float64(2)}}
		_, err := ingestion.Ingest(rows, today)
		assert.ErrorIs(t, err, apperrors.ErrNoValidEntries)
	})

	t.Run("only totals and zero rows", func(t *testing.T) {
		rows := []ingestion.Row{
			{"Code", "Omschrijving", "Bedrag"},
			{"4000", "Huur", float64(0)},
			{nil, "Totaal", float64(10)},
		}
		_, err := ingestion.Ingest(rows, today)
		assert.ErrorIs(t, err, apperrors.ErrNoValidEntries)
	})
}
