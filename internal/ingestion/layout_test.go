package ingestion_test

import (
	"testing"

	"github.com/SscSPs/finanalysis/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMetadata(t *testing.T) {
	tests := []struct {
		name       string
		rows       []ingestion.Row
		wantYear   string
		wantPeriod string
	}{
		{
			name:       "dutch header block",
			rows:       []ingestion.Row{{"Proefbalans"}, {"Boekjaar: 2023"}, {"Periode: 1 - 12"}},
			wantYear:   "2023",
			wantPeriod: "1-12",
		},
		{
			name:       "english tokens in one row",
			rows:       []ingestion.Row{{"Fiscal year 2022", "Period 2022"}},
			wantYear:   "2022",
			wantPeriod: "2022",
		},
		{
			name:     "first match wins",
			rows:     []ingestion.Row{{"Year: 2021"}, {"Year: 2024"}},
			wantYear: "2021",
		},
		{
			name: "absent tokens stay unset",
			rows: []ingestion.Row{{"Code", "Description"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ingestion.ScanMetadata(tt.rows)
			assert.Equal(t, tt.wantYear, meta.FiscalYear)
			assert.Equal(t, tt.wantPeriod, meta.Period)
		})
	}
}

func TestDetectLayout_SplitColumns(t *testing.T) {
	rows := []ingestion.Row{
		{"Kolommenbalans"},
		{"Boekjaar: 2023"},
		{"Datum", "Grootboek", "Omschrijving", "Debet", "Credit"},
		{"01-02-2023", float64(8010), "Omzet", nil, float64(1000)},
	}

	layout := ingestion.DetectLayout(rows)

	assert.Equal(t, 2, layout.HeaderRow)
	assert.Equal(t, 0, layout.DateCol)
	assert.Equal(t, 1, layout.CodeCol)
	assert.Equal(t, 2, layout.DescCol)
	assert.Equal(t, 3, layout.DebitCol)
	assert.Equal(t, 4, layout.CreditCol)
	assert.Equal(t, -1, layout.AmountCol)
	assert.Empty(t, layout.YearColumns)
	assert.Equal(t, ingestion.ModeSplit, layout.Mode())
}

func TestDetectLayout_SingleAmountWhenCreditMissing(t *testing.T) {
	rows := []ingestion.Row{{"Account", "Description", "Debit", "Amount"}}

	layout := ingestion.DetectLayout(rows)

	require.Equal(t, 0, layout.HeaderRow)
	assert.Equal(t, 0, layout.CodeCol)
	assert.Equal(t, 1, layout.DescCol)
	assert.Equal(t, 2, layout.DebitCol)
	assert.Equal(t, -1, layout.CreditCol)
	assert.Equal(t, 3, layout.AmountCol)
	assert.Equal(t, ingestion.ModeSingle, layout.Mode())
}

func TestDetectLayout_YearColumnsTakePrecedence(t *testing.T) {
	rows := []ingestion.Row{
		{"Code", "Omschrijving", "Debet", "Credit", "Eindsaldo 2022", float64(2023)},
	}

	layout := ingestion.DetectLayout(rows)

	assert.Equal(t, []ingestion.YearColumn{{Index: 4, Year: "2022"}, {Index: 5, Year: "2023"}}, layout.YearColumns)
	assert.Equal(t, ingestion.ModeMultiYear, layout.Mode())
}

func TestDetectLayout_DescriptionFallbacks(t *testing.T) {
	layout := ingestion.DetectLayout([]ingestion.Row{{"Omschrijving", "Bedrag"}})
	assert.Equal(t, 0, layout.DescCol)
	assert.Equal(t, 0, layout.CodeCol, "code column falls back to the description column")

	layout = ingestion.DetectLayout([]ingestion.Row{{"Bedrag", "Debet"}})
	assert.Equal(t, -1, layout.CodeCol)
	assert.Equal(t, 0, layout.DescCol, "description falls back to the first column")
}

func TestDetectLayout_HeaderSelection(t *testing.T) {
	t.Run("metadata row with fiscal year keyword is skipped", func(t *testing.T) {
		rows := []ingestion.Row{
			{"Boekjaar 2023", "Code", "Naam"},
			{"Code", "Naam"},
		}
		assert.Equal(t, 1, ingestion.DetectLayout(rows).HeaderRow)
	})

	t.Run("fiscal year keyword with amount keyword still counts", func(t *testing.T) {
		rows := []ingestion.Row{{"Boekjaar", "Code", "Bedrag"}}
		assert.Equal(t, 0, ingestion.DetectLayout(rows).HeaderRow)
	})

	t.Run("ties favour the earliest row", func(t *testing.T) {
		rows := []ingestion.Row{
			{"Code", "Naam"},
			{"Code", "Naam"},
		}
		assert.Equal(t, 0, ingestion.DetectLayout(rows).HeaderRow)
	})

	t.Run("no keywords means no header", func(t *testing.T) {
		rows := []ingestion.Row{{"foo", "bar"}, {float64(1), float64(2)}}
		layout := ingestion.DetectLayout(rows)
		assert.Equal(t, -1, layout.HeaderRow)
		assert.Equal(t, ingestion.ModeNone, layout.Mode())
	})

	t.Run("rows beyond the scan window are ignored", func(t *testing.T) {
		rows := make([]ingestion.Row, 30)
		rows[26] = ingestion.Row{"Code", "Naam", "Debet", "Credit"}
		assert.Equal(t, -1, ingestion.DetectLayout(rows).HeaderRow)
	})
}
