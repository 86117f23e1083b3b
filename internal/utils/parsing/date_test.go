package parsing_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/utils/parsing"
	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	today := time.Date(2024, time.March, 7, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "serial date", raw: float64(45292), want: "2024-01-01"},
		{name: "serial date with time fraction", raw: 45292.75, want: "2024-01-01"},
		{name: "small number falls back to today", raw: float64(1500), want: "2024-03-07"},
		{name: "day first", raw: "31-12-2023", want: "2023-12-31"},
		{name: "iso passes through", raw: "2023-06-15", want: "2023-06-15"},
		{name: "slash format is not recognised", raw: "15/06/2023", want: "2024-03-07"},
		{name: "nil is today", raw: nil, want: "2024-03-07"},
		{name: "garbage is today", raw: "yesterday", want: "2024-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsing.ParseDate(tt.raw, today))
		})
	}
}

func TestYearEndDate(t *testing.T) {
	assert.Equal(t, "2022-12-31", parsing.YearEndDate("2022"))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "8010", parsing.CellText(float64(8010)))
	assert.Equal(t, "12.5", parsing.CellText(12.5))
	assert.Equal(t, "", parsing.CellText(nil))
	assert.Equal(t, "8010 sales 1000", parsing.RowText([]any{float64(8010), "Sales", 1000}))
	assert.True(t, parsing.IsNumeric(float64(1)))
	assert.False(t, parsing.IsNumeric("1"))
}
