package ingestion

import (
	"sort"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
)

// Result is the outcome of ingesting one file.
type Result struct {
	Ledger   domain.Ledger `json:"ledger"`
	Layout   Layout        `json:"layout"`
	Mode     Mode          `json:"mode"`
	RowsRead int           `json:"rowsRead"`
}

// IngestFile reads an uploaded file and ingests its first sheet.
func IngestFile(filename string, data []byte, today time.Time) (*Result, error) {
	rows, err := ReadRows(filename, data)
	if err != nil {
		return nil, err
	}
	return Ingest(rows, today)
}

// Ingest detects the layout of raw rows and normalizes every row below the header.
// It fails with ErrEmptyFile when there are no rows and ErrNoValidEntries when no row
// produced a ledger entry. Per-row anomalies are never fatal.
func Ingest(rows []Row, today time.Time) (*Result, error) {
	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	meta := ScanMetadata(rows)
	layout := DetectLayout(rows)
	normalizer := NewNormalizer(layout, today)

	var (
		entries []domain.LedgerEntry
		totals  []domain.ReportedTotal
		years   = map[string]struct{}{}
	)
	for i := layout.HeaderRow + 1; i < len(rows); i++ {
		rowEntries, rowTotals := normalizer.Normalize(i, rows[i])
		entries = append(entries, rowEntries...)
		totals = append(totals, rowTotals...)
		if layout.Mode() == ModeMultiYear {
			for _, e := range rowEntries {
				years[e.Date[:4]] = struct{}{}
			}
		}
	}

	if len(entries) == 0 {
		return nil, apperrors.ErrNoValidEntries
	}
	if totals == nil {
		totals = []domain.ReportedTotal{}
	}

	return &Result{
		Ledger: domain.Ledger{
			Entries:        entries,
			ReportedTotals: totals,
			Metadata:       meta,
			FiscalYears:    sortedYearsDesc(years),
		},
		Layout:   layout,
		Mode:     layout.Mode(),
		RowsRead: len(rows),
	}, nil
}

func sortedYearsDesc(set map[string]struct{}) []string {
	years := make([]string, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
