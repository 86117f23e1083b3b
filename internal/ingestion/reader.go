// Package ingestion turns uploaded bookkeeping exports into ledger entries, source-reported
// totals and file metadata.
package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row is one raw spreadsheet row. Cells are nil (empty), float64 (numeric) or string.
type Row []any

var (
	plainNumber     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	leadingZeroCode = regexp.MustCompile(`^0\d+$`)
)

// ReadRows reads the first sheet of a workbook, or a delimited text file, into raw rows.
// The format is chosen by file extension; unknown extensions try a workbook first and
// fall back to delimited text.
func ReadRows(filename string, data []byte) ([]Row, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	var (
		rows []Row
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(data)
	case ".xls":
		rows, err = readLegacyWorkbook(data)
	case ".csv", ".tsv", ".txt":
		rows, err = readDelimited(data)
	default:
		rows, err = readWorkbook(data)
		if err != nil {
			rows, err = readDelimited(data)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	return rows, nil
}

func readWorkbook(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrUnsupportedFormat)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return typedRows(raw), nil
}

func readLegacyWorkbook(data []byte) (rows []Row, err error) {
	// the xls decoder panics on some malformed compound documents
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFormat, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFormat, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrUnsupportedFormat)
	}

	raw := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			raw = append(raw, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		raw = append(raw, cells)
	}
	return typedRows(trimTrailingEmpty(raw)), nil
}

func readDelimited(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	raw, err := r.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return typedRows(raw), nil
}

// sniffPrefix bounds how much of a delimited file is inspected to guess its delimiter.
const sniffPrefix = 1024

// sniffDelimiter picks the delimiter among ';', ',' and tab that occurs outside quotes on
// the most lines of the leading part of the file, breaking ties by total count. Metadata
// lines above the header carry none of them and do not vote.
func sniffDelimiter(data []byte) rune {
	if len(data) > sniffPrefix {
		data = data[:sniffPrefix]
	}

	lines := make(map[rune]int, 3)
	totals := make(map[rune]int, 3)
	seen := make(map[rune]bool, 3)
	inQuotes := false
	for _, r := range string(data) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == '\n':
			for d := range seen {
				lines[d]++
			}
			clear(seen)
		case r == ';' || r == ',' || r == '\t':
			totals[r]++
			seen[r] = true
		}
	}
	for d := range seen {
		lines[d]++
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if lines[d] > lines[best] || (lines[d] == lines[best] && totals[d] > totals[best]) {
			best = d
		}
	}
	return best
}

func typedRows(raw [][]string) []Row {
	rows := make([]Row, len(raw))
	for i, cells := range raw {
		row := make(Row, len(cells))
		for j, cell := range cells {
			row[j] = typedCell(cell)
		}
		rows[i] = row
	}
	return rows
}

// typedCell keeps plain numbers numeric so serial dates and numeric codes behave like
// spreadsheet values; everything else stays text.
func typedCell(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	// account codes such as "0120" keep their leading zero
	if leadingZeroCode.MatchString(s) {
		return s
	}
	if plainNumber.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

func trimTrailingEmpty(raw [][]string) [][]string {
	end := len(raw)
	for end > 0 && isBlank(raw[end-1]) {
		end--
	}
	return raw[:end]
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
