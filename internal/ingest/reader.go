package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one raw record keyed by header caption
type Row map[string]string

// ReadCSV streams a delimited export, calling fn for every data row.
// The header row is cleaned (BOM, surrounding blanks) and returned.
// Short rows are padded with empty fields rather than rejected.
func ReadCSV(r io.Reader, comma rune, fn func(Row) error) ([]string, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	record, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header row: %w", err)
	}
	headers := cleanHeaders(record)

	count := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn line is a data-quality signal, not a batch failure.
			slog.Warn("Skipping unreadable row", slog.Int("row", count+1), slog.Any("error", err))
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return headers, count, err
		}
		count++
	}
	return headers, count, nil
}

// ReadFile opens a delimited export file and streams it through fn.
// Files with an .xlsx extension are read as workbooks; everything else
// as CSV with the given delimiter.
func ReadFile(path string, comma rune, fn func(Row) error) ([]string, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadWorkbook(path, fn)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, comma, fn)
}

// ReadWorkbook streams the first sheet of an Excel export. Some store
// chains deliver the same tabular extract as .xlsx; the first row is
// the header, exactly like the CSV form.
func ReadWorkbook(path string, fn func(Row) error) ([]string, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}
	headers := cleanHeaders(rows[0])

	count := 0
	for _, record := range rows[1:] {
		row := make(Row, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			row[h] = record[i]
			if strings.TrimSpace(record[i]) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if err := fn(row); err != nil {
			return headers, count, err
		}
		count++
	}
	return headers, count, nil
}

func cleanHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		h = strings.TrimPrefix(h, "\uFEFF")
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}
