package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"ghgreport/internal"
)

// IngestResult carries the raw rows plus how many input rows had to be
// skipped (structurally unreadable, not data-quality issues — those are
// flagged downstream, never skipped).
type IngestResult struct {
	Records []internal.RawRecord
	Skipped int
}

// IngestFile reads an activity file into raw records. Format is "csv" or
// "xlsx".
func IngestFile(path, format string) (IngestResult, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, err
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return ParseCSV(blob)
	case "xlsx":
		return ParseXLSX(blob)
	default:
		return IngestResult{}, fmt.Errorf("unsupported input format: %s", format)
	}
}

type columnMap struct {
	source, date, qty, unit, location int
}

// ParseCSV reads spreadsheet-style CSV rows. Header columns are inferred
// from the first row; without a recognizable header, column order is
// assumed to be source, date, quantity, unit, location.
func ParseCSV(content []byte) (IngestResult, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var result IngestResult
	cols := columnMap{source: 0, date: 1, qty: 2, unit: 3, location: 4}
	lineNo := 0
	first := true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped++
				continue
			}
			return IngestResult{}, err
		}

		cells := trimCells(row)
		if first {
			first = false
			if inferred, ok := inferColumns(cells); ok {
				cols = inferred
				continue
			}
		}
		if allEmpty(cells) {
			result.Skipped++
			continue
		}

		lineNo++
		result.Records = append(result.Records, rowToRecord(lineNo, cells, cols))
	}

	return result, nil
}

// ParseXLSX reads the first non-empty worksheet the same way.
func ParseXLSX(content []byte) (IngestResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return IngestResult{}, err
	}
	defer f.Close()

	var result IngestResult
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		cols := columnMap{source: 0, date: 1, qty: 2, unit: 3, location: 4}
		lineNo := 0
		headerSeen := false
		for i, row := range rows {
			cells := trimCells(row)
			if i < 3 && !headerSeen {
				if inferred, ok := inferColumns(cells); ok {
					cols = inferred
					headerSeen = true
					continue
				}
			}
			if allEmpty(cells) {
				result.Skipped++
				continue
			}
			lineNo++
			result.Records = append(result.Records, rowToRecord(lineNo, cells, cols))
		}

		if len(result.Records) > 0 {
			return result, nil
		}
	}

	return result, nil
}

func rowToRecord(lineNo int, cells []string, cols columnMap) internal.RawRecord {
	return internal.RawRecord{
		LineNo:   lineNo,
		Source:   pickCell(cells, cols.source),
		Date:     pickCell(cells, cols.date),
		Quantity: pickCell(cells, cols.qty),
		Unit:     pickCell(cells, cols.unit),
		Location: pickCell(cells, cols.location),
	}
}

func inferColumns(headers []string) (columnMap, bool) {
	norm := make([]string, 0, len(headers))
	for _, h := range headers {
		norm = append(norm, strings.ToLower(h))
	}

	cols := columnMap{
		source:   findHeaderIndex(norm, []string{"source", "activity", "description"}),
		date:     findHeaderIndex(norm, []string{"date", "period"}),
		qty:      findHeaderIndex(norm, []string{"quantity", "amount", "qty", "value"}),
		unit:     findHeaderIndex(norm, []string{"unit", "uom"}),
		location: findHeaderIndex(norm, []string{"location", "site", "facility"}),
	}
	if cols.source < 0 && cols.qty < 0 {
		return columnMap{}, false
	}
	return cols, true
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return cells[idx]
	}
	return ""
}

func trimCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
