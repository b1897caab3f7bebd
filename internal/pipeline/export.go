package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ghgreport/internal"
)

// ExportXLSX writes the full record set (original order, one row per input
// record) and the summary into a two-sheet workbook.
func ExportXLSX(records []internal.CalculatedRecord, summary internal.Summary, outputPath string) error {
	f := excelize.NewFile()
	recordsSheet := f.GetSheetName(0)
	if err := f.SetSheetName(recordsSheet, "Records"); err != nil {
		return err
	}
	writeRecordsSheet(f, "Records", records)

	if _, err := f.NewSheet("Summary"); err != nil {
		return err
	}
	writeSummarySheet(f, "Summary", summary)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

var recordHeaders = []string{
	"line_no", "raw_source", "raw_date", "raw_quantity", "raw_unit", "location",
	"canonical_source", "canonical_date", "quantity", "unit",
	"data_quality", "flags", "scope", "rule",
	"match_status", "match_reason", "factor_source", "factor_unit", "factor_value", "standard",
	"co2e_kg",
}

func writeRecordsSheet(f *excelize.File, sheet string, records []internal.CalculatedRecord) {
	for i, h := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.LineNo)
		set(2, rec.RawRecord.Source)
		set(3, rec.RawRecord.Date)
		set(4, rec.RawRecord.Quantity)
		set(5, rec.RawRecord.Unit)
		set(6, rec.Location)
		set(7, rec.CanonicalSource)
		set(8, derefString(rec.CanonicalDate))
		set(9, derefFloat(rec.Qty))
		set(10, rec.CanonicalUnit)
		set(11, string(rec.Quality))
		set(12, joinFlags(rec.Flags))
		set(13, string(rec.Scope))
		set(14, rec.Rule)
		set(15, string(rec.Status))
		set(16, string(rec.Reason))
		if rec.Factor != nil {
			set(17, rec.Factor.Source)
			set(18, rec.Factor.Unit)
			set(19, rec.Factor.KgCO2ePerUnit)
			set(20, rec.Factor.Standard)
		}
		set(21, derefFloat(rec.CO2eKg))
	}
}

func writeSummarySheet(f *excelize.File, sheet string, summary internal.Summary) {
	row := 1
	set := func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
	kv := func(key string, value any) {
		set(1, key)
		set(2, value)
		row++
	}

	kv("total_records", summary.TotalRecords)
	kv("clean_records", summary.CleanCount)
	kv("flagged_records", summary.FlaggedCount)
	kv("matched_records", summary.MatchedCount)
	kv("unmatched_records", summary.UnmatchedCount)
	kv("factors_matched", fmt.Sprintf("%d/%d", summary.MatchedCount, summary.TotalRecords))
	kv("grand_total_kg", summary.GrandTotalKg)
	kv("grand_total_tons", summary.GrandTotalTons)
	row++

	for i, h := range []string{"scope", "total_kg", "total_tons", "count", "avg_kg", "percent", "record_count"} {
		set(i+1, h)
	}
	row++
	for _, sc := range summary.Scopes {
		set(1, string(sc.Scope))
		set(2, sc.TotalKg)
		set(3, sc.TotalTons)
		set(4, sc.Count)
		set(5, sc.AvgKg)
		set(6, sc.Percent)
		set(7, sc.RecordCount)
		row++
	}
}

func joinFlags(flags []string) string {
	return strings.Join(flags, ";")
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
