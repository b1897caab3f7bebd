package pipeline

import (
	"strings"

	"ghgreport/internal"
	"ghgreport/internal/rules"
	"ghgreport/internal/units"
	"ghgreport/internal/util"
)

// Normalize cleans raw activity rows into canonical form: ISO dates,
// category-standard units, synonym-resolved source labels. Output is 1:1
// with input and order-preserving; problems become flags, never drops.
func Normalize(raw []internal.RawRecord, table *units.Table, vocab rules.Table) []internal.NormalizedRecord {
	out := make([]internal.NormalizedRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeOne(r, table, vocab))
	}
	return out
}

func normalizeOne(r internal.RawRecord, table *units.Table, vocab rules.Table) internal.NormalizedRecord {
	rec := internal.NormalizedRecord{RawRecord: r, Quality: internal.QualityClean}

	rec.CanonicalSource = vocab.CanonicalSource(r.Source)
	if rec.CanonicalSource == "" {
		rec.AddFlag(internal.FlagMissingSource)
	}

	if strings.TrimSpace(r.Date) == "" {
		rec.AddFlag(internal.FlagMissingDate)
	} else {
		rec.CanonicalDate = util.ParseDate(r.Date)
		if rec.CanonicalDate == nil {
			rec.AddFlag(internal.FlagUnparseableDate)
		}
	}

	qty := parseQuantityCell(r.Quantity, &rec)
	unit, category, unitOK := resolveUnit(r.Unit, table, &rec)
	rec.CanonicalUnit = unit
	rec.Category = string(category)

	if qty != nil && unitOK {
		canonical := table.Canonical(category)
		if scale, ok := table.Convert(unit, canonical); ok {
			v := *qty * scale
			rec.Qty = &v
			rec.CanonicalUnit = canonical
		} else {
			rec.Qty = qty
		}
	} else {
		// Best effort: keep whatever number we have, in whatever unit
		// came in. The record is already flagged.
		rec.Qty = qty
	}

	return rec
}

func parseQuantityCell(cell string, rec *internal.NormalizedRecord) *float64 {
	if strings.TrimSpace(cell) == "" {
		rec.AddFlag(internal.FlagMissingQuantity)
		return nil
	}
	qty := util.ParseQuantity(cell)
	if qty == nil {
		rec.AddFlag(internal.FlagUnparseableQuantity)
	}
	return qty
}

func resolveUnit(cell string, table *units.Table, rec *internal.NormalizedRecord) (string, units.Category, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		rec.AddFlag(internal.FlagMissingUnit)
		return "", "", false
	}
	unit, category, ok := table.Resolve(trimmed)
	if !ok {
		// Unrecognized units pass through unconverted.
		rec.AddFlag(internal.FlagUnknownUnit)
		return trimmed, "", false
	}
	return unit, category, true
}
