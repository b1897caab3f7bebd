package pipeline

import "ghgreport/internal"

// Calculate computes CO2e for every matched record. Unmatched records and
// matched records with no usable quantity keep a nil CO2eKg; they stay in
// the output for audit visibility and are excluded from totals later. A
// negative result is a data-quality warning, never a fault.
func Calculate(records []internal.MatchedRecord) []internal.CalculatedRecord {
	out := make([]internal.CalculatedRecord, 0, len(records))
	for _, r := range records {
		rec := internal.CalculatedRecord{MatchedRecord: r}
		if r.Status == internal.MatchOK && r.Factor != nil && r.Qty != nil {
			v := *r.Qty * r.UnitScale * r.Factor.KgCO2ePerUnit
			rec.CO2eKg = &v
			if v < 0 {
				rec.AddFlag(internal.FlagNegativeCO2e)
			}
		}
		out = append(out, rec)
	}
	return out
}
