package pipeline

import (
	"testing"

	"ghgreport/internal"
	"ghgreport/internal/util"
)

func matchedRecord(qty *float64, scale float64, factor *internal.EmissionFactor) internal.MatchedRecord {
	status := internal.MatchOK
	reason := internal.ReasonExact
	if factor == nil {
		status = internal.MatchNotFound
		reason = internal.ReasonNone
	}
	return internal.MatchedRecord{
		ClassifiedRecord: internal.ClassifiedRecord{
			NormalizedRecord: internal.NormalizedRecord{
				RawRecord: internal.RawRecord{LineNo: 1},
				Qty:       qty,
				Quality:   internal.QualityClean,
			},
			Scope: internal.Scope2,
		},
		Status:    status,
		Reason:    reason,
		Factor:    factor,
		UnitScale: scale,
	}
}

func TestCalculate(t *testing.T) {
	electricity := &internal.EmissionFactor{ID: 1, Source: "Purchased Electricity", Scope: internal.Scope2, Unit: "kWh", KgCO2ePerUnit: 0.4, Standard: "EPA"}

	out := Calculate([]internal.MatchedRecord{
		matchedRecord(util.FloatPtr(1000), 1, electricity),
		matchedRecord(util.FloatPtr(5), 1, nil),
		matchedRecord(nil, 1, electricity),
	})
	if len(out) != 3 {
		t.Fatalf("len=%d", len(out))
	}

	if out[0].CO2eKg == nil || *out[0].CO2eKg != 400.0 {
		t.Fatalf("co2e=%v, want exactly 400.0", out[0].CO2eKg)
	}
	if out[1].CO2eKg != nil {
		t.Fatalf("unmatched record must keep nil co2e, got %v", *out[1].CO2eKg)
	}
	if out[2].CO2eKg != nil {
		t.Fatalf("matched record without quantity must keep nil co2e, got %v", *out[2].CO2eKg)
	}
}

func TestCalculateAppliesUnitScale(t *testing.T) {
	diesel := &internal.EmissionFactor{ID: 2, Source: "Diesel", Scope: internal.Scope1, Unit: "liter", KgCO2ePerUnit: 2.0, Standard: "DEFRA"}
	out := Calculate([]internal.MatchedRecord{matchedRecord(util.FloatPtr(10), 0.5, diesel)})
	if out[0].CO2eKg == nil || *out[0].CO2eKg != 10 {
		t.Fatalf("co2e=%v, want 10", out[0].CO2eKg)
	}
}

func TestCalculateFlagsNegative(t *testing.T) {
	factor := &internal.EmissionFactor{ID: 3, Source: "Diesel", Scope: internal.Scope1, Unit: "liter", KgCO2ePerUnit: 2.68, Standard: "DEFRA"}
	out := Calculate([]internal.MatchedRecord{matchedRecord(util.FloatPtr(-4), 1, factor)})

	rec := out[0]
	if rec.CO2eKg == nil || *rec.CO2eKg >= 0 {
		t.Fatalf("co2e=%v", rec.CO2eKg)
	}
	// Negative emissions are a data-quality warning, not a fault.
	if rec.Quality != internal.QualityFlagged || !hasFlag(rec.Flags, internal.FlagNegativeCO2e) {
		t.Fatalf("quality=%q flags=%v", rec.Quality, rec.Flags)
	}
}
