package pipeline

import (
	"testing"

	"ghgreport/internal"
	"ghgreport/internal/rules"
	"ghgreport/internal/units"
)

func normalizedSource(source string) internal.NormalizedRecord {
	return internal.NormalizedRecord{
		RawRecord:       internal.RawRecord{LineNo: 1, Source: source},
		CanonicalSource: rules.Default().CanonicalSource(source),
		Quality:         internal.QualityClean,
	}
}

func TestClassify(t *testing.T) {
	vocab := rules.Default()

	cases := []struct {
		source string
		want   internal.Scope
	}{
		{"Diesel Generator", internal.Scope1},
		{"Natural Gas", internal.Scope1},
		{"Purchased Electricity", internal.Scope2},
		{"Grid Electricity", internal.Scope2},
		{"District Heating", internal.Scope2},
		{"Air Travel", internal.Scope3},
		{"Waste", internal.Scope3},
		{"Mystery Source", internal.ScopeUnknown},
	}

	for _, tc := range cases {
		out := Classify([]internal.NormalizedRecord{normalizedSource(tc.source)}, vocab)
		if len(out) != 1 {
			t.Fatalf("len=%d", len(out))
		}
		if out[0].Scope != tc.want {
			t.Fatalf("Classify(%q) scope=%q want %q (rule=%q)", tc.source, out[0].Scope, tc.want, out[0].Rule)
		}
	}
}

func TestClassifyKeepsOrderAndLength(t *testing.T) {
	records := Normalize([]internal.RawRecord{
		{LineNo: 1, Source: "Diesel"},
		{LineNo: 2, Source: "nobody knows"},
		{LineNo: 3, Source: "Purchased Electricity"},
	}, units.Default(), rules.Default())

	out := Classify(records, rules.Default())
	if len(out) != 3 {
		t.Fatalf("len=%d", len(out))
	}
	for i, rec := range out {
		if rec.LineNo != i+1 {
			t.Fatalf("order broken: %d at index %d", rec.LineNo, i)
		}
	}
	// Unknown classification is terminal, not an error; the record stays.
	if out[1].Scope != internal.ScopeUnknown || out[1].Rule != "" {
		t.Fatalf("unknown record: scope=%q rule=%q", out[1].Scope, out[1].Rule)
	}
}
