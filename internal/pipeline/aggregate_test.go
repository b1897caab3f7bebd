package pipeline

import (
	"math"
	"testing"

	"ghgreport/internal"
	"ghgreport/internal/util"
)

func calcRecord(lineNo int, scope internal.Scope, co2e *float64, quality internal.DataQuality, status internal.MatchStatus) internal.CalculatedRecord {
	return internal.CalculatedRecord{
		MatchedRecord: internal.MatchedRecord{
			ClassifiedRecord: internal.ClassifiedRecord{
				NormalizedRecord: internal.NormalizedRecord{
					RawRecord: internal.RawRecord{LineNo: lineNo},
					Quality:   quality,
				},
				Scope: scope,
			},
			Status:    status,
			UnitScale: 1,
		},
		CO2eKg: co2e,
	}
}

func TestAggregate(t *testing.T) {
	records := []internal.CalculatedRecord{
		calcRecord(1, internal.Scope1, util.FloatPtr(100), internal.QualityClean, internal.MatchOK),
		calcRecord(2, internal.Scope1, util.FloatPtr(300), internal.QualityClean, internal.MatchOK),
		calcRecord(3, internal.Scope2, util.FloatPtr(400), internal.QualityClean, internal.MatchOK),
		calcRecord(4, internal.Scope3, util.FloatPtr(200), internal.QualityFlagged, internal.MatchOK),
		calcRecord(5, internal.ScopeUnknown, nil, internal.QualityFlagged, internal.MatchNotFound),
	}

	s := Aggregate(records)

	if s.TotalRecords != 5 || s.CleanCount != 3 || s.FlaggedCount != 2 {
		t.Fatalf("counts: %+v", s)
	}
	if s.MatchedCount != 4 || s.UnmatchedCount != 1 {
		t.Fatalf("match counts: %+v", s)
	}
	if s.GrandTotalKg != 1000 || s.GrandTotalTons != 1 {
		t.Fatalf("grand total: %v kg %v t", s.GrandTotalKg, s.GrandTotalTons)
	}

	if len(s.Scopes) != 4 {
		t.Fatalf("scopes=%d", len(s.Scopes))
	}
	wantOrder := internal.ScopeOrder()
	for i, sc := range s.Scopes {
		if sc.Scope != wantOrder[i] {
			t.Fatalf("scope order: got %q at %d", sc.Scope, i)
		}
	}

	s1 := s.Scopes[0]
	if s1.TotalKg != 400 || s1.Count != 2 || s1.AvgKg != 200 || s1.Percent != 40 || s1.RecordCount != 2 {
		t.Fatalf("scope1: %+v", s1)
	}

	unknown := s.Scopes[3]
	// Unmatched records appear in the record count but add nothing to kg.
	if unknown.TotalKg != 0 || unknown.Count != 0 || unknown.RecordCount != 1 {
		t.Fatalf("unknown: %+v", unknown)
	}

	percentSum := 0.0
	for _, sc := range s.Scopes {
		percentSum += sc.Percent
	}
	if math.Abs(percentSum-100) > 1e-6 {
		t.Fatalf("percent sum=%v", percentSum)
	}
}

func TestAggregateZeroGrandTotal(t *testing.T) {
	records := []internal.CalculatedRecord{
		calcRecord(1, internal.Scope1, nil, internal.QualityFlagged, internal.MatchNotFound),
		calcRecord(2, internal.Scope2, nil, internal.QualityClean, internal.MatchNotFound),
	}

	s := Aggregate(records)
	if s.GrandTotalKg != 0 {
		t.Fatalf("grand total=%v", s.GrandTotalKg)
	}
	for _, sc := range s.Scopes {
		if sc.Percent != 0 || sc.AvgKg != 0 {
			t.Fatalf("scope %q: percent=%v avg=%v", sc.Scope, sc.Percent, sc.AvgKg)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.TotalRecords != 0 || s.GrandTotalKg != 0 || len(s.Scopes) != 4 {
		t.Fatalf("empty summary: %+v", s)
	}
}
