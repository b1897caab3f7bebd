package pipeline

import "ghgreport/internal"

// Aggregate rolls calculated records up into the reporting summary:
// per-scope totals over non-nil CO2e, plus record and data-quality
// counters that make classification gaps and match failures visible next
// to the emissions numbers. Scope order in the output is always fixed.
func Aggregate(records []internal.CalculatedRecord) internal.Summary {
	s := internal.Summary{TotalRecords: len(records)}

	totals := map[internal.Scope]*internal.ScopeSummary{}
	for _, scope := range internal.ScopeOrder() {
		totals[scope] = &internal.ScopeSummary{Scope: scope}
	}

	for _, r := range records {
		if r.Quality == internal.QualityFlagged {
			s.FlaggedCount++
		} else {
			s.CleanCount++
		}
		if r.Status == internal.MatchOK {
			s.MatchedCount++
		} else {
			s.UnmatchedCount++
		}

		t := totals[r.Scope]
		if t == nil {
			// Scopes outside the fixed set land in the unknown bucket.
			t = totals[internal.ScopeUnknown]
		}
		t.RecordCount++
		if r.CO2eKg != nil {
			t.Count++
			t.TotalKg += *r.CO2eKg
			s.GrandTotalKg += *r.CO2eKg
		}
	}

	s.GrandTotalTons = s.GrandTotalKg / 1000
	for _, scope := range internal.ScopeOrder() {
		t := totals[scope]
		t.TotalTons = t.TotalKg / 1000
		if t.Count > 0 {
			t.AvgKg = t.TotalKg / float64(t.Count)
		}
		if s.GrandTotalKg > 0 {
			t.Percent = t.TotalKg / s.GrandTotalKg * 100
		}
		s.Scopes = append(s.Scopes, *t)
	}

	return s
}
