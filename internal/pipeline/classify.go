package pipeline

import (
	"ghgreport/internal"
	"ghgreport/internal/rules"
	"ghgreport/internal/util"
)

// Classify assigns a GHG Protocol scope to every record via the ordered
// rule table, first match wins. No rule match is a valid terminal state
// (ScopeUnknown), not an error.
func Classify(records []internal.NormalizedRecord, table rules.Table) []internal.ClassifiedRecord {
	out := make([]internal.ClassifiedRecord, 0, len(records))
	for _, r := range records {
		scope, rule := table.Classify(util.CleanSource(r.CanonicalSource))
		out = append(out, internal.ClassifiedRecord{
			NormalizedRecord: r,
			Scope:            scope,
			Rule:             rule,
		})
	}
	return out
}
