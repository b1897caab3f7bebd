package pipeline

import (
	"sort"

	"ghgreport/internal"
	"ghgreport/internal/factors"
	"ghgreport/internal/units"
	"ghgreport/internal/util"
)

// Matcher resolves each classified record to an emission factor. Lookup
// precedence: exact (source, scope, unit), then (source, unit) ignoring
// scope, then a keyword fallback over factor source names which may apply
// a unit conversion. Records that fail every tier stay in the output as
// UNMATCHED.
type Matcher struct {
	idx       *factors.Index
	units     *units.Table
	threshold float64
}

func NewMatcher(idx *factors.Index, table *units.Table, keywordThreshold float64) *Matcher {
	return &Matcher{idx: idx, units: table, threshold: keywordThreshold}
}

func (m *Matcher) MatchAll(records []internal.ClassifiedRecord) []internal.MatchedRecord {
	out := make([]internal.MatchedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, m.Match(r))
	}
	return out
}

func (m *Matcher) Match(rec internal.ClassifiedRecord) internal.MatchedRecord {
	source := util.CleanSource(rec.CanonicalSource)

	if f := m.idx.Exact(source, rec.Scope, rec.CanonicalUnit); f != nil {
		return matched(rec, f, internal.ReasonExact, 1)
	}

	if f := m.idx.AnyScope(source, rec.CanonicalUnit); f != nil {
		return matched(rec, f, internal.ReasonScopeFallback, 1)
	}

	if f, scale := m.keywordFallback(rec, source); f != nil {
		return matched(rec, f, internal.ReasonKeyword, scale)
	}

	return internal.MatchedRecord{
		ClassifiedRecord: rec,
		Status:           internal.MatchNotFound,
		Reason:           internal.ReasonNone,
		UnitScale:        1,
	}
}

func matched(rec internal.ClassifiedRecord, f *internal.EmissionFactor, reason internal.MatchReason, scale float64) internal.MatchedRecord {
	return internal.MatchedRecord{
		ClassifiedRecord: rec,
		Status:           internal.MatchOK,
		Reason:           reason,
		Factor:           f,
		UnitScale:        scale,
	}
}

type keywordCandidate struct {
	id    int
	score float64
}

// keywordFallback scores factors sharing tokens with the record's source
// and takes the best one above the threshold. A candidate whose unit
// cannot be reached from the record's unit is skipped.
func (m *Matcher) keywordFallback(rec internal.ClassifiedRecord, source string) (*internal.EmissionFactor, float64) {
	tokens := util.Tokenize(source)
	if len(tokens) == 0 {
		return nil, 0
	}

	ids := map[int]struct{}{}
	for _, token := range tokens {
		for id := range m.idx.TokenToFactorIDs[token] {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil, 0
	}

	candidates := make([]keywordCandidate, 0, len(ids))
	for id := range ids {
		candidate := m.idx.CleanedSourceByID[id]
		score := scoreSource(source, candidate, tokens, util.Tokenize(candidate))
		candidates = append(candidates, keywordCandidate{id: id, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	for _, c := range candidates {
		if c.score < m.threshold {
			break
		}
		f := m.idx.FactorsByID[c.id]
		scale, ok := m.unitScale(rec, f)
		if !ok {
			continue
		}
		return &f, scale
	}
	return nil, 0
}

func (m *Matcher) unitScale(rec internal.ClassifiedRecord, f internal.EmissionFactor) (float64, bool) {
	if rec.CanonicalUnit == f.Unit {
		return 1, true
	}
	if rec.CanonicalUnit == "" {
		return 0, false
	}
	return m.units.ConvertForSource(util.CleanSource(rec.CanonicalSource), rec.CanonicalUnit, f.Unit)
}

// scoreSource favors factors whose category keywords are contained in the
// record's source ("Office Waste" against factor "Waste" scores high), with
// bigram similarity as a tie-breaker.
func scoreSource(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range queryTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range candidateTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	containment := float64(overlap) / float64(len(candidateTokens))
	return 0.35*dice + 0.65*containment
}
