package pipeline

import (
	"ghgreport/internal"
	"ghgreport/internal/factors"
	"ghgreport/internal/rules"
	"ghgreport/internal/units"
)

// Pipeline bundles the static tables every stage reads. Build once per
// reference-table load; safe for concurrent use, nothing here mutates.
type Pipeline struct {
	Units            *units.Table
	Vocab            rules.Table
	Index            *factors.Index
	KeywordThreshold float64
}

func New(idx *factors.Index, table *units.Table, vocab rules.Table, keywordThreshold float64) *Pipeline {
	return &Pipeline{
		Units:            table,
		Vocab:            vocab,
		Index:            idx,
		KeywordThreshold: keywordThreshold,
	}
}

// Run executes the full transformation over one batch of raw records:
// normalize, classify, match, calculate, aggregate. The calculated set is
// 1:1 with the input in original order.
func (p *Pipeline) Run(raw []internal.RawRecord) ([]internal.CalculatedRecord, internal.Summary) {
	normalized := Normalize(raw, p.Units, p.Vocab)
	classified := Classify(normalized, p.Vocab)
	matchedRecords := NewMatcher(p.Index, p.Units, p.KeywordThreshold).MatchAll(classified)
	calculated := Calculate(matchedRecords)
	return calculated, Aggregate(calculated)
}
