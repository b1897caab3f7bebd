package factors

import (
	"ghgreport/internal"
	"ghgreport/internal/util"
)

type exactKey struct {
	Source string
	Scope  internal.Scope
	Unit   string
}

type sourceUnitKey struct {
	Source string
	Unit   string
}

// Index is the read-only lookup structure over a loaded factor table.
// Keys are cleaned source labels; build once, share freely.
type Index struct {
	FactorsByID       map[int]internal.EmissionFactor
	ByKey             map[exactKey][]internal.EmissionFactor
	BySourceUnit      map[sourceUnitKey][]internal.EmissionFactor
	TokenToFactorIDs  map[string]map[int]struct{}
	CleanedSourceByID map[int]string
}

func BuildIndex(list []internal.EmissionFactor) *Index {
	idx := &Index{
		FactorsByID:       map[int]internal.EmissionFactor{},
		ByKey:             map[exactKey][]internal.EmissionFactor{},
		BySourceUnit:      map[sourceUnitKey][]internal.EmissionFactor{},
		TokenToFactorIDs:  map[string]map[int]struct{}{},
		CleanedSourceByID: map[int]string{},
	}

	for _, f := range list {
		idx.FactorsByID[f.ID] = f
		cleaned := util.CleanSource(f.Source)
		idx.CleanedSourceByID[f.ID] = cleaned

		idx.ByKey[exactKey{cleaned, f.Scope, f.Unit}] = append(idx.ByKey[exactKey{cleaned, f.Scope, f.Unit}], f)
		idx.BySourceUnit[sourceUnitKey{cleaned, f.Unit}] = append(idx.BySourceUnit[sourceUnitKey{cleaned, f.Unit}], f)

		for _, token := range util.Tokenize(f.Source) {
			if _, ok := idx.TokenToFactorIDs[token]; !ok {
				idx.TokenToFactorIDs[token] = map[int]struct{}{}
			}
			idx.TokenToFactorIDs[token][f.ID] = struct{}{}
		}
	}

	return idx
}

// Exact looks up (source, scope, unit). Source must be cleaned.
func (idx *Index) Exact(source string, scope internal.Scope, unit string) *internal.EmissionFactor {
	hits := idx.ByKey[exactKey{source, scope, unit}]
	if len(hits) == 0 {
		return nil
	}
	f := hits[0]
	return &f
}

// AnyScope looks up (source, unit) ignoring scope. When several scopes
// carry the same source/unit pair, the lowest scope wins for determinism.
func (idx *Index) AnyScope(source, unit string) *internal.EmissionFactor {
	hits := idx.BySourceUnit[sourceUnitKey{source, unit}]
	if len(hits) == 0 {
		return nil
	}
	best := hits[0]
	for _, f := range hits[1:] {
		if f.Scope < best.Scope || (f.Scope == best.Scope && f.ID < best.ID) {
			best = f
		}
	}
	return &best
}
