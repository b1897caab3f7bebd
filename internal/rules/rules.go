// Package rules holds the domain vocabulary that is data rather than code:
// the ordered scope-classification rule table and the source-name synonym
// table. Both ship with defaults and can be replaced from a YAML file so a
// compliance team can align them with GHG Protocol guidance without a
// rebuild.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ghgreport/internal"
	"ghgreport/internal/util"
)

// Rule maps a keyword over the cleaned canonical source name to a scope.
// Rules are evaluated in declaration order; first match wins, so more
// specific patterns must come before generic ones.
type Rule struct {
	Pattern string         `yaml:"pattern"`
	Scope   internal.Scope `yaml:"scope"`
}

type Table struct {
	Rules    []Rule
	Synonyms map[string]string
}

type fileFormat struct {
	Rules    []Rule            `yaml:"rules"`
	Synonyms map[string]string `yaml:"synonyms"`
}

func Default() Table {
	return Table{
		Rules: []Rule{
			{"purchased electricity", internal.Scope2},
			{"grid electricity", internal.Scope2},
			{"district heat", internal.Scope2},
			{"purchased steam", internal.Scope2},
			{"purchased heat", internal.Scope2},
			{"electricity", internal.Scope2},
			{"steam", internal.Scope2},
			{"natural gas", internal.Scope1},
			{"diesel", internal.Scope1},
			{"gasoline", internal.Scope1},
			{"petrol", internal.Scope1},
			{"propane", internal.Scope1},
			{"lpg", internal.Scope1},
			{"refrigerant", internal.Scope1},
			{"company vehicle", internal.Scope1},
			{"fleet", internal.Scope1},
			{"generator", internal.Scope1},
			{"boiler", internal.Scope1},
			{"air travel", internal.Scope3},
			{"flight", internal.Scope3},
			{"rail", internal.Scope3},
			{"train", internal.Scope3},
			{"business travel", internal.Scope3},
			{"commut", internal.Scope3},
			{"travel", internal.Scope3},
			{"freight", internal.Scope3},
			{"shipping", internal.Scope3},
			{"waste", internal.Scope3},
			{"water", internal.Scope3},
			{"paper", internal.Scope3},
			{"purchased goods", internal.Scope3},
		},
		Synonyms: map[string]string{
			"diesel generator":     "Diesel",
			"diesel gen":           "Diesel",
			"diesel fuel":          "Diesel",
			"petrol":               "Gasoline",
			"motor gasoline":       "Gasoline",
			"gas heating":          "Natural Gas",
			"natural gas heating":  "Natural Gas",
			"nat gas":              "Natural Gas",
			"grid electricity":     "Purchased Electricity",
			"electricity purchase": "Purchased Electricity",
			"electricity":          "Purchased Electricity",
			"elec":                 "Purchased Electricity",
			"district heat":        "District Heating",
			"flights":              "Air Travel",
			"flight":               "Air Travel",
			"plane travel":         "Air Travel",
			"train travel":         "Rail Travel",
			"rail":                 "Rail Travel",
			"company car":          "Company Vehicles",
			"fleet vehicles":       "Company Vehicles",
			"garbage":              "Waste",
			"landfill waste":       "Waste",
			"tap water":            "Water",
			"office paper":         "Paper",
		},
	}
}

// LoadFile reads a rule/synonym table from YAML. The file fully replaces
// the defaults for whichever section it declares.
func LoadFile(path string) (Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read rules file: %w", err)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(blob, &parsed); err != nil {
		return Table{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	t := Default()
	if len(parsed.Rules) > 0 {
		for i, r := range parsed.Rules {
			if strings.TrimSpace(r.Pattern) == "" {
				return Table{}, fmt.Errorf("rules file %s: rule %d has empty pattern", path, i+1)
			}
			if !internal.ValidScope(r.Scope) {
				return Table{}, fmt.Errorf("rules file %s: rule %q has invalid scope %q", path, r.Pattern, r.Scope)
			}
		}
		t.Rules = parsed.Rules
	}
	if len(parsed.Synonyms) > 0 {
		t.Synonyms = parsed.Synonyms
	}
	return t, nil
}

// Classify runs the source label through the rule table. The label must
// already be in cleaned form. Returns the scope and the winning pattern,
// or ScopeUnknown with an empty pattern.
func (t Table) Classify(cleanedSource string) (internal.Scope, string) {
	for _, r := range t.Rules {
		if strings.Contains(cleanedSource, r.Pattern) {
			return r.Scope, r.Pattern
		}
	}
	return internal.ScopeUnknown, ""
}

// CanonicalSource resolves a raw source label through the synonym table.
// Unknown labels pass through title-cased, never dropped.
func (t Table) CanonicalSource(raw string) string {
	cleaned := util.CleanSource(raw)
	if cleaned == "" {
		return ""
	}
	if canonical, ok := t.Synonyms[cleaned]; ok {
		return canonical
	}
	return util.TitleCase(cleaned)
}
