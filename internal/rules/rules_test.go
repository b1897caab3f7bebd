package rules

import (
	"os"
	"path/filepath"
	"testing"

	"ghgreport/internal"
)

func TestClassifyPrecedence(t *testing.T) {
	table := Default()

	cases := []struct {
		source string
		want   internal.Scope
		rule   string
	}{
		// "purchased electricity" must win over the generic "electricity".
		{"purchased electricity", internal.Scope2, "purchased electricity"},
		{"electricity import", internal.Scope2, "electricity"},
		{"diesel generator", internal.Scope1, "diesel"},
		{"natural gas heating", internal.Scope1, "natural gas"},
		{"natural gas", internal.Scope1, "natural gas"},
		{"air travel", internal.Scope3, "air travel"},
		{"employee commuting", internal.Scope3, "commut"},
		{"landfill waste", internal.Scope3, "waste"},
		{"mystery activity", internal.ScopeUnknown, ""},
		{"", internal.ScopeUnknown, ""},
	}

	for _, tc := range cases {
		scope, rule := table.Classify(tc.source)
		if scope != tc.want || rule != tc.rule {
			t.Fatalf("Classify(%q) = (%q, %q), want (%q, %q)", tc.source, scope, rule, tc.want, tc.rule)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := Default()
	for i := 0; i < 100; i++ {
		scope, rule := table.Classify("purchased electricity grid mix")
		if scope != internal.Scope2 || rule != "purchased electricity" {
			t.Fatalf("iteration %d: (%q, %q)", i, scope, rule)
		}
	}
}

func TestCanonicalSource(t *testing.T) {
	table := Default()

	cases := []struct {
		input string
		want  string
	}{
		{"Diesel Generator", "Diesel"},
		{"  diesel gen  ", "Diesel"},
		{"GRID ELECTRICITY", "Purchased Electricity"},
		{"Purchased Electricity", "Purchased Electricity"},
		// Unknown labels pass through title-cased, never dropped.
		{"volcano monitoring", "Volcano Monitoring"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := table.CanonicalSource(tc.input); got != tc.want {
			t.Fatalf("CanonicalSource(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	blob := []byte(`
rules:
  - pattern: solar farm
    scope: "1"
  - pattern: electricity
    scope: "2"
synonyms:
  pv array: Solar Farm
`)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rules) != 2 {
		t.Fatalf("rules=%d", len(table.Rules))
	}
	if scope, _ := table.Classify("solar farm west"); scope != internal.Scope1 {
		t.Fatalf("scope=%q", scope)
	}
	if got := table.CanonicalSource("PV Array"); got != "Solar Farm" {
		t.Fatalf("synonym=%q", got)
	}
}

func TestLoadFileRejectsBadScope(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	blob := []byte("rules:\n  - pattern: diesel\n    scope: \"7\"\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid scope")
	}
}
