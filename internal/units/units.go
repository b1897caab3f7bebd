// Package units holds the unit vocabulary of the pipeline: synonym
// resolution, the canonical unit per physical category and conversion
// scales between units of the same category. Volume-to-mass bridging for
// fuels goes through a per-source density table.
package units

import "strings"

type Category string

const (
	Energy   Category = "energy"
	Volume   Category = "volume"
	Mass     Category = "mass"
	Distance Category = "distance"
)

// Canonical units per category: kWh, liter, kg, km.
const (
	UnitKWh   = "kWh"
	UnitLiter = "liter"
	UnitKg    = "kg"
	UnitKm    = "km"
)

type unitDef struct {
	Category Category
	// Scale into the category's canonical unit.
	ToCanonical float64
}

type Table struct {
	units     map[string]unitDef
	synonyms  map[string]string
	canonical map[Category]string
	// kg per liter, keyed by cleaned source label. Ordered so substring
	// fallback stays deterministic.
	densities []density
}

type density struct {
	Source     string
	KgPerLiter float64
}

func Default() *Table {
	t := &Table{
		units: map[string]unitDef{
			UnitKWh:   {Energy, 1},
			"MWh":     {Energy, 1000},
			"GJ":      {Energy, 277.778},
			"therm":   {Energy, 29.307},
			"MMBtu":   {Energy, 293.07},
			UnitLiter: {Volume, 1},
			"gallon":  {Volume, 3.78541},
			"m3":      {Volume, 1000},
			UnitKg:    {Mass, 1},
			"g":       {Mass, 0.001},
			"tonne":   {Mass, 1000},
			"lb":      {Mass, 0.453592},
			UnitKm:    {Distance, 1},
			"mile":    {Distance, 1.609344},
		},
		synonyms: map[string]string{
			"kwh":            UnitKWh,
			"kw-h":           UnitKWh,
			"kilowatt hour":  UnitKWh,
			"kilowatt hours": UnitKWh,
			"mwh":            "MWh",
			"gj":             "GJ",
			"gigajoule":      "GJ",
			"gigajoules":     "GJ",
			"therm":          "therm",
			"therms":         "therm",
			"mmbtu":          "MMBtu",
			"l":              UnitLiter,
			"lt":             UnitLiter,
			"liter":          UnitLiter,
			"liters":         UnitLiter,
			"litre":          UnitLiter,
			"litres":         UnitLiter,
			"gal":            "gallon",
			"gallon":         "gallon",
			"gallons":        "gallon",
			"m3":             "m3",
			"m^3":            "m3",
			"cubic meter":    "m3",
			"cubic meters":   "m3",
			"kg":             UnitKg,
			"kgs":            UnitKg,
			"kilogram":       UnitKg,
			"kilograms":      UnitKg,
			"g":              "g",
			"gram":           "g",
			"grams":          "g",
			"t":              "tonne",
			"ton":            "tonne",
			"tons":           "tonne",
			"tonne":          "tonne",
			"tonnes":         "tonne",
			"metric ton":     "tonne",
			"metric tons":    "tonne",
			"lb":             "lb",
			"lbs":            "lb",
			"pound":          "lb",
			"pounds":         "lb",
			"km":             UnitKm,
			"kms":            UnitKm,
			"kilometer":      UnitKm,
			"kilometers":     UnitKm,
			"kilometre":      UnitKm,
			"kilometres":     UnitKm,
			"mi":             "mile",
			"mile":           "mile",
			"miles":          "mile",
		},
		canonical: map[Category]string{
			Energy:   UnitKWh,
			Volume:   UnitLiter,
			Mass:     UnitKg,
			Distance: UnitKm,
		},
		densities: []density{
			{"diesel", 0.832},
			{"gasoline", 0.737},
			{"propane", 0.493},
			{"natural gas", 0.717 / 1000}, // gaseous at standard conditions
		},
	}
	return t
}

// Resolve maps a raw unit cell to a recognized unit name and its category.
func (t *Table) Resolve(raw string) (string, Category, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	unit, ok := t.synonyms[key]
	if !ok {
		return "", "", false
	}
	return unit, t.units[unit].Category, true
}

// Canonical returns the standard unit for a category.
func (t *Table) Canonical(cat Category) string {
	return t.canonical[cat]
}

// Convert returns the scale from one recognized unit to another within the
// same category. (5 gallon -> liter: scale 3.78541.)
func (t *Table) Convert(from, to string) (float64, bool) {
	f, okF := t.units[from]
	g, okT := t.units[to]
	if !okF || !okT || f.Category != g.Category {
		return 0, false
	}
	return f.ToCanonical / g.ToCanonical, true
}

// ConvertForSource converts between units, bridging volume and mass via the
// source's fuel density when a plain conversion is impossible. The source
// must be in cleaned (lowercase) form.
func (t *Table) ConvertForSource(source, from, to string) (float64, bool) {
	if scale, ok := t.Convert(from, to); ok {
		return scale, true
	}

	f, okF := t.units[from]
	g, okT := t.units[to]
	if !okF || !okT {
		return 0, false
	}

	density, ok := t.densityFor(source)
	if !ok {
		return 0, false
	}

	switch {
	case f.Category == Volume && g.Category == Mass:
		liters := f.ToCanonical
		kg := liters * density
		return kg / g.ToCanonical, true
	case f.Category == Mass && g.Category == Volume:
		kg := f.ToCanonical
		liters := kg / density
		return liters / g.ToCanonical, true
	}
	return 0, false
}

func (t *Table) densityFor(source string) (float64, bool) {
	for _, d := range t.densities {
		if source == d.Source || strings.Contains(source, d.Source) {
			return d.KgPerLiter, true
		}
	}
	return 0, false
}
