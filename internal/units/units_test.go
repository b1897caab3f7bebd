package units

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolve(t *testing.T) {
	table := Default()

	cases := []struct {
		input    string
		wantUnit string
		wantCat  Category
	}{
		{"kWh", UnitKWh, Energy},
		{"KWH", UnitKWh, Energy},
		{"mwh", "MWh", Energy},
		{"therms", "therm", Energy},
		{"liters", UnitLiter, Volume},
		{"Litre", UnitLiter, Volume},
		{"gal", "gallon", Volume},
		{"gallons", "gallon", Volume},
		{"m3", "m3", Volume},
		{"kg", UnitKg, Mass},
		{"tons", "tonne", Mass},
		{"lbs", "lb", Mass},
		{"km", UnitKm, Distance},
		{"miles", "mile", Distance},
		{" kg. ", UnitKg, Mass},
	}

	for _, tc := range cases {
		unit, cat, ok := table.Resolve(tc.input)
		if !ok {
			t.Fatalf("Resolve(%q) not recognized", tc.input)
		}
		if unit != tc.wantUnit || cat != tc.wantCat {
			t.Fatalf("Resolve(%q) = (%q, %q), want (%q, %q)", tc.input, unit, cat, tc.wantUnit, tc.wantCat)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	table := Default()
	for _, input := range []string{"", "widgets", "usd", "$"} {
		if _, _, ok := table.Resolve(input); ok {
			t.Fatalf("Resolve(%q) unexpectedly recognized", input)
		}
	}
}

func TestConvert(t *testing.T) {
	table := Default()

	cases := []struct {
		from, to string
		want     float64
	}{
		{"MWh", UnitKWh, 1000},
		{UnitKWh, "MWh", 0.001},
		{"therm", UnitKWh, 29.307},
		{"gallon", UnitLiter, 3.78541},
		{"m3", UnitLiter, 1000},
		{"tonne", UnitKg, 1000},
		{"lb", UnitKg, 0.453592},
		{"mile", UnitKm, 1.609344},
		{UnitKg, UnitKg, 1},
	}

	for _, tc := range cases {
		got, ok := table.Convert(tc.from, tc.to)
		if !ok {
			t.Fatalf("Convert(%q, %q) failed", tc.from, tc.to)
		}
		if !approx(got, tc.want) {
			t.Fatalf("Convert(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConvertAcrossCategoriesFails(t *testing.T) {
	table := Default()
	if _, ok := table.Convert(UnitLiter, UnitKg); ok {
		t.Fatal("liter->kg must not convert without a density")
	}
	if _, ok := table.Convert(UnitKWh, UnitKm); ok {
		t.Fatal("energy->distance must never convert")
	}
}

func TestConvertForSourceDensity(t *testing.T) {
	table := Default()

	// 1 liter of diesel weighs 0.832 kg.
	scale, ok := table.ConvertForSource("diesel", UnitLiter, UnitKg)
	if !ok {
		t.Fatal("diesel liter->kg failed")
	}
	if !approx(scale, 0.832) {
		t.Fatalf("scale = %v, want 0.832", scale)
	}

	// Substring sources resolve to the same density.
	scale2, ok := table.ConvertForSource("diesel generator", UnitLiter, UnitKg)
	if !ok || !approx(scale2, scale) {
		t.Fatalf("diesel generator scale = %v ok=%v", scale2, ok)
	}

	// Reverse direction.
	back, ok := table.ConvertForSource("diesel", UnitKg, UnitLiter)
	if !ok || !approx(back, 1/0.832) {
		t.Fatalf("kg->liter = %v ok=%v", back, ok)
	}

	// No density known: conversion must refuse.
	if _, ok := table.ConvertForSource("purchased electricity", UnitLiter, UnitKg); ok {
		t.Fatal("density conversion for electricity must fail")
	}
}
