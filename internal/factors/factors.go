// Package factors owns the emission-factor reference table: the built-in
// dataset, external CSV loading, remote sync and the immutable lookup
// index. The table is loaded once and only ever read afterwards; a table
// that fails to load is the one fatal condition in the system.
package factors

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ghgreport/internal"
)

//go:embed data/default_factors.csv
var builtinCSV []byte

var ErrEmptyTable = errors.New("emission factor table is empty")

// Builtin returns the embedded default dataset.
func Builtin() ([]internal.EmissionFactor, error) {
	return parseCSV(bytes.NewReader(builtinCSV), "builtin dataset")
}

// LoadCSV reads a factor table from an external file with the same schema
// as the built-in dataset: source,scope,unit,kg_co2e_per_unit,standard.
func LoadCSV(path string) ([]internal.EmissionFactor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open factors file: %w", err)
	}
	defer f.Close()
	return parseCSV(f, path)
}

func parseCSV(r io.Reader, origin string) ([]internal.EmissionFactor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", origin, ErrEmptyTable)
	}

	header := rows[0]
	col := func(names ...string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, name := range names {
				if h == name {
					return i
				}
			}
		}
		return -1
	}
	srcIdx := col("source", "source_key")
	scopeIdx := col("scope", "scope_applicability")
	unitIdx := col("unit")
	valueIdx := col("kg_co2e_per_unit", "factor_value", "value")
	stdIdx := col("standard", "standard_origin")
	if srcIdx < 0 || scopeIdx < 0 || unitIdx < 0 || valueIdx < 0 || stdIdx < 0 {
		return nil, fmt.Errorf("%s: missing required columns (have %v)", origin, header)
	}

	out := make([]internal.EmissionFactor, 0, len(rows)-1)
	for i, row := range rows[1:] {
		factor, err := toFactor(row, srcIdx, scopeIdx, unitIdx, valueIdx, stdIdx)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", origin, i+2, err)
		}
		factor.ID = len(out) + 1
		out = append(out, factor)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", origin, ErrEmptyTable)
	}
	return out, nil
}

func toFactor(row []string, srcIdx, scopeIdx, unitIdx, valueIdx, stdIdx int) (internal.EmissionFactor, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	source := cell(srcIdx)
	if source == "" {
		return internal.EmissionFactor{}, errors.New("empty source")
	}

	scope := internal.Scope(cell(scopeIdx))
	if !internal.ValidScope(scope) || scope == internal.ScopeUnknown {
		return internal.EmissionFactor{}, fmt.Errorf("invalid scope %q", cell(scopeIdx))
	}

	unit := cell(unitIdx)
	if unit == "" {
		return internal.EmissionFactor{}, errors.New("empty unit")
	}

	value, err := strconv.ParseFloat(cell(valueIdx), 64)
	if err != nil {
		return internal.EmissionFactor{}, fmt.Errorf("invalid factor value %q", cell(valueIdx))
	}
	if value < 0 {
		return internal.EmissionFactor{}, fmt.Errorf("negative factor value %g", value)
	}

	standard := cell(stdIdx)
	if standard == "" {
		return internal.EmissionFactor{}, errors.New("empty standard")
	}

	return internal.EmissionFactor{
		Source:        source,
		Scope:         scope,
		Unit:          unit,
		KgCO2ePerUnit: value,
		Standard:      standard,
	}, nil
}
