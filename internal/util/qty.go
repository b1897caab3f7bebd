package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyPattern = regexp.MustCompile(`[$€£]`)
	numberPattern   = regexp.MustCompile(`-?\d{1,3}(?:[\s,.]\d{3})+(?:[.,]\d+)?|-?\d+(?:[.,]\d+)?`)

	thousandsDot   = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
	thousandsComma = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$`)
)

// ParseQuantity reads a free-form quantity cell. It tolerates currency
// symbols, thousand separators in dot/comma/space style and a decimal
// comma. Returns nil when the cell holds no usable number.
func ParseQuantity(input string) *float64 {
	line := strings.ReplaceAll(input, "\u00a0", " ")
	line = currencyPattern.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	token := numberPattern.FindString(line)
	if token == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(normalizeNumericToken(token), 64)
	if err != nil {
		return nil
	}
	return FloatPtr(parsed)
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if thousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if thousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	// "1,234.5" style: commas are separators.
	if strings.Contains(compact, ",") && strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
