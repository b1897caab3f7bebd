package util

import (
	"regexp"
	"strings"
)

var (
	rePunct  = regexp.MustCompile(`[^a-z0-9\s\-]`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// CleanSource lowercases and strips an activity-source label down to
// letters, digits and hyphens with single spaces. This is the lookup form
// used by the synonym table, the rule table and the factor index.
func CleanSource(input string) string {
	s := strings.ToLower(input)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = rePunct.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TitleCase renders a cleaned label in display form ("purchased
// electricity" -> "Purchased Electricity").
func TitleCase(input string) string {
	parts := strings.Fields(strings.ToLower(input))
	for i, p := range parts {
		r := []rune(p)
		if len(r) > 0 {
			parts[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(parts, " ")
}

func Tokenize(input string) []string {
	parts := strings.Split(CleanSource(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
