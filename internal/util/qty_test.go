package util

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain integer", input: "1000", want: 1000},
		{name: "thousand comma", input: "1,200", want: 1200},
		{name: "thousand space", input: "12 500", want: 12500},
		{name: "thousand dot", input: "1.000", want: 1000},
		{name: "decimal comma", input: "1,5", want: 1.5},
		{name: "decimal dot", input: "2.75", want: 2.75},
		{name: "mixed separators", input: "1,234.5", want: 1234.5},
		{name: "currency prefix", input: "$450.00", want: 450},
		{name: "negative", input: "-12", want: -12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := ParseQuantity(tc.input)
			if parsed == nil {
				t.Fatalf("qty is nil")
			}
			if *parsed != tc.want {
				t.Fatalf("got %v want %v", *parsed, tc.want)
			}
		})
	}
}

func TestParseQuantityRejectsNonNumeric(t *testing.T) {
	for _, input := range []string{"", "   ", "n/a", "unknown"} {
		if got := ParseQuantity(input); got != nil {
			t.Fatalf("ParseQuantity(%q) = %v, want nil", input, *got)
		}
	}
}
