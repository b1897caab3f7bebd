package util

import (
	"strings"
	"time"
)

// Accepted input layouts, tried in order. First parse wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate normalizes a free-form date cell to ISO "2006-01-02".
// Returns nil when no known layout applies.
func ParseDate(input string) *string {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return StringPtr(t.Format("2006-01-02"))
		}
	}
	return nil
}
