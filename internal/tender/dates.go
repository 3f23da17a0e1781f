package tender

import (
	"strings"
	"time"
)

// closingDateLayouts are tried in order when parsing a closing date.
var closingDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseClosingDate parses the calendar date of a closing date string.
// The returned time is midnight UTC of that date.
func ParseClosingDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range closingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DaysUntil returns the number of calendar days from now's date to the closing
// date. ok is false when the record has no parseable closing date.
func (r Record) DaysUntil(now time.Time) (days int, ok bool) {
	closing, ok := ParseClosingDate(r.ClosingDate)
	if !ok {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(closing.Sub(today).Hours() / 24), true
}
