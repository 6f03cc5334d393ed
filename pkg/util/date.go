package util

import (
	"strings"
	"time"
)

// DateLayouts are tried in order by ParseDate. Month-first slashes come first
// because exported price histories use them; the day-first slash layout only
// matches when the month-first reading is impossible.
var DateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2006-01-02",
	"2006/01/02",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
	"02.01.2006",
	time.RFC3339,
}

// ParseDate tries DateLayouts and returns (t, true) on the first one that works.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
