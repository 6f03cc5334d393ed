package util

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"03/07/2024", "3/7/2024", "2024-03-07", "Mar 07, 2024", "Mar 7, 2024", " 2024/03/07 "} {
		got, ok := ParseDate(s)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", s)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v", s, got)
		}
	}
}

func TestParseDateDayFirstFallback(t *testing.T) {
	got, ok := ParseDate("25/03/2024")
	if !ok || !got.Equal(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day-first = %v %v", got, ok)
	}
	// ambiguous dates keep the month-first reading
	got, _ = ParseDate("04/03/2024")
	if got.Month() != time.April {
		t.Fatalf("ambiguous = %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "13/45/2024"} {
		if _, ok := ParseDate(s); ok {
			t.Fatalf("ParseDate(%q) should fail", s)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "" {
		t.Fatalf("zero time = %q", got)
	}
	if got := FormatDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)); got != "2024-01-02" {
		t.Fatalf("got %q", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 4); got != 4 {
		t.Fatalf("empty = %d", got)
	}
	if got := ParseIntDefault(" 12 ", 4); got != 12 {
		t.Fatalf("trimmed = %d", got)
	}
	if got := ParseIntDefault("x", 4); got != 4 {
		t.Fatalf("invalid = %d", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a.csv, ,b.csv,")
	if len(got) != 2 || got[0] != "a.csv" || got[1] != "b.csv" {
		t.Fatalf("got %v", got)
	}
}
