package announcement

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateParser tries to read a calendar date out of a raw exchange timestamp
type DateParser func(raw string) (time.Time, bool)

// ParseDate runs parsers in order and returns the first success
func ParseDate(raw string, parsers []DateParser) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	for _, p := range parsers {
		if t, ok := p(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// NSEDateParsers read NSE an_dt values such as "02 Jan 2025" or "02-Jan-2025 18:30:45"
var NSEDateParsers = []DateParser{
	leadingTokens(3, "2 Jan 2006"),
	leadingChars(11, "2-Jan-2006"),
}

// BSEDateParsers read BSE News_submission_dt values such as "03-Jan-2025 15:30:45"
// or "2025-01-03T15:30:45.123"
var BSEDateParsers = []DateParser{
	leadingTokens(1, "2-Jan-2006"),
	isoTimestamp,
}

// leadingTokens parses the first n whitespace separated tokens with layout
func leadingTokens(n int, layout string) DateParser {
	return func(raw string) (time.Time, bool) {
		fields := strings.Fields(raw)
		if len(fields) < n {
			return time.Time{}, false
		}
		t, err := time.Parse(layout, strings.Join(fields[:n], " "))
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
}

// leadingChars parses the first n bytes with layout
func leadingChars(n int, layout string) DateParser {
	return func(raw string) (time.Time, bool) {
		if len(raw) < n {
			return time.Time{}, false
		}
		t, err := time.Parse(layout, raw[:n])
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
}

func isoTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// dateOnly drops the clock, keeping the calendar date as written
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseQueryDate parses an optional YYYY-MM-DD parameter; empty yields nil
func ParseQueryDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
