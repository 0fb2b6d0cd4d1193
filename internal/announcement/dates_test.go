package announcement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate_NSE(t *testing.T) {
	cases := map[string]string{
		"02 Jan 2025":          "2025-01-02",
		"2 jan 2025 10:15:00":  "2025-01-02",
		"05-Jan-2025 18:30:45": "2025-01-05",
		"17-DEC-2024":          "2024-12-17",
	}
	for raw, want := range cases {
		got, ok := ParseDate(raw, NSEDateParsers)
		if assert.True(t, ok, raw) {
			assert.Equal(t, want, got.Format(dateLayout), raw)
		}
	}
}

func TestParseDate_Unparsable(t *testing.T) {
	for _, raw := range []string{"", "   ", "yesterday", "2025/01/02"} {
		_, ok := ParseDate(raw, NSEDateParsers)
		assert.False(t, ok, raw)
	}
}

func TestParseDate_BSE(t *testing.T) {
	cases := map[string]string{
		"03-Jan-2025 15:30:45":    "2025-01-03",
		"2025-01-03T15:30:45.123": "2025-01-03",
		"2025-01-03T15:30:45":     "2025-01-03",
	}
	for raw, want := range cases {
		got, ok := ParseDate(raw, BSEDateParsers)
		if assert.True(t, ok, raw) {
			assert.Equal(t, want, got.Format(dateLayout), raw)
		}
	}
}

func TestParseQueryDate(t *testing.T) {
	d, err := ParseQueryDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseQueryDate("2025-01-02")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), *d)

	_, err = ParseQueryDate("02-01-2025")
	assert.Error(t, err)
}
