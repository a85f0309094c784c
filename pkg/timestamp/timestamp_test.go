package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToUnixMs(t *testing.T) {
	assert.Equal(t, int64(0), ToUnixMs(time.Time{}), "zero time maps to 0")

	ref := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(1672574400000), ToUnixMs(ref))
}

func TestToTime(t *testing.T) {
	assert.True(t, ToTime(0).IsZero(), "0 maps to zero time")

	got := ToTime(1672574400000)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.January, got.Month())
}

func TestRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond).UTC()
	assert.Equal(t, now, ToTime(ToUnixMs(now)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
	}{
		{"int64 millis", int64(1672574400000), 1672574400000},
		{"float64 millis from JSON", float64(1672574400000), 1672574400000},
		{"numeric string", "1672574400000", 1672574400000},
		{"rfc3339 string", "2023-01-01T12:00:00Z", 1672574400000},
		{"empty string", "", 0},
		{"garbage string", "not a time", 0},
		{"unsupported type", struct{}{}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Parse(test.input))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(0))
	assert.Equal(t, "2023-01-01T12:00:00Z", Format(1672574400000))
}
