// Package timestamp provides standardized Unix timestamp handling utilities.
//
// This package uses int64 milliseconds as the canonical timestamp format to
// eliminate timestamp parsing bugs and provide consistent behavior across the
// codebase. All timestamps are stored as milliseconds since Unix epoch (UTC).
//
// Zero Value Semantics:
//   - A timestamp value of 0 means "not set" or "unknown"
//   - Functions handle zero values gracefully, returning appropriate defaults
package timestamp

import (
	"strconv"
	"time"
)

// Now returns the current time as Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to Unix milliseconds.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// ToTime converts Unix milliseconds to time.Time.
// Returns zero time if the timestamp is 0.
func ToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Format renders a Unix millisecond timestamp as RFC3339.
// Returns an empty string for the zero timestamp.
func Format(ms int64) string {
	if ms == 0 {
		return ""
	}
	return ToTime(ms).Format(time.RFC3339)
}

// Parse converts a timestamp in any supported representation to Unix
// milliseconds. Supported inputs: int64/float64 millisecond values (as
// produced by JSON decoding), numeric strings, and RFC3339 strings.
// Returns 0 for unsupported or unparseable values.
func Parse(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		if val == "" {
			return 0
		}
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			return ms
		}
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t.UnixMilli()
		}
		return 0
	default:
		return 0
	}
}
