package sheetstore

import (
	"fmt"
	"strings"
	"time"
)

const (
	timestampLayout      = "2006-01-02T15:04:05"
	timestampMicroLayout = "2006-01-02T15:04:05.000000"
	idStampLayout        = "20060102150405"
)

// FormatTimestamp renders t in local wall-clock ISO form, with microseconds
// only when they are non-zero.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampMicroLayout)
}

// ParseTimestamp reads a value written by FormatTimestamp. Offsets are
// accepted but not required; values without one are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(timestampLayout, value, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// IDStamp is the 14-digit YYYYMMDDHHMMSS suffix used in generated ids.
func IDStamp(t time.Time) string {
	return t.Format(idStampLayout)
}
