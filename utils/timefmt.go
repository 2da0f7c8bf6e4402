package utils

import "time"

const isoLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders a timestamp the way API responses expect:
// ISO-8601 with a trailing Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// FormatTimestampPtr renders an optional timestamp, or nil when unset.
func FormatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}
