package utils

import "time"

// TimestampLayout is the layout of every timestamp the tool prints or
// stores as text.
const TimestampLayout = "2006-01-02 15:04:05"

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatOptional renders nil as nil so JSON output keeps null.
func FormatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}

// ParseTimestamp accepts the full layout and the date-only form.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
