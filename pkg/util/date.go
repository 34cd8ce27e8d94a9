package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, a plain date and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 1e9 {
		if ts > 1e11 { // ms
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// LabelLayout picks the shortest layout that still tells apart points spread
// over span.
func LabelLayout(span time.Duration) string {
	switch {
	case span < time.Minute:
		return "15:04:05"
	case span < 24*time.Hour:
		return "15:04"
	case span < 365*24*time.Hour:
		return "Jan 02"
	default:
		return "2006-01"
	}
}

// ShortenTimeLabels rewrites labels to LabelLayout when every one of them is
// a timestamp; otherwise it returns them unchanged.
func ShortenTimeLabels(labels []string) []string {
	if len(labels) == 0 {
		return labels
	}
	times := make([]time.Time, len(labels))
	for i, l := range labels {
		t, ok := ParseTime(l)
		if !ok {
			return labels
		}
		times[i] = t
	}
	span := times[len(times)-1].Sub(times[0])
	if span < 0 {
		span = -span
	}
	layout := LabelLayout(span)
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(layout)
	}
	return out
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
