// Package worklog derives the calendar-day string key used to bucket all
// per-day maps (time spent, work start/end).
package worklog

import "time"

const dayLayout = "2006-01-02"

// Str returns the day key for t in t's location.
func Str(t time.Time) string {
	return t.Format(dayLayout)
}

// SameDay reports whether a and b fall on the same day key.
// The zero time never matches anything meaningful ("0001-01-01").
func SameDay(a, b time.Time) bool {
	return a.Format(dayLayout) == b.Format(dayLayout)
}
