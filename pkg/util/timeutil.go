package util

import "time"

// NowUTC is the default clock of every service; tests replace it.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfMonth returns midnight UTC on the first day of t's calendar month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
