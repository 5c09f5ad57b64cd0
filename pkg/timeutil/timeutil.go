// Package timeutil provides timezone and calendar-day utilities.
// Reading days are calendar days in the community timezone (Asia/Jerusalem),
// which is what streak derivation and the daily reading plan operate on.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// JerusalemTZ is the community timezone. time.LoadLocation is preferred so
// DST transitions are honored; the fixed zone is a fallback for stripped
// environments without tzdata.
var JerusalemTZ = loadJerusalem()

func loadJerusalem() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.FixedZone("Asia/Jerusalem", 2*60*60)
	}
	return loc
}

// Now returns the current time in the community timezone.
func Now() time.Time {
	return time.Now().In(JerusalemTZ)
}

// ToLocal converts a time to the community timezone.
func ToLocal(t time.Time) time.Time {
	return t.In(JerusalemTZ)
}

// Date creates a time in the community timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, JerusalemTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the community timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToLocal(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, JerusalemTZ)
}

// UntilMidnight returns the duration from t until the start of the next day.
func UntilMidnight(t time.Time) time.Duration {
	return StartOfDay(t).AddDate(0, 0, 1).Sub(t)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	al, bl := ToLocal(a), ToLocal(b)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a. AddDate-based counting stays correct
// across DST transitions, where a "day" is not always 24 hours.
func DaysBetween(a, b time.Time) int {
	start := StartOfDay(a)
	end := StartOfDay(b)
	sign := 1
	if end.Before(start) {
		start, end = end, start
		sign = -1
	}
	days := 0
	for start.Before(end) {
		start = start.AddDate(0, 0, 1)
		days++
	}
	return days * sign
}

// DayKey returns a stable per-day key (YYYY-MM-DD) in the community timezone.
// Used to de-duplicate activity timestamps into distinct reading days.
func DayKey(t time.Time) string {
	return ToLocal(t).Format("2006-01-02")
}
