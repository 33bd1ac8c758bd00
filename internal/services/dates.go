package services

import "time"

// DateOnly truncates a timestamp to midnight UTC so deadline arithmetic is
// insensitive to time of day and timezone of the caller
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b,
// negative when b is before a
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// SameDate reports whether two timestamps fall on the same calendar day
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
