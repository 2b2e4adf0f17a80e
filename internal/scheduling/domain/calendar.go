package domain

import "time"

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// DateOf truncates a timestamp to its calendar date (midnight, same location).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// WeekdayIndex maps a date to the 0=Monday .. 6=Sunday convention used
// throughout the scheduling model.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateKey renders a date in the wire format, for use as a map key.
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}
