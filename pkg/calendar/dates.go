package calendar

import "time"

// StartOfWeek returns the Monday-aligned start of the week containing date,
// with the time zeroed. Week numbering is Monday-first (0=Monday ... 6=Sunday)
// regardless of locale.
func StartOfWeek(date time.Time) time.Time {
	day := (int(date.Weekday()) + 6) % 7
	d := date.AddDate(0, 0, -day)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// AddDays returns date offset by n days. Negative n is allowed.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// IsSameDay reports whether a and b fall on the same local calendar day.
func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
