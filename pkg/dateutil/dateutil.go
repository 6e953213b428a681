package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout used for dates across files, flags and the API.
const ISODate = "2006-01-02"

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock and zone of t, keeping its calendar day.
// All table dates are stored normalized so they compare with ==.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// EndOfMonth returns the last day of the month for the given date
func EndOfMonth(date time.Time) time.Time {
	return Date(date.Year(), date.Month()+1, 0)
}

// MonthBounds returns the first and last day of the given month
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := Date(year, month, 1)
	return first, EndOfMonth(first)
}

// DaysBetween returns every calendar day from start to end inclusive.
// An empty slice is returned when end precedes start.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = Normalize(start), Normalize(end)
	if end.Before(start) {
		return []time.Time{}
	}

	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// ParseDate parses a date string in the formats accepted by imports and flags.
// The result is normalized to midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	formats := []string{
		ISODate,
		"02.01.2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"02/01/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Normalize(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

// Format formats the date as YYYY-MM-DD
func Format(date time.Time) string {
	return date.Format(ISODate)
}

// Today returns today's date (local calendar day, normalized)
func Today() time.Time {
	return Normalize(time.Now())
}
