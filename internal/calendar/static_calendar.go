package calendar

import (
	"sort"
	"time"

	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// StaticCalendar is a fixed, in-memory holiday set
type StaticCalendar struct {
	days map[string]Holiday
}

// NewStaticCalendar creates a calendar from the given holidays.
// Duplicate dates keep the last name.
func NewStaticCalendar(holidays []Holiday) *StaticCalendar {
	sc := &StaticCalendar{days: make(map[string]Holiday, len(holidays))}
	for _, h := range holidays {
		h.Date = dateutil.Normalize(h.Date)
		sc.days[dateKey(h.Date)] = h
	}
	return sc
}

// Ukraine2025 returns the national holidays of Ukraine for 2025
func Ukraine2025() *StaticCalendar {
	return NewStaticCalendar([]Holiday{
		{Date: dateutil.Date(2025, time.January, 1), Name: "New Year"},
		{Date: dateutil.Date(2025, time.January, 7), Name: "Christmas (Julian)"},
		{Date: dateutil.Date(2025, time.March, 8), Name: "International Women's Day"},
		{Date: dateutil.Date(2025, time.April, 20), Name: "Easter"},
		{Date: dateutil.Date(2025, time.May, 1), Name: "Labour Day"},
		{Date: dateutil.Date(2025, time.May, 9), Name: "Victory Day"},
		{Date: dateutil.Date(2025, time.June, 8), Name: "Trinity"},
		{Date: dateutil.Date(2025, time.June, 28), Name: "Constitution Day"},
		{Date: dateutil.Date(2025, time.August, 24), Name: "Independence Day"},
		{Date: dateutil.Date(2025, time.October, 14), Name: "Defenders Day"},
		{Date: dateutil.Date(2025, time.December, 25), Name: "Christmas"},
	})
}

// IsHoliday checks if the given date is in the set
func (sc *StaticCalendar) IsHoliday(date time.Time) bool {
	_, ok := sc.days[dateKey(dateutil.Normalize(date))]
	return ok
}

// Name returns the holiday name for the date, if any
func (sc *StaticCalendar) Name(date time.Time) (string, bool) {
	h, ok := sc.days[dateKey(dateutil.Normalize(date))]
	return h.Name, ok
}

// Holidays returns the holidays of the given year in ascending order
func (sc *StaticCalendar) Holidays(year int) []time.Time {
	result := []time.Time{}
	for _, h := range sc.days {
		if h.Date.Year() == year {
			result = append(result, h.Date)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result
}

// Len returns the number of holidays in the set
func (sc *StaticCalendar) Len() int {
	return len(sc.days)
}
