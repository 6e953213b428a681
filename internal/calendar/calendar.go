package calendar

import "time"

// HolidayCalendar answers whether a date is a public holiday.
// Implementations compare calendar days only; the clock part of the date is ignored.
type HolidayCalendar interface {
	// IsHoliday checks if the given date is a public holiday
	IsHoliday(date time.Time) bool

	// Holidays returns the holidays of the given year in ascending order
	Holidays(year int) []time.Time
}

// Holiday is a single named entry of a holiday set
type Holiday struct {
	Date time.Time
	Name string
}

// Namer is implemented by calendars that know holiday names
type Namer interface {
	Name(date time.Time) (string, bool)
}

// List returns the holidays of the year with their names where the
// calendar knows them
func List(cal HolidayCalendar, year int) []Holiday {
	namer, _ := cal.(Namer)
	days := cal.Holidays(year)

	result := make([]Holiday, 0, len(days))
	for _, d := range days {
		h := Holiday{Date: d}
		if namer != nil {
			h.Name, _ = namer.Name(d)
		}
		result = append(result, h)
	}
	return result
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
