package timesheet

import (
	"time"

	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// Breakdown is the computed pay of one day
type Breakdown struct {
	Gross  float64 `json:"gross_pay"`
	Tax    float64 `json:"tax_withholding"`
	Social float64 `json:"social_withholding"`
	Net    float64 `json:"net_pay"`
}

// DayRecord is one calendar day of a timesheet.
// Weekday and IsHoliday are derived from Date and are never edited directly.
type DayRecord struct {
	Date      time.Time
	Weekday   time.Weekday
	IsHoliday bool
	Hours     Hours
	// Pay is nil until the day has been computed
	Pay *Breakdown
}

// NewDayRecord derives a record for date with no hours entered
func NewDayRecord(date time.Time, cal calendar.HolidayCalendar) DayRecord {
	date = dateutil.Normalize(date)
	return DayRecord{
		Date:      date,
		Weekday:   date.Weekday(),
		IsHoliday: cal.IsHoliday(date),
	}
}

// WeekdayLabel returns the localized weekday name
func (r DayRecord) WeekdayLabel(loc calendar.Locale) string {
	return loc.Weekday(r.Weekday)
}

// IsWeekend reports Saturday or Sunday
func (r DayRecord) IsWeekend() bool {
	return dateutil.IsWeekend(r.Date)
}

// IsRegularWorkday reports a Monday..Friday that is not a holiday
func (r DayRecord) IsRegularWorkday() bool {
	return !r.IsWeekend() && !r.IsHoliday
}

// Computed reports whether pay fields are present
func (r DayRecord) Computed() bool {
	return r.Pay != nil
}

