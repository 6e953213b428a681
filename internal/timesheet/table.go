package timesheet

import (
	"sort"
	"time"

	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// Table is an ordered set of day records, ascending by date with unique dates.
// Every operation in this package takes a Table and returns a new one; the
// argument is never modified.
type Table struct {
	Records []DayRecord
}

// Generate creates one record per day from start to end inclusive
func Generate(start, end time.Time, cal calendar.HolidayCalendar) (Table, error) {
	start, end = dateutil.Normalize(start), dateutil.Normalize(end)
	if end.Before(start) {
		return Table{}, &RangeError{Start: start, End: end}
	}

	days := dateutil.DaysBetween(start, end)
	records := make([]DayRecord, 0, len(days))
	for _, d := range days {
		records = append(records, NewDayRecord(d, cal))
	}
	return Table{Records: records}, nil
}

// GenerateMonth creates the table for a whole calendar month
func GenerateMonth(year int, month time.Month, cal calendar.HolidayCalendar) (Table, error) {
	start, end := dateutil.MonthBounds(year, month)
	return Generate(start, end, cal)
}

// AutoFill sets 8 hours on every regular workday whose hours are blank.
// Weekends, holidays and days with hours already entered are left alone,
// so applying it twice gives the same table as applying it once.
func AutoFill(t Table) Table {
	out := t.Clone()
	for i := range out.Records {
		r := &out.Records[i]
		if r.IsRegularWorkday() && r.Hours.Blank() {
			r.Hours = SomeHours(DefaultWorkdayHours)
		}
	}
	return out
}

// SetHours replaces the hours of the day at date
func SetHours(t Table, date time.Time, hours Hours) (Table, error) {
	if v, ok := hours.Get(); ok {
		if err := ValidateHours(v); err != nil {
			return t, err
		}
	}

	idx := t.Index(date)
	if idx < 0 {
		return t, ErrDayNotFound
	}

	out := t.Clone()
	out.Records[idx].Hours = hours
	return out, nil
}

// AddDay inserts a new blank day keeping the table ordered
func AddDay(t Table, date time.Time, cal calendar.HolidayCalendar) (Table, error) {
	if t.Index(date) >= 0 {
		return t, ErrDuplicateDate
	}

	out := t.Clone()
	out.Records = append(out.Records, NewDayRecord(date, cal))
	out.sort()
	return out, nil
}

// RemoveDay deletes the day at date
func RemoveDay(t Table, date time.Time) (Table, error) {
	idx := t.Index(date)
	if idx < 0 {
		return t, ErrDayNotFound
	}

	out := t.Clone()
	out.Records = append(out.Records[:idx], out.Records[idx+1:]...)
	return out, nil
}

// Len returns the number of days
func (t Table) Len() int {
	return len(t.Records)
}

// Start returns the first date, if any
func (t Table) Start() (time.Time, bool) {
	if len(t.Records) == 0 {
		return time.Time{}, false
	}
	return t.Records[0].Date, true
}

// End returns the last date, if any
func (t Table) End() (time.Time, bool) {
	if len(t.Records) == 0 {
		return time.Time{}, false
	}
	return t.Records[len(t.Records)-1].Date, true
}

// Index returns the position of date, or -1
func (t Table) Index(date time.Time) int {
	date = dateutil.Normalize(date)
	i := sort.Search(len(t.Records), func(i int) bool {
		return !t.Records[i].Date.Before(date)
	})
	if i < len(t.Records) && t.Records[i].Date.Equal(date) {
		return i
	}
	return -1
}

// Find returns the record at date
func (t Table) Find(date time.Time) (DayRecord, bool) {
	idx := t.Index(date)
	if idx < 0 {
		return DayRecord{}, false
	}
	return t.Records[idx], true
}

// Clone returns a deep copy
func (t Table) Clone() Table {
	records := make([]DayRecord, len(t.Records))
	copy(records, t.Records)
	for i := range records {
		if records[i].Pay != nil {
			pay := *records[i].Pay
			records[i].Pay = &pay
		}
	}
	return Table{Records: records}
}

// ClearComputed returns a copy with all pay fields removed
func (t Table) ClearComputed() Table {
	out := t.Clone()
	for i := range out.Records {
		out.Records[i].Pay = nil
	}
	return out
}

// TotalHours sums the entered hours
func (t Table) TotalHours() float64 {
	total := 0.0
	for _, r := range t.Records {
		total += r.Hours.Value()
	}
	return total
}

func (t *Table) sort() {
	sort.Slice(t.Records, func(i, j int) bool {
		return t.Records[i].Date.Before(t.Records[j].Date)
	})
}
