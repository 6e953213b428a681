package session

import (
	"fmt"
	"time"

	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
)

// State is the lifecycle position of the table held by a session
type State int

const (
	StateEmpty State = iota
	StateGenerated
	StateEdited
	StateComputed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateGenerated:
		return "generated"
	case StateEdited:
		return "edited"
	case StateComputed:
		return "computed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session runs the timesheet pipeline for one user:
// source (range or file) -> optional auto-fill -> edits -> compute -> totals.
// It owns its table; callers only ever get copies. A Session is not safe for
// concurrent use; the Store serializes access.
type Session struct {
	cal    calendar.HolidayCalendar
	engine *payroll.Engine
	locale calendar.Locale
	table  timesheet.Table
	state  State
}

// New creates an empty session
func New(cal calendar.HolidayCalendar, rates payroll.Rates, mode payroll.RecomputeMode) (*Session, error) {
	engine, err := payroll.NewEngine(rates, mode)
	if err != nil {
		return nil, err
	}
	return &Session{cal: cal, engine: engine, locale: calendar.English}, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Rates returns the rates in use
func (s *Session) Rates() payroll.Rates {
	return s.engine.Rates()
}

// Mode returns the recompute mode
func (s *Session) Mode() payroll.RecomputeMode {
	return s.engine.Mode()
}

// Calendar returns the holiday calendar used for derived fields
func (s *Session) Calendar() calendar.HolidayCalendar {
	return s.cal
}

// Locale returns the locale used for labels and file names
func (s *Session) Locale() calendar.Locale {
	return s.locale
}

// SetLocale changes the display locale
func (s *Session) SetLocale(loc calendar.Locale) {
	s.locale = loc
}

// Table returns a copy of the current table
func (s *Session) Table() timesheet.Table {
	return s.table.Clone()
}

// Generate replaces the table with a fresh one for [start, end].
// On error the current table is kept.
func (s *Session) Generate(start, end time.Time) error {
	table, err := timesheet.Generate(start, end, s.cal)
	if err != nil {
		return err
	}
	s.replace(table)
	return nil
}

// GenerateMonth replaces the table with one for a calendar month
func (s *Session) GenerateMonth(year int, month time.Month) error {
	table, err := timesheet.GenerateMonth(year, month, s.cal)
	if err != nil {
		return err
	}
	s.replace(table)
	return nil
}

// Import replaces the table with rows read from a file.
// On error the current table is kept.
func (s *Session) Import(raw timesheet.RawRows) error {
	table, err := timesheet.Import(raw, s.cal)
	if err != nil {
		return err
	}
	s.replace(table)
	return nil
}

// AutoFill puts the default hours on every blank regular workday
func (s *Session) AutoFill() {
	s.edit(timesheet.AutoFill(s.table))
}

// SetHours edits the hours of one day
func (s *Session) SetHours(date time.Time, hours timesheet.Hours) error {
	table, err := timesheet.SetHours(s.table, date, hours)
	if err != nil {
		return err
	}
	s.edit(table)
	return nil
}

// AddDay inserts a blank day
func (s *Session) AddDay(date time.Time) error {
	table, err := timesheet.AddDay(s.table, date, s.cal)
	if err != nil {
		return err
	}
	s.edit(table)
	return nil
}

// RemoveDay deletes a day
func (s *Session) RemoveDay(date time.Time) error {
	table, err := timesheet.RemoveDay(s.table, date)
	if err != nil {
		return err
	}
	s.edit(table)
	return nil
}

// SetRates switches to new rates. Pay already computed becomes stale.
func (s *Session) SetRates(rates payroll.Rates) error {
	engine, err := payroll.NewEngine(rates, s.engine.Mode())
	if err != nil {
		return err
	}
	s.engine = engine
	if s.state == StateComputed {
		s.edit(s.table)
	}
	return nil
}

// Compute fills in the pay of every day and returns the totals
func (s *Session) Compute() payroll.Totals {
	s.table = s.engine.ComputeTable(s.table)
	s.state = StateComputed
	return payroll.Summarize(s.table)
}

// Totals returns the aggregate of the table. stale is true when hours were
// edited after the last explicit compute, so the pay values are out of date.
func (s *Session) Totals() (totals payroll.Totals, stale bool) {
	return payroll.Summarize(s.table), s.state == StateEdited
}

func (s *Session) replace(table timesheet.Table) {
	s.table = table.ClearComputed()
	s.state = StateGenerated
	s.refresh()
}

// edit stores an edited table. Pay values are kept as they were so that a
// stale result stays visible until the next compute.
func (s *Session) edit(table timesheet.Table) {
	s.table = table
	if s.state == StateEmpty && table.Len() == 0 {
		return
	}
	s.state = StateEdited
	s.refresh()
}

// refresh recomputes in auto mode so reads always see current pay
func (s *Session) refresh() {
	if s.engine.Mode() == payroll.RecomputeAuto {
		s.Compute()
	}
}
