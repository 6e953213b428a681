package timesheet

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDuplicateDate = errors.New("date already present in timesheet")
	ErrDayNotFound   = errors.New("date not present in timesheet")
)

// RangeError reports an end date that precedes the start date
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("end date %s precedes start date %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

// SchemaError reports required columns missing from an imported file
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// HoursError reports an hours value outside 0..24
type HoursError struct {
	Hours float64
}

func (e *HoursError) Error() string {
	return fmt.Sprintf("hours must be between %g and %g, got %g", MinHours, MaxHours, e.Hours)
}

// RowError points at the offending row and column of an import.
// Row is 1-based and counts data rows only.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
