package timesheet

import (
	"strings"

	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// Column names of the flat-file schema
const (
	ColumnDate              = "Date"
	ColumnWeekday           = "Weekday"
	ColumnIsHoliday         = "IsHoliday"
	ColumnHours             = "Hours"
	ColumnGrossPay          = "GrossPay"
	ColumnNetPay            = "NetPay"
	ColumnTaxWithholding    = "TaxWithholding"
	ColumnSocialWithholding = "SocialWithholding"
)

// columnAliases maps a normalized header to the canonical column name.
// The Ukrainian headers are the ones of the paper timesheet.
var columnAliases = map[string]string{
	"date":            ColumnDate,
	"дата":            ColumnDate,
	"hours":           ColumnHours,
	"кількість годин": ColumnHours,
}

// RawRows is a parsed flat file before any interpretation: the header as it
// appeared and one map per data row keyed by that header.
type RawRows struct {
	Columns []string
	Rows    []map[string]string
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

// Import builds a table from raw rows. Only the date and hours columns are
// read; weekday, holiday and pay columns are recomputed, not trusted.
// Rows whose cells are all blank are skipped. On error no table is returned.
func Import(raw RawRows, cal calendar.HolidayCalendar) (Table, error) {
	source := make(map[string]string)
	for _, col := range raw.Columns {
		if canonical, ok := columnAliases[normalizeHeader(col)]; ok {
			if _, dup := source[canonical]; !dup {
				source[canonical] = col
			}
		}
	}

	var missing []string
	for _, required := range []string{ColumnDate, ColumnHours} {
		if _, ok := source[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return Table{}, &SchemaError{Missing: missing}
	}

	out := Table{Records: make([]DayRecord, 0, len(raw.Rows))}
	seen := make(map[string]bool, len(raw.Rows))

	for i, row := range raw.Rows {
		if blankRow(row) {
			continue
		}
		rowNum := i + 1

		date, err := dateutil.ParseDate(row[source[ColumnDate]])
		if err != nil {
			return Table{}, &RowError{Row: rowNum, Field: ColumnDate, Err: err}
		}
		key := dateutil.Format(date)
		if seen[key] {
			return Table{}, &RowError{Row: rowNum, Field: ColumnDate, Err: ErrDuplicateDate}
		}
		seen[key] = true

		hours, err := ParseHours(row[source[ColumnHours]])
		if err != nil {
			return Table{}, &RowError{Row: rowNum, Field: ColumnHours, Err: err}
		}

		rec := NewDayRecord(date, cal)
		rec.Hours = hours
		out.Records = append(out.Records, rec)
	}

	out.sort()
	return out, nil
}

func blankRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
