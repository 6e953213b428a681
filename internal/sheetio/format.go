package sheetio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is a flat-file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name such as "csv" or ".XLSX"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName returns Timesheet_<MonthName>_<Year>.<ext> for the month of start
func FileName(start time.Time, loc calendar.Locale, f Format) string {
	return fmt.Sprintf("Timesheet_%s_%d.%s", loc.Month(start.Month()), start.Year(), f)
}

// Sheet is everything an export writes
type Sheet struct {
	Table  timesheet.Table
	Totals payroll.Totals
	Rates  payroll.Rates
	Locale calendar.Locale
}

// FileName returns the default export name for the sheet
func (s Sheet) FileName(f Format) string {
	start, ok := s.Table.Start()
	if !ok {
		start = time.Now()
	}
	return FileName(start, s.Locale, f)
}

func rawRows(records [][]string) timesheet.RawRows {
	if len(records) == 0 {
		return timesheet.RawRows{}
	}

	raw := timesheet.RawRows{
		Columns: records[0],
		Rows:    make([]map[string]string, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(raw.Columns))
		for i, col := range raw.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw
}
