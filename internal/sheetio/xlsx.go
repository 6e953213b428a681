package sheetio

import (
	"fmt"
	"io"

	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"github.com/xuri/excelize/v2"
)

const (
	timesheetSheet = "Timesheet"
	totalsSheet    = "Totals"
)

var xlsxHeader = []interface{}{
	timesheet.ColumnDate,
	timesheet.ColumnWeekday,
	timesheet.ColumnIsHoliday,
	timesheet.ColumnHours,
	timesheet.ColumnGrossPay,
	timesheet.ColumnNetPay,
	timesheet.ColumnTaxWithholding,
	timesheet.ColumnSocialWithholding,
}

// WriteXLSX writes a workbook with the per-day table on the first sheet and
// the totals on a second one, so the first sheet re-imports cleanly
func WriteXLSX(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), timesheetSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(timesheetSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range sheet.Table.Records {
		row := []interface{}{
			dateutil.Format(r.Date),
			r.WeekdayLabel(sheet.Locale),
			r.IsHoliday,
			"",
			"", "", "", "",
		}
		if v, ok := r.Hours.Get(); ok {
			row[3] = v
		}
		if r.Pay != nil {
			pay := payroll.RoundBreakdown(*r.Pay)
			row[4], row[5], row[6], row[7] = pay.Gross, pay.Net, pay.Tax, pay.Social
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(timesheetSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := writeTotalsSheet(f, sheet); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTotalsSheet(f *excelize.File, sheet Sheet) error {
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("failed to add totals sheet: %w", err)
	}

	totals := sheet.Totals.Rounded()
	rows := [][]interface{}{
		{"Hours", totals.Hours},
		{"Worked days", totals.WorkedDays},
		{"Hourly rate", sheet.Rates.Hourly},
		{"Social withholding rate", sheet.Rates.Social},
		{timesheet.ColumnGrossPay, totals.Gross},
		{timesheet.ColumnTaxWithholding, totals.Tax},
		{timesheet.ColumnSocialWithholding, totals.Social},
		{timesheet.ColumnNetPay, totals.Net},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(totalsSheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}
	return nil
}

// ReadXLSX reads the first worksheet of a workbook into raw rows. Booleans
// come back as 1 and 0.
func ReadXLSX(r io.Reader) (timesheet.RawRows, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return timesheet.RawRows{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if name == "" {
		return timesheet.RawRows{}, fmt.Errorf("no worksheet found")
	}

	// raw values keep full float precision for hours
	records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return timesheet.RawRows{}, fmt.Errorf("failed to read worksheet %s: %w", name, err)
	}
	return rawRows(records), nil
}
