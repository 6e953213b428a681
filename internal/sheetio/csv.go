package sheetio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// money is a pay cell: blank until the day is computed, then two decimals
type money struct {
	value float64
	set   bool
}

func (m money) MarshalCSV() (string, error) {
	if !m.set {
		return "", nil
	}
	return payroll.FormatMoney(m.value), nil
}

type csvRow struct {
	Date              string          `csv:"Date"`
	Weekday           string          `csv:"Weekday"`
	IsHoliday         bool            `csv:"IsHoliday"`
	Hours             timesheet.Hours `csv:"Hours"`
	GrossPay          money           `csv:"GrossPay"`
	NetPay            money           `csv:"NetPay"`
	TaxWithholding    money           `csv:"TaxWithholding"`
	SocialWithholding money           `csv:"SocialWithholding"`
}

func csvRows(table timesheet.Table, loc calendar.Locale) []*csvRow {
	rows := make([]*csvRow, 0, table.Len())
	for _, r := range table.Records {
		row := &csvRow{
			Date:      dateutil.Format(r.Date),
			Weekday:   r.WeekdayLabel(loc),
			IsHoliday: r.IsHoliday,
			Hours:     r.Hours,
		}
		if r.Pay != nil {
			row.GrossPay = money{r.Pay.Gross, true}
			row.NetPay = money{r.Pay.Net, true}
			row.TaxWithholding = money{r.Pay.Tax, true}
			row.SocialWithholding = money{r.Pay.Social, true}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the table as UTF-8 CSV with a byte order mark so that
// spreadsheet programs pick the right encoding
func WriteCSV(w io.Writer, table timesheet.Table, loc calendar.Locale) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	if err := gocsv.Marshal(csvRows(table, loc), w); err != nil {
		return fmt.Errorf("failed to marshal CSV: %w", err)
	}
	return nil
}

// ReadCSV reads a delimited file into raw rows. A leading BOM is dropped.
// The delimiter is a comma, or a semicolon when the header line has
// semicolons and no commas.
func ReadCSV(r io.Reader) (timesheet.RawRows, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return timesheet.RawRows{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := gocsv.LazyCSVReader(bytes.NewReader(data))
	if cr, ok := reader.(*csv.Reader); ok {
		cr.Comma = sniffDelimiter(data)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return timesheet.RawRows{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rawRows(records), nil
}

func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.IndexByte(header, ';') >= 0 && bytes.IndexByte(header, ',') < 0 {
		return ';'
	}
	return ','
}
