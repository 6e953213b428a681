package sheetio

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// pdfFontFamily covers Cyrillic; the built-in PDF fonts are cp1252 only
const pdfFontFamily = "dejavusans"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

var (
	pdfHeaderColor  = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor   = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfHolidayColor = props.Color{Red: 170, Green: 40, Blue: 40}
	pdfLineColor    = props.Color{Red: 200, Green: 200, Blue: 200}
)

// column widths out of 12: date, weekday, hours, gross, tax, social, net
var pdfColumns = []int{2, 2, 1, 2, 2, 1, 2}

// WritePDF renders a printable monthly timesheet
func WritePDF(w io.Writer, sheet Sheet) error {
	fonts, err := repository.New().
		AddUTF8FontFromBytes(pdfFontFamily, fontstyle.Normal, dejaVuRegular).
		AddUTF8FontFromBytes(pdfFontFamily, fontstyle.Bold, dejaVuBold).
		Load()
	if err != nil {
		return fmt.Errorf("failed to load PDF fonts: %w", err)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithCustomFonts(fonts).
		WithDefaultFont(&props.Font{Family: pdfFontFamily}).
		Build()

	m := maroto.New(cfg)

	title := "Timesheet"
	if start, ok := sheet.Table.Start(); ok {
		title = fmt.Sprintf("Timesheet %s %d", sheet.Locale.Month(start.Month()), start.Year())
	}
	m.AddRow(14, text.NewCol(12, title, props.Text{
		Style: fontstyle.Bold,
		Size:  16,
		Color: &pdfHeaderColor,
	}))
	m.AddRow(8, text.NewCol(12,
		fmt.Sprintf("Hourly rate %s, social withholding %g%%, tax %g%%",
			payroll.FormatMoney(sheet.Rates.Hourly), sheet.Rates.Social*100, payroll.TaxRate*100),
		props.Text{Size: 10, Color: &pdfMutedColor}))
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))

	addPDFRow(m, 7, []string{"Date", "Weekday", "Hours", "Gross", "Tax", "Social", "Net"},
		props.Text{Style: fontstyle.Bold, Size: 9, Color: &pdfHeaderColor})

	for _, r := range sheet.Table.Records {
		style := props.Text{Size: 9}
		if r.IsHoliday || r.IsWeekend() {
			style.Color = &pdfHolidayColor
		}

		cells := []string{dateutil.Format(r.Date), r.WeekdayLabel(sheet.Locale), r.Hours.String(), "", "", "", ""}
		if r.Computed() {
			cells[3] = payroll.FormatMoney(r.Pay.Gross)
			cells[4] = payroll.FormatMoney(r.Pay.Tax)
			cells[5] = payroll.FormatMoney(r.Pay.Social)
			cells[6] = payroll.FormatMoney(r.Pay.Net)
		}
		addPDFRow(m, 6, cells, style)
	}

	totals := sheet.Totals
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	addPDFRow(m, 10, []string{
		"Total", "",
		fmt.Sprintf("%g", totals.Hours),
		payroll.FormatMoney(totals.Gross),
		payroll.FormatMoney(totals.Tax),
		payroll.FormatMoney(totals.Social),
		payroll.FormatMoney(totals.Net),
	}, props.Text{Style: fontstyle.Bold, Size: 10, Color: &pdfHeaderColor})

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}
	if _, err := w.Write(doc.GetBytes()); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func addPDFRow(m core.Maroto, height float64, cells []string, style props.Text) {
	cols := make([]core.Col, 0, len(cells))
	for i, c := range cells {
		s := style
		if i >= 2 {
			s.Align = align.Right
		}
		cols = append(cols, text.NewCol(pdfColumns[i], c, s))
	}
	m.AddRow(height, cols...)
}
