package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	holidayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	weekendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

type column struct {
	title string
	width int
	right bool
}

var columns = []column{
	{"Date", 10, false},
	{"Weekday", 10, false},
	{"Holiday", 7, false},
	{"Hours", 6, true},
	{"Gross", 10, true},
	{"Tax", 9, true},
	{"Social", 9, true},
	{"Net", 10, true},
}

// tableView is everything needed to draw the table
type tableView struct {
	table    timesheet.Table
	totals   payroll.Totals
	stale    bool
	locale   calendar.Locale
	cursor   int // -1 for none
	scrollY  int
	visible  int
	input    string
	entering bool
	footer   string
	help     bool
}

func (m model) View() string {
	totals, stale := m.sess.Totals()
	return renderTable(tableView{
		table:    m.sess.Table(),
		totals:   totals,
		stale:    stale,
		locale:   m.sess.Locale(),
		cursor:   m.cursor,
		scrollY:  m.scrollY,
		visible:  m.visibleRows(),
		input:    m.input,
		entering: m.mode == modeEntering,
		footer:   m.footerMsg,
		help:     true,
	})
}

func renderTable(v tableView) string {
	var b strings.Builder

	if start, ok := v.table.Start(); ok {
		title := fmt.Sprintf("--- %s %d ---", v.locale.Month(start.Month()), start.Year())
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
	}

	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.title
	}
	b.WriteString(headerStyle.Render(joinCells(titles)))
	b.WriteString("\n")
	b.WriteString(separator())
	b.WriteString("\n")

	end := min(v.scrollY+v.visible, v.table.Len())
	for i := v.scrollY; i < end; i++ {
		rec := v.table.Records[i]
		cells := rowCells(rec, v.locale)
		if v.entering && i == v.cursor {
			cells[3] = v.input + "_"
		}
		line := joinCells(cells)

		switch {
		case i == v.cursor:
			line = selectedStyle.Render(line)
		case rec.IsHoliday:
			line = holidayStyle.Render(line)
		case rec.IsWeekend():
			line = weekendStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(separator())
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(joinCells(totalsCells(v.totals))))
	if v.stale {
		b.WriteString(" ")
		b.WriteString(staleStyle.Render("(stale: press c to recompute)"))
	}
	b.WriteString("\n")

	if v.footer != "" {
		if strings.HasPrefix(v.footer, "Error") {
			b.WriteString(errorStyle.Render(v.footer))
		} else {
			b.WriteString(footerStyle.Render(v.footer))
		}
		b.WriteString("\n")
	}
	if v.help {
		help := "↑/↓ move  0-9/enter edit  x clear  a auto-fill  c compute  s save  q quit"
		if v.entering {
			help = "type hours 0-24  enter confirm (empty clears)  esc cancel"
		}
		b.WriteString(footerStyle.Render(help))
		b.WriteString("\n")
	}

	return b.String()
}

func rowCells(rec timesheet.DayRecord, loc calendar.Locale) []string {
	holiday := ""
	if rec.IsHoliday {
		holiday = "yes"
	}
	cells := []string{
		rec.Date.Format("2006-01-02"),
		rec.WeekdayLabel(loc),
		holiday,
		rec.Hours.String(),
		"", "", "", "",
	}
	if rec.Pay != nil {
		pay := payroll.RoundBreakdown(*rec.Pay)
		cells[4] = payroll.FormatMoney(pay.Gross)
		cells[5] = payroll.FormatMoney(pay.Tax)
		cells[6] = payroll.FormatMoney(pay.Social)
		cells[7] = payroll.FormatMoney(pay.Net)
	}
	return cells
}

func totalsCells(t payroll.Totals) []string {
	t = t.Rounded()
	return []string{
		"Total",
		fmt.Sprintf("%d days", t.WorkedDays),
		"",
		fmt.Sprintf("%g", t.Hours),
		payroll.FormatMoney(t.Gross),
		payroll.FormatMoney(t.Tax),
		payroll.FormatMoney(t.Social),
		payroll.FormatMoney(t.Net),
	}
}

func joinCells(cells []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		if c.right {
			parts[i] = padLeft(cells[i], c.width)
		} else {
			parts[i] = padRight(cells[i], c.width)
		}
	}
	return strings.Join(parts, " | ")
}

func separator() string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = strings.Repeat("-", c.width)
	}
	return strings.Join(parts, "-+-")
}

// padRight pads or truncates s to exactly width display cells
func padRight(s string, width int) string {
	s = truncate(s, width)
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

func padLeft(s string, width int) string {
	s = truncate(s, width)
	return strings.Repeat(" ", width-lipgloss.Width(s)) + s
}

func truncate(s string, width int) string {
	for lipgloss.Width(s) > width {
		r := []rune(s)
		s = string(r[:len(r)-1])
	}
	return s
}
