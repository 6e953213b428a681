package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

// editorMode is the current interaction mode of the editor
type editorMode int

const (
	modeNormal editorMode = iota
	modeEntering
)

// Options control where the editor saves
type Options struct {
	Format sheetio.Format
	Path   string // file or directory; empty means Dir with the default name
	Dir    string
}

type model struct {
	sess       *session.Session
	opts       Options
	cursor     int // selected row
	scrollY    int // first visible row
	termWidth  int
	termHeight int
	mode       editorMode
	input      string // hours being typed in modeEntering
	footerMsg  string
	savedPath  string
}

func newModel(sess *session.Session, opts Options) model {
	return model{
		sess:       sess,
		opts:       opts,
		termWidth:  100,
		termHeight: 40,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m = m.ensureCursorVisible()
	case tea.KeyMsg:
		if m.mode == modeEntering {
			return m.updateEntering(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.sess.Table().Len()

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "down", "j":
		if m.cursor < rows-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "pgdown":
		m.cursor = min(m.cursor+m.visibleRows(), max(rows-1, 0))
	case "pgup":
		m.cursor = max(m.cursor-m.visibleRows(), 0)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(rows-1, 0)
	case "enter", "e":
		if rec, ok := m.selected(); ok {
			m.mode = modeEntering
			m.input = rec.Hours.String()
			m.footerMsg = ""
		}
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if _, ok := m.selected(); ok {
			m.mode = modeEntering
			m.input = msg.String()
			m.footerMsg = ""
		}
	case "x", "delete", "backspace":
		m = m.setHours(timesheet.NoHours())
	case "a":
		m.sess.AutoFill()
		m.footerMsg = "Auto-filled regular workdays"
	case "c":
		totals := m.sess.Compute()
		m.footerMsg = fmt.Sprintf("Computed: net %s", payroll.FormatMoney(totals.Net))
	case "s":
		m = m.save()
	}

	m = m.ensureCursorVisible()
	return m, nil
}

func (m model) updateEntering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input = ""
		return m, nil
	case tea.KeyEnter:
		hours, err := timesheet.ParseHours(m.input)
		if err != nil {
			m.footerMsg = "Error: " + err.Error()
			return m, nil
		}
		m.mode = modeNormal
		m.input = ""
		m = m.setHours(hours)
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r >= '0' && r <= '9') || r == '.' || r == ',' {
				m.input += string(r)
			}
		}
	}
	return m, nil
}

func (m model) selected() (timesheet.DayRecord, bool) {
	table := m.sess.Table()
	if m.cursor < 0 || m.cursor >= table.Len() {
		return timesheet.DayRecord{}, false
	}
	return table.Records[m.cursor], true
}

func (m model) setHours(hours timesheet.Hours) model {
	rec, ok := m.selected()
	if !ok {
		return m
	}
	if err := m.sess.SetHours(rec.Date, hours); err != nil {
		m.footerMsg = "Error: " + err.Error()
		return m
	}

	m.footerMsg = ""
	if stored, ok := m.sess.Table().Find(rec.Date); ok {
		if v, set := stored.Hours.Get(); set {
			m.footerMsg = fmt.Sprintf("%s: %gh", dateutil.Format(stored.Date), v)
		} else {
			m.footerMsg = dateutil.Format(stored.Date) + ": cleared"
		}
	}
	return m
}

func (m model) save() model {
	totals, _ := m.sess.Totals()
	sheet := sheetio.Sheet{
		Table:  m.sess.Table(),
		Totals: totals,
		Rates:  m.sess.Rates(),
		Locale: m.sess.Locale(),
	}

	path, err := sheetio.ExportFile(m.opts.Path, m.opts.Dir, m.opts.Format, sheet)
	if err != nil {
		m.footerMsg = "Error saving: " + err.Error()
		return m
	}
	m.savedPath = path
	m.footerMsg = "Saved " + path
	return m
}

func (m model) visibleRows() int {
	// title, header, separator, totals separator, totals, footer(2)
	available := m.termHeight - 7
	if available < 1 {
		return 1
	}
	return available
}

func (m model) ensureCursorVisible() model {
	visible := m.visibleRows()
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	}
	if m.cursor >= m.scrollY+visible {
		m.scrollY = m.cursor - visible + 1
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
	return m
}
