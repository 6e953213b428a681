// Package tui is the interactive terminal editor for a timesheet session.
package tui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/username/timesheet-payroll/internal/session"
	"go.uber.org/zap"
)

// Run opens the editor on out. When out is not a terminal the table is
// printed once instead.
func Run(out io.Writer, sess *session.Session, opts Options, logger *zap.Logger) error {
	// Non-TTY fallback: print static table
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		logger.Debug("Output is not a terminal, printing static table")
		return PrintTable(out, sess)
	}

	p := tea.NewProgram(newModel(sess, opts), tea.WithAltScreen(), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	if m, ok := final.(model); ok && m.savedPath != "" {
		logger.Info("Timesheet saved from editor", zap.String("path", m.savedPath))
	}
	return nil
}

// PrintTable writes the whole table with pay and totals
func PrintTable(w io.Writer, sess *session.Session) error {
	table := sess.Table()
	totals, stale := sess.Totals()

	_, err := fmt.Fprint(w, renderTable(tableView{
		table:   table,
		totals:  totals,
		stale:   stale,
		locale:  sess.Locale(),
		cursor:  -1,
		visible: table.Len(),
	}))
	return err
}
