package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

// newTestModel covers Thu 2 .. Sat 4 January 2025
func newTestModel(t *testing.T, opts Options) model {
	t.Helper()
	sess, err := session.New(calendar.Ukraine2025(), payroll.DefaultRates(10), payroll.RecomputeExplicit)
	require.NoError(t, err)
	require.NoError(t, sess.Generate(dateutil.Date(2025, 1, 2), dateutil.Date(2025, 1, 4)))
	return newModel(sess, opts)
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		var ok bool
		m, ok = updated.(model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func hoursAt(t *testing.T, m model, day int) timesheet.Hours {
	t.Helper()
	rec, ok := m.sess.Table().Find(dateutil.Date(2025, 1, day))
	require.True(t, ok)
	return rec.Hours
}

func TestNavigation(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, keyDown, keyDown, keyDown)
	assert.Equal(t, 2, m.cursor, "stops at the last row")

	m = press(t, m, keyUp)
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, runes("g"))
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, runes("G"))
	assert.Equal(t, 2, m.cursor)

	m = press(t, m, keyUp, keyUp, keyUp)
	assert.Equal(t, 0, m.cursor, "stops at the first row")
}

func TestScrollFollowsCursor(t *testing.T) {
	m := newTestModel(t, Options{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 8})
	m = updated.(model)
	require.Equal(t, 1, m.visibleRows())

	m = press(t, m, keyDown, keyDown)
	assert.Equal(t, 2, m.scrollY)

	m = press(t, m, keyUp)
	assert.Equal(t, 1, m.scrollY)
}

func TestEnterHours(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, runes("9"))
	assert.Equal(t, modeEntering, m.mode)
	assert.Contains(t, m.View(), "9_")

	m = press(t, m, keyEnter)
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, timesheet.SomeHours(9), hoursAt(t, m, 2))
	assert.Equal(t, session.StateEdited, m.sess.State())
	assert.Equal(t, "2025-01-02: 9h", m.footerMsg)
}

func TestEnterHours_Input(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want timesheet.Hours
	}{
		{"comma decimal", []tea.KeyMsg{runes("7"), runes(","), runes("5"), keyEnter}, timesheet.SomeHours(7.5)},
		{"enter edits current value", []tea.KeyMsg{keyEnter, runes(","), runes("5"), keyEnter}, timesheet.SomeHours(6.5)},
		{"empty input clears", []tea.KeyMsg{keyEnter, tea.KeyMsg{Type: tea.KeyBackspace}, keyEnter}, timesheet.NoHours()},
		{"escape cancels", []tea.KeyMsg{runes("4"), keyEsc}, timesheet.SomeHours(6)},
		{"letters are ignored", []tea.KeyMsg{runes("1"), runes("x"), runes("2"), keyEnter}, timesheet.SomeHours(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, Options{})
			m = press(t, m, runes("6"), keyEnter)
			m = press(t, m, tt.keys...)
			assert.Equal(t, tt.want, hoursAt(t, m, 2))
		})
	}
}

func TestEnterHours_OutOfRange(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, runes("2"), runes("5"), keyEnter)

	assert.Equal(t, modeEntering, m.mode)
	assert.Contains(t, m.footerMsg, "Error")
	assert.False(t, hoursAt(t, m, 2).IsSet())
	assert.Equal(t, session.StateGenerated, m.sess.State())
}

func TestClearHours(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, runes("8"), keyEnter, runes("x"))
	assert.False(t, hoursAt(t, m, 2).IsSet())
	assert.Equal(t, "2025-01-02: cleared", m.footerMsg)
}

func TestAutoFillComputeAndStale(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, runes("a"))
	assert.Equal(t, timesheet.SomeHours(8), hoursAt(t, m, 2))
	assert.Equal(t, timesheet.SomeHours(8), hoursAt(t, m, 3))
	assert.False(t, hoursAt(t, m, 4).IsSet(), "Saturday is not auto-filled")
	assert.Contains(t, m.View(), "stale")

	m = press(t, m, runes("c"))
	assert.Equal(t, session.StateComputed, m.sess.State())
	assert.Equal(t, "Computed: net 123.20", m.footerMsg)
	view := m.View()
	assert.NotContains(t, view, "stale")
	assert.Contains(t, view, "160.00")

	m = press(t, m, runes("5"), keyEnter)
	assert.Contains(t, m.View(), "stale")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, Options{Format: sheetio.FormatCSV, Dir: dir})

	m = press(t, m, runes("a"), runes("c"), runes("s"))

	want := filepath.Join(dir, "Timesheet_January_2025.csv")
	assert.Equal(t, want, m.savedPath)
	assert.Equal(t, "Saved "+want, m.footerMsg)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2025-01-02,Thursday,false,8,80.00,61.60,14.40,4.00")

	t.Run("error is shown", func(t *testing.T) {
		m := newTestModel(t, Options{Format: sheetio.FormatCSV, Path: filepath.Join(dir, "missing", "x.csv")})
		m = press(t, m, runes("s"))
		assert.Contains(t, m.footerMsg, "Error saving")
		assert.Empty(t, m.savedPath)
	})
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRun_NonTerminalPrintsTable(t *testing.T) {
	m := newTestModel(t, Options{})
	m.sess.AutoFill()
	m.sess.Compute()

	var buf bytes.Buffer
	require.NoError(t, Run(&buf, m.sess, Options{}, zap.NewNop()))

	out := buf.String()
	assert.Contains(t, out, "January 2025")
	assert.Contains(t, out, "2025-01-03")
	assert.Contains(t, out, "Friday")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "123.20")
	assert.NotContains(t, out, "q quit", "no key help in static output")
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "abc   ", padRight("abc", 6))
	assert.Equal(t, "   abc", padLeft("abc", 6))
	assert.Equal(t, "abcdef", padRight("abcdefgh", 6))
	assert.Equal(t, "Середа  ", padRight("Середа", 8), "pads by display width")
}
