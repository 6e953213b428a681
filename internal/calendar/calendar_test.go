package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

func TestUkraine2025(t *testing.T) {
	cal := Ukraine2025()

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"New Year", dateutil.Date(2025, 1, 1), true},
		{"Independence Day", dateutil.Date(2025, 8, 24), true},
		{"Christmas", dateutil.Date(2025, 12, 25), true},
		{"Regular Thursday", dateutil.Date(2025, 1, 2), false},
		{"New Year of another year", dateutil.Date(2026, 1, 1), false},
		{"Holiday with clock part", time.Date(2025, 5, 9, 18, 30, 0, 0, time.Local), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsHoliday(tt.date); got != tt.want {
				t.Errorf("IsHoliday(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}

	if got := len(cal.Holidays(2025)); got != 11 {
		t.Errorf("Holidays(2025) count = %d, want 11", got)
	}
	if got := len(cal.Holidays(2024)); got != 0 {
		t.Errorf("Holidays(2024) count = %d, want 0", got)
	}
}

func TestStaticCalendar_HolidaysSorted(t *testing.T) {
	cal := Ukraine2025()
	days := cal.Holidays(2025)
	for i := 1; i < len(days); i++ {
		if !days[i].After(days[i-1]) {
			t.Errorf("Holidays not sorted at index %d: %v before %v", i, days[i-1], days[i])
		}
	}

	name, ok := cal.Name(dateutil.Date(2025, 6, 28))
	if !ok || name != "Constitution Day" {
		t.Errorf("Name(2025-06-28) = (%q, %v), want (Constitution Day, true)", name, ok)
	}
}

func TestFileCalendar_LoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.txt")
	content := "# company days off\n2026-01-01 New Year\n\nnot-a-date ignored\n2026-01-02\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fc := NewFileCalendar(path, zap.NewNop())
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !fc.IsHoliday(dateutil.Date(2026, 1, 1)) {
		t.Error("2026-01-01 should be a holiday")
	}
	if !fc.IsHoliday(dateutil.Date(2026, 1, 2)) {
		t.Error("2026-01-02 should be a holiday")
	}
	if got := len(fc.Holidays(2026)); got != 2 {
		t.Errorf("Holidays(2026) count = %d, want 2", got)
	}
}

func TestFileCalendar_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.yaml")
	content := "version: 1\nholidays:\n  - date: 2026-03-09\n    name: Observed\n  - date: 2026-05-01\n    name: Labour Day\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fc := NewFileCalendar(path, zap.NewNop())
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !fc.IsHoliday(dateutil.Date(2026, 3, 9)) {
		t.Error("2026-03-09 should be a holiday")
	}
}

func TestFileCalendar_LoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Wrong version", "version: 2\nholidays: []\n"},
		{"Bad date", "version: 1\nholidays:\n  - date: 2026-13-40\n"},
		{"Not yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "h.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}
			if err := NewFileCalendar(path, zap.NewNop()).Load(); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestNew_CompositeFallback(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	cal, err := New(Sources{File: filepath.Join(t.TempDir(), "missing.txt")}, logger)
	if err == nil {
		t.Fatal("New() expected error for missing file")
	}
	if cal == nil {
		t.Fatal("New() should still return a usable calendar")
	}
	if !cal.IsHoliday(dateutil.Date(2025, 1, 1)) {
		t.Error("built-in holidays should still apply when the file is missing")
	}

	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("2025-01-02 Extra\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cal, err = New(Sources{File: path}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !cal.IsHoliday(dateutil.Date(2025, 1, 2)) || !cal.IsHoliday(dateutil.Date(2025, 1, 1)) {
		t.Error("composite should report holidays from both sources")
	}
	if got := len(cal.Holidays(2025)); got != 12 {
		t.Errorf("Holidays(2025) count = %d, want 12", got)
	}
}

func TestList_Names(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("2025-01-02 Extra\n2025-01-01 Новий рік\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cal, err := New(Sources{File: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := List(cal, 2025)
	if len(got) != 12 {
		t.Fatalf("List(2025) count = %d, want 12", len(got))
	}
	want := []Holiday{
		{Date: dateutil.Date(2025, 1, 1), Name: "Новий рік"},
		{Date: dateutil.Date(2025, 1, 2), Name: "Extra"},
		{Date: dateutil.Date(2025, 1, 7), Name: "Christmas (Julian)"},
	}
	for i, w := range want {
		if !got[i].Date.Equal(w.Date) || got[i].Name != w.Name {
			t.Errorf("List(2025)[%d] = %v %q, want %v %q", i, got[i].Date, got[i].Name, w.Date, w.Name)
		}
	}

	if got := List(Ukraine2025(), 2024); len(got) != 0 {
		t.Errorf("List(2024) = %v, want empty", got)
	}
}

func TestLocale(t *testing.T) {
	uk, err := LocaleByCode("UK")
	if err != nil {
		t.Fatalf("LocaleByCode() error = %v", err)
	}
	if got := uk.Weekday(time.Saturday); got != "Субота" {
		t.Errorf("Weekday(Saturday) = %q, want Субота", got)
	}
	if got := English.Month(time.March); got != "March" {
		t.Errorf("Month(March) = %q, want March", got)
	}
	if _, err := LocaleByCode("fr"); err == nil {
		t.Error("LocaleByCode(fr) expected error")
	}
}
