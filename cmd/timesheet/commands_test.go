package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timesheet-payroll/internal/config"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

func writeTestConfig(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := "pay:\n  rate: 10\nexport:\n  dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	configPath = path
	t.Cleanup(func() { configPath = "" })
}

func TestGenerateAndCalc(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir)

	gen := generateCmd()
	gen.SetArgs([]string{"--month", "1", "--year", "2025", "--auto-fill"})
	var out bytes.Buffer
	gen.SetOut(&out)
	require.NoError(t, gen.Execute())

	path := filepath.Join(dir, "Timesheet_January_2025.csv")
	assert.Contains(t, out.String(), path)
	require.FileExists(t, path)

	calc := calcCmd()
	calc.SetArgs([]string{path, "-o", filepath.Join(dir, "result.xlsx")})
	out.Reset()
	calc.SetOut(&out)
	require.NoError(t, calc.Execute())

	// 21 regular workdays of 8 hours at 10 per hour
	assert.Contains(t, out.String(), "1680.00")
	assert.Contains(t, out.String(), "1293.60")
	assert.FileExists(t, filepath.Join(dir, "result.xlsx"))
}

func TestCalc_Errors(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,Hours\n2025-01-01,30\n"), 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{filepath.Join(dir, "none.csv")}},
		{"unsupported format", []string{filepath.Join(dir, "x.txt")}},
		{"invalid hours", []string{bad}},
		{"invalid rate", []string{bad, "--rate", "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := calcCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SilenceUsage = true
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestOutputFormat(t *testing.T) {
	cfg := &config.Config{Export: config.ExportConfig{Format: "pdf"}}

	tests := []struct {
		name  string
		flags sheetFlags
		want  sheetio.Format
	}{
		{"from config", sheetFlags{}, sheetio.FormatPDF},
		{"from output extension", sheetFlags{output: "out.xlsx"}, sheetio.FormatXLSX},
		{"directory output", sheetFlags{output: "exports"}, sheetio.FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.outputFormat(cfg))
		})
	}
}

func TestHolidays(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"named holidays", []string{"--year", "2025"}, []string{"2025-01-01  Wednesday   New Year", "2025-08-24", "Independence Day"}},
		{"ukrainian weekdays", []string{"--year", "2025", "--locale", "uk"}, []string{"2025-01-01  Середа"}},
		{"unknown year", []string{"--year", "2024"}, []string{"No holidays known for 2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := holidaysCmd()
			cmd.SetArgs(tt.args)
			var out bytes.Buffer
			cmd.SetOut(&out)
			require.NoError(t, cmd.Execute())
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}

	cmd := holidaysCmd()
	cmd.SetArgs([]string{"--locale", "fr"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SilenceUsage = true
	assert.Error(t, cmd.Execute())
}

func TestPeriodYears(t *testing.T) {
	assert.Equal(t, []int{2025}, periodYears(dateutil.Date(2025, 1, 1), dateutil.Date(2025, 1, 31)))
	assert.Equal(t, []int{2024, 2025}, periodYears(dateutil.Date(2024, 12, 20), dateutil.Date(2025, 1, 10)))
}
