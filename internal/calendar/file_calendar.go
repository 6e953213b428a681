package calendar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileCalendar implements HolidayCalendar using a local holiday file.
// Files ending in .yaml/.yml are parsed as YAML, anything else as the line format.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	set      *StaticCalendar
}

// holidayFile is the YAML holiday file layout
type holidayFile struct {
	Version  int `yaml:"version"`
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		set:      NewStaticCalendar(nil),
	}
}

// Load loads holiday data from file
func (fc *FileCalendar) Load() error {
	data, err := os.ReadFile(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}

	var holidays []Holiday
	switch strings.ToLower(filepath.Ext(fc.filePath)) {
	case ".yaml", ".yml":
		holidays, err = parseYAMLHolidays(data)
	default:
		holidays, err = fc.parseLines(bytes.NewReader(data))
	}
	if err != nil {
		return err
	}

	fc.set = NewStaticCalendar(holidays)

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", fc.set.Len()))

	return nil
}

// parseLines reads the line format:
//
//	# comment
//	2025-01-01 New Year
//
// Lines with an unparseable date are logged and skipped.
func (fc *FileCalendar) parseLines(r io.Reader) ([]Holiday, error) {
	var holidays []Holiday

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		date, err := time.Parse(dateutil.ISODate, parts[0])
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("line", line), zap.Error(err))
			continue
		}

		name := ""
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
		holidays = append(holidays, Holiday{Date: date, Name: name})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading calendar file: %w", err)
	}

	return holidays, nil
}

func parseYAMLHolidays(data []byte) ([]Holiday, error) {
	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse calendar yaml: %w", err)
	}
	if f.Version != 1 {
		return nil, errors.New("calendar: unsupported version")
	}

	holidays := make([]Holiday, 0, len(f.Holidays))
	for i, h := range f.Holidays {
		date, err := time.Parse(dateutil.ISODate, strings.TrimSpace(h.Date))
		if err != nil {
			return nil, fmt.Errorf("calendar: holiday %d: invalid date %q", i, h.Date)
		}
		holidays = append(holidays, Holiday{Date: date, Name: h.Name})
	}
	return holidays, nil
}

// IsHoliday checks if the given date is listed in the file
func (fc *FileCalendar) IsHoliday(date time.Time) bool {
	return fc.set.IsHoliday(date)
}

// Holidays returns the holidays of the given year listed in the file
func (fc *FileCalendar) Holidays(year int) []time.Time {
	return fc.set.Holidays(year)
}

// Name returns the name given in the file
func (fc *FileCalendar) Name(date time.Time) (string, bool) {
	return fc.set.Name(date)
}
