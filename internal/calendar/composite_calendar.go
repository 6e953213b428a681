package calendar

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar merges a file-backed calendar with a built-in fallback set.
// A date is a holiday if either source lists it. If the primary file failed
// to load, only the fallback is consulted.
type CompositeCalendar struct {
	primary       *FileCalendar
	fallback      HolidayCalendar
	primaryLoaded bool
	logger        *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary *FileCalendar, fallback HolidayCalendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// LoadPrimary loads the holiday file. On failure the composite keeps
// answering from the fallback set and the error is returned for reporting.
func (cc *CompositeCalendar) LoadPrimary() error {
	if cc.primary == nil {
		return nil
	}
	if err := cc.primary.Load(); err != nil {
		cc.logger.Warn("Holiday file failed to load, using built-in holidays only",
			zap.Error(err))
		return fmt.Errorf("failed to load holiday file: %w", err)
	}
	cc.primaryLoaded = true
	return nil
}

// IsHoliday checks both sources
func (cc *CompositeCalendar) IsHoliday(date time.Time) bool {
	if cc.primaryLoaded && cc.primary.IsHoliday(date) {
		return true
	}
	return cc.fallback.IsHoliday(date)
}

// Holidays returns the union of both sources for the year
func (cc *CompositeCalendar) Holidays(year int) []time.Time {
	if !cc.primaryLoaded {
		return cc.fallback.Holidays(year)
	}
	return mergeHolidays(cc.fallback.Holidays(year), cc.primary.Holidays(year))
}

// Name prefers the file's name for the date
func (cc *CompositeCalendar) Name(date time.Time) (string, bool) {
	if cc.primaryLoaded {
		if name, ok := cc.primary.Name(date); ok && name != "" {
			return name, true
		}
	}
	if namer, ok := cc.fallback.(Namer); ok {
		return namer.Name(date)
	}
	return "", false
}

// UnionCalendar treats a date as a holiday if any member does
type UnionCalendar []HolidayCalendar

// IsHoliday checks every member
func (u UnionCalendar) IsHoliday(date time.Time) bool {
	for _, c := range u {
		if c.IsHoliday(date) {
			return true
		}
	}
	return false
}

// Holidays returns the union of every member for the year
func (u UnionCalendar) Holidays(year int) []time.Time {
	lists := make([][]time.Time, 0, len(u))
	for _, c := range u {
		lists = append(lists, c.Holidays(year))
	}
	return mergeHolidays(lists...)
}

// Name returns the first non-empty name a member knows
func (u UnionCalendar) Name(date time.Time) (string, bool) {
	for _, c := range u {
		if namer, ok := c.(Namer); ok {
			if name, ok := namer.Name(date); ok && name != "" {
				return name, true
			}
		}
	}
	return "", false
}

func mergeHolidays(lists ...[]time.Time) []time.Time {
	seen := make(map[string]time.Time)
	for _, list := range lists {
		for _, d := range list {
			seen[dateKey(d)] = d
		}
	}

	result := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result
}

// Sources selects where holidays come from besides the built-in set
type Sources struct {
	File      string // .yaml/.yml or one date per line
	RemoteURL string // isdayoff.ru compatible service; empty disables
	Country   string // remote country code, e.g. "ua"
	CacheTTL  time.Duration
	// Prefetch lists years the remote service is asked for up front
	Prefetch []int
}

// New builds the calendar used by the application: the built-in holiday
// set, extended by the remote service and the holiday file when configured.
func New(src Sources, logger *zap.Logger) (HolidayCalendar, error) {
	builtin := Ukraine2025()
	var fallback HolidayCalendar = builtin

	if src.RemoteURL != "" {
		logger.Info("Using remote holiday calendar",
			zap.String("url", src.RemoteURL),
			zap.String("country", src.Country),
			zap.Duration("cache_ttl", src.CacheTTL))
		remote := NewIsDayOffCalendar(src.RemoteURL, src.Country, src.CacheTTL, logger)
		for _, year := range src.Prefetch {
			// a failed year is cached empty and retried later
			_ = remote.Load(year)
		}
		fallback = UnionCalendar{builtin, remote}
	}

	if src.File == "" {
		if src.RemoteURL == "" {
			logger.Info("Using built-in holiday calendar", zap.Int("holidays", builtin.Len()))
		}
		return fallback, nil
	}

	cc := NewCompositeCalendar(NewFileCalendar(src.File, logger), fallback, logger)
	if err := cc.LoadPrimary(); err != nil {
		return cc, err
	}
	return cc, nil
}
