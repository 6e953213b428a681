package calendar

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// IsDayOffURL is the public isdayoff.ru service
	IsDayOffURL        = "https://isdayoff.ru"
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
	failedRetryAfter   = 5 * time.Minute
)

// IsDayOffCalendar reads non-working days from an isdayoff.ru compatible
// service. A weekday the service marks as non-working is a holiday; weekend
// days are left to the other sources. Years are fetched once and cached.
// When the service cannot be reached the year answers "no holidays" until
// a retry is due.
type IsDayOffCalendar struct {
	httpClient *http.Client
	baseURL    string
	country    string
	logger     *zap.Logger
	cache      map[int]*cachedYear
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
	now        func() time.Time
}

type cachedYear struct {
	holidays  map[string]time.Time
	fetchedAt time.Time
	failed    bool
}

// NewIsDayOffCalendar creates a calendar backed by baseURL for a country
// code such as "ua"
func NewIsDayOffCalendar(baseURL, country string, cacheTTL time.Duration, logger *zap.Logger) *IsDayOffCalendar {
	if baseURL == "" {
		baseURL = IsDayOffURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &IsDayOffCalendar{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		country:  country,
		logger:   logger,
		cache:    make(map[int]*cachedYear),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// IsHoliday checks if the given date is a non-working weekday
func (c *IsDayOffCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.year(date.Year()).holidays[dateKey(date)]
	return ok
}

// Holidays returns the holidays of the year in ascending order
func (c *IsDayOffCalendar) Holidays(year int) []time.Time {
	cached := c.year(year)
	result := make([]time.Time, 0, len(cached.holidays))
	for _, d := range cached.holidays {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result
}

// Load fetches a year ahead of use and reports whether the service answered
func (c *IsDayOffCalendar) Load(year int) error {
	cached, err := c.fetch(year)
	c.store(year, cached)
	return err
}

func (c *IsDayOffCalendar) year(year int) *cachedYear {
	c.cacheMu.RLock()
	cached, ok := c.cache[year]
	c.cacheMu.RUnlock()

	if ok && !c.expired(cached) {
		return cached
	}

	cached, _ = c.fetch(year)
	c.store(year, cached)
	return cached
}

func (c *IsDayOffCalendar) expired(cached *cachedYear) bool {
	ttl := c.cacheTTL
	if cached.failed {
		ttl = failedRetryAfter
	}
	return c.now().Sub(cached.fetchedAt) >= ttl
}

func (c *IsDayOffCalendar) store(year int, cached *cachedYear) {
	c.cacheMu.Lock()
	c.cache[year] = cached
	c.cacheMu.Unlock()
}

// fetch always returns a usable entry; on error it is an empty failed one
func (c *IsDayOffCalendar) fetch(year int) (*cachedYear, error) {
	holidays, err := c.fetchYear(year)
	if err != nil {
		c.logger.Warn("Failed to fetch holidays from remote calendar",
			zap.Int("year", year),
			zap.String("url", c.baseURL),
			zap.Error(err))
		return &cachedYear{holidays: map[string]time.Time{}, fetchedAt: c.now(), failed: true}, err
	}
	return &cachedYear{holidays: holidays, fetchedAt: c.now()}, nil
}

// fetchYear fetches a whole year from the bulk API:
// GET /api/getdata?year=2025&cc=ua
func (c *IsDayOffCalendar) fetchYear(year int) (map[string]time.Time, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	if c.country != "" {
		query.Set("cc", c.country)
	}
	endpoint := c.baseURL + "/api/getdata?" + query.Encode()

	c.logger.Debug("Fetching year from remote calendar",
		zap.String("url", endpoint),
		zap.Int("year", year))

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	holidays, err := parseBulkResponse(year, strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	c.logger.Info("Holidays fetched from remote calendar",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))
	return holidays, nil
}

// parseBulkResponse parses one code per day of the year:
// 0 = working day, 1 = non-working day, 2 = shortened day, 4 = covid working day
func parseBulkResponse(year int, data string) (map[string]time.Time, error) {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	daysInYear := first.AddDate(1, 0, 0).Sub(first).Hours() / 24

	if len(data) != int(daysInYear) {
		return nil, fmt.Errorf("bulk data length mismatch: expected %d, got %d", int(daysInYear), len(data))
	}

	holidays := make(map[string]time.Time)
	for i, code := range data {
		date := first.AddDate(0, 0, i)

		switch code {
		case '0', '2', '4':
		case '1':
			if date.Weekday() != time.Saturday && date.Weekday() != time.Sunday {
				holidays[dateKey(date)] = date
			}
		default:
			return nil, fmt.Errorf("unknown code '%c' at position %d", code, i)
		}
	}
	return holidays, nil
}
