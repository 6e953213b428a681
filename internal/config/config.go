package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. TIMESHEET_PAY_RATE
const EnvPrefix = "TIMESHEET"

// Config represents application configuration
type Config struct {
	Pay      PayConfig      `mapstructure:"pay"`
	Period   PeriodConfig   `mapstructure:"period"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// PayConfig represents the pay rates
type PayConfig struct {
	Rate                  float64 `mapstructure:"rate"`
	SocialWithholdingRate float64 `mapstructure:"social_withholding_rate"`
	Recompute             string  `mapstructure:"recompute"` // "explicit" or "auto"
}

// PeriodConfig selects the days of a new timesheet: either start/end or
// month/year. With neither, the current month is used.
type PeriodConfig struct {
	Start    string `mapstructure:"start"` // YYYY-MM-DD
	End      string `mapstructure:"end"`
	Month    int    `mapstructure:"month"` // 1-12
	Year     int    `mapstructure:"year"`
	AutoFill bool   `mapstructure:"auto_fill"`
}

// CalendarConfig represents calendar configuration
type CalendarConfig struct {
	HolidaysFile string `mapstructure:"holidays_file"` // .yaml/.yml or one date per line
	Locale       string `mapstructure:"locale"`        // "en" or "uk"
	RemoteURL    string `mapstructure:"remote_url"`    // isdayoff.ru compatible service, empty disables
	Country      string `mapstructure:"country"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

// ExportConfig represents export defaults
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // csv, xlsx or pdf
}

// ServerConfig represents the HTTP service configuration
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	SessionTTL     string `mapstructure:"session_ttl"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	SystemTray     bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pay.rate", payroll.DefaultHourlyRate)
	v.SetDefault("pay.social_withholding_rate", payroll.DefaultSocialRate)
	v.SetDefault("pay.recompute", string(payroll.RecomputeExplicit))
	v.SetDefault("period.start", "")
	v.SetDefault("period.end", "")
	v.SetDefault("period.month", 0)
	v.SetDefault("period.year", 0)
	v.SetDefault("period.auto_fill", false)
	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("calendar.locale", "en")
	v.SetDefault("calendar.remote_url", "")
	v.SetDefault("calendar.country", "ua")
	v.SetDefault("calendar.cache_ttl", "24h")
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", string(sheetio.FormatCSV))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", "12h")
	v.SetDefault("server.max_upload_bytes", 1<<20)
	v.SetDefault("server.system_tray", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file. With no path the usual locations are
// searched and a missing file just means defaults; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.timesheet")
		v.AddConfigPath("/etc/timesheet")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Rates().Validate(); err != nil {
		return fmt.Errorf("pay: %w", err)
	}
	if _, err := payroll.ParseRecomputeMode(c.Pay.Recompute); err != nil {
		return fmt.Errorf("pay.recompute: %w", err)
	}

	if _, _, err := c.Period.Resolve(dateutil.Today()); err != nil {
		return fmt.Errorf("period: %w", err)
	}

	if _, err := calendar.LocaleByCode(c.Calendar.Locale); err != nil {
		return fmt.Errorf("calendar.locale: %w", err)
	}
	if c.Calendar.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Calendar.CacheTTL); err != nil {
			return fmt.Errorf("calendar.cache_ttl must be a duration, got '%s'", c.Calendar.CacheTTL)
		}
	}

	if _, err := sheetio.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}

	if c.Server.SessionTTL != "" {
		if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
			return fmt.Errorf("server.session_ttl must be a duration, got '%s'", c.Server.SessionTTL)
		}
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

// Rates returns the configured pay rates
func (c *Config) Rates() payroll.Rates {
	rates := payroll.DefaultRates(c.Pay.Rate)
	rates.Social = c.Pay.SocialWithholdingRate
	return rates
}

// GetRecomputeMode returns the recompute mode, explicit by default
func (c *PayConfig) GetRecomputeMode() payroll.RecomputeMode {
	mode, err := payroll.ParseRecomputeMode(c.Recompute)
	if err != nil {
		return payroll.RecomputeExplicit
	}
	return mode
}

// Resolve returns the first and last day of the period. start/end win over
// month/year; a month without a year means this year; nothing at all means
// the month containing today.
func (p *PeriodConfig) Resolve(today time.Time) (time.Time, time.Time, error) {
	if p.Start != "" || p.End != "" {
		if p.Start == "" || p.End == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("start and end must be set together")
		}
		start, err := dateutil.ParseDate(p.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
		end, err := dateutil.ParseDate(p.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		return start, end, nil
	}

	if p.Month != 0 {
		if p.Month < 1 || p.Month > 12 {
			return time.Time{}, time.Time{}, fmt.Errorf("month must be between 1 and 12, got %d", p.Month)
		}
		year := p.Year
		if year == 0 {
			year = today.Year()
		}
		start, end := dateutil.MonthBounds(year, time.Month(p.Month))
		return start, end, nil
	}

	start, end := dateutil.MonthBounds(today.Year(), today.Month())
	return start, end, nil
}

// GetLocale returns the display locale, English by default
func (c *CalendarConfig) GetLocale() calendar.Locale {
	loc, err := calendar.LocaleByCode(c.Locale)
	if err != nil {
		return calendar.English
	}
	return loc
}

// GetCacheTTL returns how long remote holidays are cached
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// Sources returns the holiday sources to build the calendar from
func (c *CalendarConfig) Sources() calendar.Sources {
	return calendar.Sources{
		File:      c.HolidaysFile,
		RemoteURL: c.RemoteURL,
		Country:   c.Country,
		CacheTTL:  c.GetCacheTTL(),
	}
}

// GetFormat returns the export format, CSV by default
func (c *ExportConfig) GetFormat() sheetio.Format {
	f, err := sheetio.ParseFormat(c.Format)
	if err != nil {
		return sheetio.FormatCSV
	}
	return f
}

// GetSessionTTL returns how long an idle HTTP session is kept
func (c *ServerConfig) GetSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return 12 * time.Hour
	}
	duration, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 12 * time.Hour
	}
	return duration
}

// GetSweepInterval returns how often expired sessions are looked for
func (c *ServerConfig) GetSweepInterval() time.Duration {
	interval := c.GetSessionTTL() / 10
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}

// ExpandEnvVars expands environment variables in config paths
func (c *Config) ExpandEnvVars() {
	c.Calendar.HolidaysFile = os.ExpandEnv(c.Calendar.HolidaysFile)
	c.Export.Dir = os.ExpandEnv(c.Export.Dir)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
