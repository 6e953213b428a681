package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/config"
	"github.com/username/timesheet-payroll/internal/daemon"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/server"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/internal/tui"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

var savedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))

// sheetFlags are the overrides shared by the table commands
type sheetFlags struct {
	start    string
	end      string
	month    int
	year     int
	autoFill bool
	rate     float64
	social   float64
	locale   string
	output   string
	format   string
}

func (f *sheetFlags) registerPeriod(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First day (YYYY-MM-DD or DD.MM.YYYY)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day (YYYY-MM-DD or DD.MM.YYYY)")
	cmd.Flags().IntVar(&f.month, "month", 0, "Month 1-12 (instead of --start/--end)")
	cmd.Flags().IntVar(&f.year, "year", 0, "Year of --month (default: this year)")
}

func (f *sheetFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.autoFill, "auto-fill", false, "Put default hours on blank regular workdays")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "Hourly rate (overrides pay.rate)")
	cmd.Flags().Float64Var(&f.social, "social", 0, "Social withholding rate (overrides pay.social_withholding_rate)")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Labels locale: en or uk")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file or directory")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: csv, xlsx or pdf")
}

// apply loads the config and lays the flags over it
func (f *sheetFlags) apply(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("start") || flags.Changed("end") {
		cfg.Period.Start, cfg.Period.End = f.start, f.end
	}
	if flags.Changed("month") {
		cfg.Period.Start, cfg.Period.End = "", ""
		cfg.Period.Month, cfg.Period.Year = f.month, f.year
	}
	if flags.Changed("auto-fill") {
		cfg.Period.AutoFill = f.autoFill
	}
	if flags.Changed("rate") {
		cfg.Pay.Rate = f.rate
	}
	if flags.Changed("social") {
		cfg.Pay.SocialWithholdingRate = f.social
	}
	if flags.Changed("locale") {
		cfg.Calendar.Locale = f.locale
	}
	if flags.Changed("format") {
		cfg.Export.Format = f.format
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// outputFormat is --format, else the extension of -o, else export.format
func (f *sheetFlags) outputFormat(cfg *config.Config) sheetio.Format {
	if f.format == "" && f.output != "" {
		if format, err := sheetio.DetectFormat(f.output); err == nil {
			return format
		}
	}
	return cfg.Export.GetFormat()
}

// loadCalendar builds the holiday calendar, fetching the given years from
// the remote service when one is configured
func loadCalendar(cfg *config.Config, years ...int) (calendar.HolidayCalendar, error) {
	sources := cfg.Calendar.Sources()
	sources.Prefetch = years
	cal, err := calendar.New(sources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return cal, nil
}

// periodYears lists the years a period touches
func periodYears(start, end time.Time) []int {
	years := []int{}
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func newSession(cfg *config.Config, years ...int) (*session.Session, error) {
	cal, err := loadCalendar(cfg, years...)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(cal, cfg.Rates(), cfg.Pay.GetRecomputeMode())
	if err != nil {
		return nil, err
	}
	sess.SetLocale(cfg.Calendar.GetLocale())
	return sess, nil
}

func export(sess *session.Session, cfg *config.Config, f *sheetFlags) (string, error) {
	totals, _ := sess.Totals()
	sheet := sheetio.Sheet{
		Table:  sess.Table(),
		Totals: totals,
		Rates:  sess.Rates(),
		Locale: sess.Locale(),
	}

	format := f.outputFormat(cfg)
	path, err := sheetio.ExportFile(f.output, cfg.Export.Dir, format, sheet)
	if err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}

	logger.Info("Timesheet exported",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("days", sheet.Table.Len()))
	return path, nil
}

func generateCmd() *cobra.Command {
	var f sheetFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a timesheet for a date range or month and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.apply(cmd)
			if err != nil {
				return err
			}

			start, end, err := cfg.Period.Resolve(dateutil.Today())
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, periodYears(start, end)...)
			if err != nil {
				return err
			}
			if err := sess.Generate(start, end); err != nil {
				return err
			}
			if cfg.Period.AutoFill {
				sess.AutoFill()
			}

			logger.Info("Timesheet generated",
				zap.String("start", dateutil.Format(start)),
				zap.String("end", dateutil.Format(end)),
				zap.Bool("auto_fill", cfg.Period.AutoFill))

			path, err := export(sess, cfg, &f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), savedStyle.Render("Saved "+path))
			return nil
		},
	}

	f.registerPeriod(cmd)
	f.registerCommon(cmd)
	return cmd
}

func calcCmd() *cobra.Command {
	var f sheetFlags

	cmd := &cobra.Command{
		Use:   "calc <file>",
		Short: "Import a timesheet, compute pay and print the totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.apply(cmd)
			if err != nil {
				return err
			}

			sess, err := newSession(cfg)
			if err != nil {
				return err
			}
			if err := importFile(sess, args[0]); err != nil {
				return err
			}
			if cfg.Period.AutoFill {
				sess.AutoFill()
			}

			totals := sess.Compute()
			logger.Info("Pay computed",
				zap.Int("days", sess.Table().Len()),
				zap.Float64("hours", totals.Hours),
				zap.String("net_pay", payroll.FormatMoney(totals.Net)))

			if err := tui.PrintTable(cmd.OutOrStdout(), sess); err != nil {
				return err
			}

			if f.output != "" {
				path, err := export(sess, cfg, &f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), savedStyle.Render("Saved "+path))
			}
			return nil
		},
	}

	f.registerCommon(cmd)
	return cmd
}

func editCmd() *cobra.Command {
	var f sheetFlags
	var input string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit hours interactively over a date range or an imported file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.apply(cmd)
			if err != nil {
				return err
			}

			var sess *session.Session
			if input != "" {
				if sess, err = newSession(cfg); err != nil {
					return err
				}
				if err := importFile(sess, input); err != nil {
					return err
				}
				if f.output == "" && !cmd.Flags().Changed("format") {
					// save back to the imported file
					f.output = input
				}
			} else {
				start, end, err := cfg.Period.Resolve(dateutil.Today())
				if err != nil {
					return err
				}
				if sess, err = newSession(cfg, periodYears(start, end)...); err != nil {
					return err
				}
				if err := sess.Generate(start, end); err != nil {
					return err
				}
			}
			if cfg.Period.AutoFill {
				sess.AutoFill()
			}

			return tui.Run(os.Stdout, sess, tui.Options{
				Format: f.outputFormat(cfg),
				Path:   f.output,
				Dir:    cfg.Export.Dir,
			}, logger)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Timesheet file to edit (csv or xlsx)")
	f.registerPeriod(cmd)
	f.registerCommon(cmd)
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	var systemTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("system-tray") {
				cfg.Server.SystemTray = systemTray
			}

			cal, err := loadCalendar(cfg, dateutil.Today().Year())
			if err != nil {
				return err
			}

			store := session.NewStore(cfg.Server.GetSessionTTL(), logger)
			srv := server.New(store, cal, server.Defaults{
				Rates:  cfg.Rates(),
				Mode:   cfg.Pay.GetRecomputeMode(),
				Locale: cfg.Calendar.GetLocale(),
			}, cfg.Server.MaxUploadBytes, logger)

			logger.Info("Starting HTTP service",
				zap.String("addr", cfg.Server.Addr),
				zap.Duration("session_ttl", cfg.Server.GetSessionTTL()),
				zap.Bool("system_tray", cfg.Server.SystemTray))

			runner := daemon.NewRunner(cfg.Server.Addr, srv.Handler(), srv,
				cfg.Server.GetSweepInterval(), cfg.Server.SystemTray, logger)
			return runner.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&systemTray, "system-tray", false, "Show a system tray icon (Windows only)")
	return cmd
}

func holidaysCmd() *cobra.Command {
	var year int
	var locale string

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the holidays of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("locale") {
				cfg.Calendar.Locale = locale
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			if year == 0 {
				year = dateutil.Today().Year()
			}

			cal, err := loadCalendar(cfg, year)
			if err != nil {
				return err
			}

			loc := cfg.Calendar.GetLocale()
			holidays := calendar.List(cal, year)
			out := cmd.OutOrStdout()
			for _, h := range holidays {
				fmt.Fprintf(out, "%s  %-10s  %s\n", dateutil.Format(h.Date), loc.Weekday(h.Date.Weekday()), h.Name)
			}
			if len(holidays) == 0 {
				fmt.Fprintf(out, "No holidays known for %d\n", year)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to list (default: this year)")
	cmd.Flags().StringVar(&locale, "locale", "", "Weekday locale: en or uk")
	return cmd
}

func importFile(sess *session.Session, path string) error {
	raw, err := sheetio.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := sess.Import(raw); err != nil {
		return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
	}

	logger.Info("Timesheet imported",
		zap.String("path", path),
		zap.Int("days", sess.Table().Len()))
	return nil
}
