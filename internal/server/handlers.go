package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Month      int      `json:"month"`
	Year       int      `json:"year"`
	Rate       *float64 `json:"rate"`
	SocialRate *float64 `json:"social_withholding_rate"`
	AutoFill   bool     `json:"auto_fill"`
	Recompute  string   `json:"recompute"`
	Locale     string   `json:"locale"`
}

type ratesRequest struct {
	Rate       *float64 `json:"rate"`
	SocialRate *float64 `json:"social_withholding_rate"`
}

// hoursRequest keeps the raw value so a missing key differs from null
type hoursRequest struct {
	Hours json.RawMessage `json:"hours"`
}

type holidayResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Name    string `json:"name,omitempty"`
}

type addDayRequest struct {
	Date string `json:"date"`
}

type dayResponse struct {
	Date      string               `json:"date"`
	Weekday   string               `json:"weekday"`
	IsHoliday bool                 `json:"is_holiday"`
	Hours     timesheet.Hours      `json:"hours"`
	Pay       *timesheet.Breakdown `json:"pay,omitempty"`
}

type totalsResponse struct {
	Totals payroll.Totals `json:"totals"`
	Stale  bool           `json:"stale"`
	State  string         `json:"state"`
}

type sessionResponse struct {
	ID        string                `json:"id"`
	State     string                `json:"state"`
	Rates     payroll.Rates         `json:"rates"`
	Recompute payroll.RecomputeMode `json:"recompute"`
	Days      []dayResponse         `json:"days"`
	Totals    payroll.Totals        `json:"totals"`
	Stale     bool                  `json:"stale"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func pathDate(r *http.Request) (time.Time, error) {
	date, err := dateutil.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		return time.Time{}, badRequest(err)
	}
	return date, nil
}

func (s *Server) render(id string, sess *session.Session) sessionResponse {
	loc := sess.Locale()
	table := sess.Table()
	days := make([]dayResponse, 0, table.Len())
	for _, rec := range table.Records {
		day := dayResponse{
			Date:      dateutil.Format(rec.Date),
			Weekday:   rec.WeekdayLabel(loc),
			IsHoliday: rec.IsHoliday,
			Hours:     rec.Hours,
		}
		if rec.Pay != nil {
			pay := payroll.RoundBreakdown(*rec.Pay)
			day.Pay = &pay
		}
		days = append(days, day)
	}

	totals, stale := sess.Totals()
	return sessionResponse{
		ID:        id,
		State:     sess.State().String(),
		Rates:     sess.Rates(),
		Recompute: sess.Mode(),
		Days:      days,
		Totals:    totals.Rounded(),
		Stale:     stale,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	rates := s.defaults.Rates
	if req.Rate != nil {
		rates.Hourly = *req.Rate
	}
	if req.SocialRate != nil {
		rates.Social = *req.SocialRate
	}

	mode := s.defaults.Mode
	if req.Recompute != "" {
		parsed, err := payroll.ParseRecomputeMode(req.Recompute)
		if err != nil {
			s.fail(w, r, badRequest(err))
			return
		}
		mode = parsed
	}

	loc := s.defaults.Locale
	if req.Locale != "" {
		parsed, err := calendar.LocaleByCode(req.Locale)
		if err != nil {
			s.fail(w, r, badRequest(err))
			return
		}
		loc = parsed
	}

	sess, err := session.New(s.cal, rates, mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.SetLocale(loc)

	start, end, err := s.resolvePeriod(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := sess.Generate(start, end); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.AutoFill {
		sess.AutoFill()
	}

	id := s.store.Create(sess)
	s.success(w, r, http.StatusCreated, s.render(id, sess))
}

// resolvePeriod picks start/end, then month/year, then the current month
func (s *Server) resolvePeriod(req createSessionRequest) (time.Time, time.Time, error) {
	switch {
	case req.Start != "" || req.End != "":
		if req.Start == "" || req.End == "" {
			return time.Time{}, time.Time{}, badRequest(errors.New("start and end must be given together"))
		}
		start, err := dateutil.ParseDate(req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, badRequest(err)
		}
		end, err := dateutil.ParseDate(req.End)
		if err != nil {
			return time.Time{}, time.Time{}, badRequest(err)
		}
		return start, end, nil

	case req.Month != 0:
		if req.Month < 1 || req.Month > 12 {
			return time.Time{}, time.Time{}, badRequest(fmt.Errorf("month must be 1..12, got %d", req.Month))
		}
		year := req.Year
		if year == 0 {
			year = s.today().Year()
		}
		start, end := dateutil.MonthBounds(year, time.Month(req.Month))
		return start, end, nil

	default:
		today := s.today()
		start, end := dateutil.MonthBounds(today.Year(), today.Month())
		return start, end, nil
	}
}

// withSession runs fn under the session lock and renders the result
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, status int, fn func(*session.Session) error) {
	id := chi.URLParam(r, "sessionID")

	var resp sessionResponse
	err := s.store.With(id, func(sess *session.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		resp = s.render(id, sess)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.success(w, r, status, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, http.StatusOK, func(*session.Session) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.store.Delete(id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := sheetio.FormatCSV
	if q := r.URL.Query().Get("format"); q != "" {
		parsed, err := sheetio.ParseFormat(q)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		format = parsed
	} else if strings.Contains(r.Header.Get("Content-Type"), "spreadsheetml") {
		format = sheetio.FormatXLSX
	}

	raw, err := sheetio.Read(r.Body, format)
	if err != nil {
		if !errors.Is(err, sheetio.ErrUnsupportedFormat) {
			err = badRequest(err)
		}
		s.fail(w, r, err)
		return
	}

	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		if err := sess.Import(raw); err != nil {
			return err
		}
		s.logger.Info("Timesheet imported",
			zap.String("session_id", chi.URLParam(r, "sessionID")),
			zap.String("format", string(format)),
			zap.Int("days", sess.Table().Len()))
		return nil
	})
}

func (s *Server) handleSetHours(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req hoursRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Hours) == 0 {
		s.fail(w, r, badRequest(errors.New("hours is required, use null to clear the day")))
		return
	}
	var hours timesheet.Hours
	if err := json.Unmarshal(req.Hours, &hours); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		return sess.SetHours(date, hours)
	})
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	year := s.today().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 || parsed > 9999 {
			s.fail(w, r, badRequest(fmt.Errorf("invalid year %q", q)))
			return
		}
		year = parsed
	}

	loc := s.defaults.Locale
	if q := r.URL.Query().Get("locale"); q != "" {
		parsed, err := calendar.LocaleByCode(q)
		if err != nil {
			s.fail(w, r, badRequest(err))
			return
		}
		loc = parsed
	}

	holidays := calendar.List(s.cal, year)
	resp := make([]holidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, holidayResponse{
			Date:    dateutil.Format(h.Date),
			Weekday: loc.Weekday(h.Date.Weekday()),
			Name:    h.Name,
		})
	}
	s.success(w, r, http.StatusOK, resp)
}

func (s *Server) handleAddDay(w http.ResponseWriter, r *http.Request) {
	var req addDayRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	date, err := dateutil.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	s.withSession(w, r, http.StatusCreated, func(sess *session.Session) error {
		return sess.AddDay(date)
	})
}

func (s *Server) handleRemoveDay(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		return sess.RemoveDay(date)
	})
}

func (s *Server) handleAutoFill(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		sess.AutoFill()
		return nil
	})
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		sess.Compute()
		return nil
	})
}

func (s *Server) handleSetRates(w http.ResponseWriter, r *http.Request) {
	var req ratesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	s.withSession(w, r, http.StatusOK, func(sess *session.Session) error {
		rates := sess.Rates()
		if req.Rate != nil {
			rates.Hourly = *req.Rate
		}
		if req.SocialRate != nil {
			rates.Social = *req.SocialRate
		}
		return sess.SetRates(rates)
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	var resp totalsResponse
	err := s.store.With(chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		totals, stale := sess.Totals()
		resp = totalsResponse{Totals: totals.Rounded(), Stale: stale, State: sess.State().String()}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.success(w, r, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := sheetio.FormatCSV
	if q := r.URL.Query().Get("format"); q != "" {
		parsed, err := sheetio.ParseFormat(q)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		format = parsed
	}

	id := chi.URLParam(r, "sessionID")
	var sheet sheetio.Sheet
	err := s.store.With(id, func(sess *session.Session) error {
		totals, _ := sess.Totals()
		sheet = sheetio.Sheet{
			Table:  sess.Table(),
			Totals: totals,
			Rates:  sess.Rates(),
			Locale: sess.Locale(),
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": sheet.FileName(format)}))
	if err := sheetio.Export(w, format, sheet); err != nil {
		// headers are gone; all that is left is to log
		s.logger.Error("Export failed",
			zap.String("session_id", id),
			zap.String("format", string(format)),
			zap.Error(err))
	}
}
