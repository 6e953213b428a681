package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

// Defaults are applied to new sessions when the request leaves them out
type Defaults struct {
	Rates  payroll.Rates
	Mode   payroll.RecomputeMode
	Locale calendar.Locale
}

// Server is the HTTP variant of the timesheet editor. Every client works on
// its own session in the store.
type Server struct {
	store          *session.Store
	cal            calendar.HolidayCalendar
	defaults       Defaults
	maxUploadBytes int64
	today          func() time.Time
	logger         *zap.Logger
}

// New creates a server
func New(store *session.Store, cal calendar.HolidayCalendar, defaults Defaults, maxUploadBytes int64, logger *zap.Logger) *Server {
	if defaults.Locale.Code == "" {
		defaults.Locale = calendar.English
	}
	return &Server{
		store:          store,
		cal:            cal,
		defaults:       defaults,
		maxUploadBytes: maxUploadBytes,
		today:          dateutil.Today,
		logger:         logger,
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(bodyLimit(s.maxUploadBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/holidays", s.handleHolidays)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/import", s.handleImport)
				r.Post("/days", s.handleAddDay)
				r.Put("/days/{date}", s.handleSetHours)
				r.Delete("/days/{date}", s.handleRemoveDay)
				r.Post("/autofill", s.handleAutoFill)
				r.Post("/compute", s.handleCompute)
				r.Put("/rates", s.handleSetRates)
				r.Get("/totals", s.handleTotals)
				r.Get("/export", s.handleExport)
			})
		})
	})

	return router
}

// SweepExpired drops idle sessions
func (s *Server) SweepExpired() int {
	return s.store.Sweep()
}

// ActiveSessions returns the number of live sessions
func (s *Server) ActiveSessions() int {
	return s.store.Len()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
