package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/session"
	"github.com/username/timesheet-payroll/internal/sheetio"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"go.uber.org/zap"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *apiError `json:"error,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

// badRequestError marks malformed input that never reached the domain
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}

func badRequest(err error) error {
	return &badRequestError{err: err}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload envelope) {
	payload.RequestID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) success(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeJSON(w, r, status, envelope{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	s.writeJSON(w, r, status, envelope{Error: &apiError{Code: code, Message: err.Error()}})
}

// classify maps domain errors to an HTTP status and a stable error code
func classify(err error) (int, string) {
	var (
		badReq    *badRequestError
		rangeErr  *timesheet.RangeError
		schemaErr *timesheet.SchemaError
		rowErr    *timesheet.RowError
		hoursErr  *timesheet.HoursError
		rateErr   *payroll.InvalidRateError
		tooLarge  *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, timesheet.ErrDayNotFound):
		return http.StatusNotFound, "day_not_found"
	case errors.Is(err, timesheet.ErrDuplicateDate) && !errors.As(err, &rowErr):
		return http.StatusConflict, "duplicate_date"
	case errors.Is(err, sheetio.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.As(err, &badReq):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &rangeErr):
		return http.StatusUnprocessableEntity, "invalid_range"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "missing_columns"
	case errors.As(err, &rowErr):
		return http.StatusUnprocessableEntity, "invalid_row"
	case errors.As(err, &hoursErr):
		return http.StatusUnprocessableEntity, "invalid_hours"
	case errors.As(err, &rateErr):
		return http.StatusUnprocessableEntity, "invalid_rate"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
