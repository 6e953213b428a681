package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/internal/payroll"
	"github.com/username/timesheet-payroll/internal/timesheet"
	"github.com/username/timesheet-payroll/pkg/dateutil"
	"go.uber.org/zap"
)

func newSession(t *testing.T, mode payroll.RecomputeMode) *Session {
	t.Helper()
	s, err := New(calendar.Ukraine2025(), payroll.DefaultRates(10), mode)
	require.NoError(t, err)
	return s
}

func TestSession_ExplicitLifecycle(t *testing.T) {
	s := newSession(t, payroll.RecomputeExplicit)
	assert.Equal(t, StateEmpty, s.State())

	require.NoError(t, s.Generate(dateutil.Date(2025, 1, 1), dateutil.Date(2025, 1, 31)))
	assert.Equal(t, StateGenerated, s.State())

	s.AutoFill()
	assert.Equal(t, StateEdited, s.State())

	totals := s.Compute()
	assert.Equal(t, StateComputed, s.State())
	assert.InDelta(t, 21*80.0, totals.Gross, 1e-9)

	_, stale := s.Totals()
	assert.False(t, stale)

	// editing after compute keeps the old pay and flags it stale
	require.NoError(t, s.SetHours(dateutil.Date(2025, 1, 2), timesheet.SomeHours(9)))
	assert.Equal(t, StateEdited, s.State())
	totals, stale = s.Totals()
	assert.True(t, stale)
	assert.InDelta(t, 21*80.0, totals.Gross, 1e-9)

	totals = s.Compute()
	assert.InDelta(t, 20*80.0+95, totals.Gross, 1e-9)
}

func TestSession_AutoMode(t *testing.T) {
	s := newSession(t, payroll.RecomputeAuto)

	require.NoError(t, s.Generate(dateutil.Date(2025, 1, 2), dateutil.Date(2025, 1, 4)))
	require.NoError(t, s.SetHours(dateutil.Date(2025, 1, 4), timesheet.SomeHours(5)))

	totals, stale := s.Totals()
	assert.False(t, stale)
	assert.Equal(t, StateComputed, s.State())
	assert.InDelta(t, 90.0, totals.Gross, 1e-9)
}

func TestSession_FailedOperationsKeepTable(t *testing.T) {
	s := newSession(t, payroll.RecomputeExplicit)
	require.NoError(t, s.Generate(dateutil.Date(2025, 1, 1), dateutil.Date(2025, 1, 10)))
	s.AutoFill()
	before := s.Table()
	state := s.State()

	err := s.Generate(dateutil.Date(2025, 2, 1), dateutil.Date(2025, 1, 1))
	var rangeErr *timesheet.RangeError
	assert.True(t, errors.As(err, &rangeErr))

	err = s.Import(timesheet.RawRows{Columns: []string{"Date"}})
	var schemaErr *timesheet.SchemaError
	assert.True(t, errors.As(err, &schemaErr))

	err = s.SetHours(dateutil.Date(2025, 1, 2), timesheet.SomeHours(30))
	var hoursErr *timesheet.HoursError
	assert.True(t, errors.As(err, &hoursErr))

	assert.ErrorIs(t, s.AddDay(dateutil.Date(2025, 1, 5)), timesheet.ErrDuplicateDate)
	assert.ErrorIs(t, s.RemoveDay(dateutil.Date(2025, 3, 1)), timesheet.ErrDayNotFound)

	assert.Equal(t, before, s.Table())
	assert.Equal(t, state, s.State())
}

func TestSession_TableIsACopy(t *testing.T) {
	s := newSession(t, payroll.RecomputeExplicit)
	require.NoError(t, s.GenerateMonth(2025, time.March))
	s.Compute()

	table := s.Table()
	table.Records[0].Hours = timesheet.SomeHours(5)
	table.Records[0].Pay.Gross = 1000

	again := s.Table()
	assert.False(t, again.Records[0].Hours.IsSet())
	assert.Equal(t, 0.0, again.Records[0].Pay.Gross)
}

func TestSession_SetRates(t *testing.T) {
	s := newSession(t, payroll.RecomputeExplicit)
	require.NoError(t, s.Generate(dateutil.Date(2025, 1, 2), dateutil.Date(2025, 1, 2)))
	s.AutoFill()
	s.Compute()

	require.NoError(t, s.SetRates(payroll.Rates{Hourly: 20, Social: 0.015}))
	assert.Equal(t, StateEdited, s.State())

	totals := s.Compute()
	assert.InDelta(t, 160.0, totals.Gross, 1e-9)
	assert.InDelta(t, 2.4, totals.Social, 1e-9)

	var rateErr *payroll.InvalidRateError
	assert.True(t, errors.As(s.SetRates(payroll.Rates{Hourly: -1}), &rateErr))
	assert.Equal(t, 20.0, s.Rates().Hourly)
}

func TestSession_AddDayOnEmpty(t *testing.T) {
	s := newSession(t, payroll.RecomputeExplicit)
	s.AutoFill()
	assert.Equal(t, StateEmpty, s.State())

	require.NoError(t, s.AddDay(dateutil.Date(2025, 1, 6)))
	assert.Equal(t, StateEdited, s.State())
	assert.Equal(t, 1, s.Table().Len())
}

func TestStore(t *testing.T) {
	store := NewStore(time.Hour, zap.NewNop())

	a := newSession(t, payroll.RecomputeExplicit)
	b := newSession(t, payroll.RecomputeExplicit)
	idA := store.Create(a)
	idB := store.Create(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.With(idA, func(s *Session) error {
		return s.Generate(dateutil.Date(2025, 1, 1), dateutil.Date(2025, 1, 31))
	}))

	got, err := store.Get(idB)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Table().Len(), "sessions do not share tables")

	sentinel := errors.New("boom")
	assert.ErrorIs(t, store.With(idA, func(*Session) error { return sentinel }), sentinel)

	assert.ErrorIs(t, store.With("missing", func(*Session) error { return nil }), ErrSessionNotFound)
	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(idA))
	assert.ErrorIs(t, store.Delete(idA), ErrSessionNotFound)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	store := NewStore(time.Hour, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old := store.Create(newSession(t, payroll.RecomputeExplicit))
	now = now.Add(30 * time.Minute)
	fresh := store.Create(newSession(t, payroll.RecomputeExplicit))

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, err := store.Get(old)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(fresh)
	assert.NoError(t, err)

	// using a session keeps it alive
	now = now.Add(50 * time.Minute)
	require.NoError(t, store.With(fresh, func(*Session) error { return nil }))
	now = now.Add(50 * time.Minute)
	assert.Equal(t, 0, store.Sweep())

	forever := NewStore(0, zap.NewNop())
	forever.Create(newSession(t, payroll.RecomputeExplicit))
	assert.Equal(t, 0, forever.Sweep())
}

func TestStore_ConcurrentSessions(t *testing.T) {
	store := NewStore(time.Hour, zap.NewNop())
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = store.Create(newSession(t, payroll.RecomputeExplicit))
		require.NoError(t, store.With(ids[i], func(s *Session) error {
			return s.Generate(dateutil.Date(2025, 1, 1), dateutil.Date(2025, 1, 31))
		}))
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for day := 1; day <= 31; day++ {
				_ = store.With(id, func(s *Session) error {
					return s.SetHours(dateutil.Date(2025, 1, day), timesheet.SomeHours(float64(i)))
				})
			}
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		require.NoError(t, store.With(id, func(s *Session) error {
			assert.Equal(t, float64(i*31), s.Table().TotalHours())
			return nil
		}))
	}
}
