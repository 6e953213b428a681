package timesheet

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timesheet-payroll/internal/calendar"
	"github.com/username/timesheet-payroll/pkg/dateutil"
)

func TestImport(t *testing.T) {
	raw := RawRows{
		Columns: []string{"Date", "Weekday", "IsHoliday", "Hours"},
		Rows: []map[string]string{
			{"Date": "2025-01-03", "Weekday": "Monday", "IsHoliday": "true", "Hours": "8"},
			{"Date": "2025-01-01", "Weekday": "Friday", "IsHoliday": "false", "Hours": ""},
			{"Date": "", "Weekday": "", "IsHoliday": "", "Hours": ""},
			{"Date": "02.01.2025", "Weekday": "", "IsHoliday": "", "Hours": "7,5"},
		},
	}

	table, err := Import(raw, calendar.Ukraine2025())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	// sorted by date
	assert.Equal(t, dateutil.Date(2025, 1, 1), table.Records[0].Date)
	assert.Equal(t, dateutil.Date(2025, 1, 2), table.Records[1].Date)
	assert.Equal(t, dateutil.Date(2025, 1, 3), table.Records[2].Date)

	// derived fields recomputed from the date, not the stale columns
	assert.True(t, table.Records[0].IsHoliday)
	assert.False(t, table.Records[2].IsHoliday)
	assert.Equal(t, "Friday", table.Records[2].WeekdayLabel(calendar.English))

	assert.False(t, table.Records[0].Hours.IsSet())
	assert.Equal(t, 7.5, table.Records[1].Hours.Value())
	assert.Equal(t, 8.0, table.Records[2].Hours.Value())
}

func TestImport_HeaderAliases(t *testing.T) {
	raw := RawRows{
		Columns: []string{"\ufeffДата", " Кількість годин "},
		Rows: []map[string]string{
			{"\ufeffДата": "2025-01-02", " Кількість годин ": "6"},
		},
	}

	table, err := Import(raw, calendar.Ukraine2025())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 6.0, table.Records[0].Hours.Value())
}

func TestImport_SchemaError(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		missing []string
	}{
		{"no hours", []string{"Date", "Weekday"}, []string{ColumnHours}},
		{"no date", []string{"hours"}, []string{ColumnDate}},
		{"nothing", nil, []string{ColumnDate, ColumnHours}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(RawRows{Columns: tt.columns}, calendar.Ukraine2025())
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.missing, schemaErr.Missing)
		})
	}
}

func TestImport_RowErrors(t *testing.T) {
	cols := []string{"Date", "Hours"}
	tests := []struct {
		name  string
		rows  []map[string]string
		row   int
		field string
	}{
		{"bad date", []map[string]string{{"Date": "yesterday", "Hours": "1"}}, 1, ColumnDate},
		{"bad hours", []map[string]string{{"Date": "2025-01-02", "Hours": "abc"}}, 1, ColumnHours},
		{"hours over 24", []map[string]string{
			{"Date": "2025-01-02", "Hours": "1"},
			{"Date": "2025-01-03", "Hours": "25"},
		}, 2, ColumnHours},
		{"duplicate", []map[string]string{
			{"Date": "2025-01-02", "Hours": "1"},
			{"Date": "02.01.2025", "Hours": "2"},
		}, 2, ColumnDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(RawRows{Columns: cols, Rows: tt.rows}, calendar.Ukraine2025())
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "got %v", err)
			assert.Equal(t, tt.row, rowErr.Row)
			assert.Equal(t, tt.field, rowErr.Field)
		})
	}

	_, err := Import(RawRows{Columns: cols, Rows: []map[string]string{
		{"Date": "2025-01-02", "Hours": "1"},
		{"Date": "2025-01-02", "Hours": "1"},
	}}, calendar.Ukraine2025())
	assert.ErrorIs(t, err, ErrDuplicateDate)
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		set     bool
		wantErr bool
	}{
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"8", 8, true, false},
		{"0", 0, true, false},
		{"7.25", 7.25, true, false},
		{"7,25", 7.25, true, false},
		{"24", 24, true, false},
		{"24.01", 0, false, true},
		{"-1", 0, false, true},
		{"NaN", 0, false, true},
		{"eight", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, err := ParseHours(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			v, ok := h.Get()
			assert.Equal(t, tt.set, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestHoursJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Hours `json:"a"`
		B Hours `json:"b"`
	}{A: SomeHours(7.5), B: NoHours()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7.5,"b":null}`, string(data))

	var in struct {
		A Hours `json:"a"`
		B Hours `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":null}`), &in))
	assert.Equal(t, 3.0, in.A.Value())
	assert.False(t, in.B.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &in))
}

func TestHoursString(t *testing.T) {
	assert.Equal(t, "", NoHours().String())
	assert.Equal(t, "8", SomeHours(8).String())
	assert.Equal(t, "0.1", SomeHours(0.1).String())
	assert.True(t, NoHours().Blank())
	assert.True(t, SomeHours(0).Blank())
	assert.False(t, SomeHours(0.5).Blank())
}
