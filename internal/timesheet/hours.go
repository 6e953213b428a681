package timesheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinHours = 0.0
	MaxHours = 24.0

	// DefaultWorkdayHours is what auto-fill writes into a blank regular workday
	DefaultWorkdayHours = 8.0
)

// Hours is an optional number of hours worked. The zero value is "not entered".
type Hours struct {
	value float64
	set   bool
}

// SomeHours returns entered hours. It does not validate the range; use
// ValidateHours or ParseHours at input boundaries.
func SomeHours(v float64) Hours {
	return Hours{value: v, set: true}
}

// NoHours returns the "not entered" value
func NoHours() Hours {
	return Hours{}
}

// Get returns the value and whether it was entered
func (h Hours) Get() (float64, bool) {
	return h.value, h.set
}

// IsSet reports whether hours were entered
func (h Hours) IsSet() bool {
	return h.set
}

// Value returns the entered hours, or 0 when not entered
func (h Hours) Value() float64 {
	if !h.set {
		return 0
	}
	return h.value
}

// Blank reports whether hours are not entered or entered as zero
func (h Hours) Blank() bool {
	return !h.set || h.value == 0
}

func (h Hours) String() string {
	if !h.set {
		return ""
	}
	return strconv.FormatFloat(h.value, 'f', -1, 64)
}

// ValidateHours checks that v is a finite number within 0..24
func ValidateHours(v float64) error {
	if math.IsNaN(v) || v < MinHours || v > MaxHours {
		return &HoursError{Hours: v}
	}
	return nil
}

// ParseHours parses user or file input. Blank input means "not entered".
// Both "7.5" and "7,5" are accepted.
func ParseHours(s string) (Hours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoHours(), nil
	}

	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return NoHours(), fmt.Errorf("invalid hours %q", s)
	}
	if err := ValidateHours(v); err != nil {
		return NoHours(), err
	}
	return SomeHours(v), nil
}

// MarshalJSON encodes "not entered" as null
func (h Hours) MarshalJSON() ([]byte, error) {
	if !h.set {
		return []byte("null"), nil
	}
	return json.Marshal(h.value)
}

// UnmarshalJSON accepts a number or null
func (h *Hours) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = NoHours()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("hours must be a number or null: %w", err)
	}
	*h = SomeHours(v)
	return nil
}

// MarshalCSV writes the exact value so an export re-imports unchanged
func (h Hours) MarshalCSV() (string, error) {
	return h.String(), nil
}

