package payroll

import (
	"fmt"
	"math"
	"time"

	"github.com/username/timesheet-payroll/internal/timesheet"
)

const (
	// TaxRate is the income tax withheld from gross pay
	TaxRate = 0.18
	// DefaultSocialRate is the social contribution withheld from gross pay
	DefaultSocialRate = 0.05
	// DefaultHourlyRate applies when no rate is configured
	DefaultHourlyRate = 10.0

	regularThreshold  = 8.0
	overtimeThreshold = 10.0
	saturdayThreshold = 2.0

	regularMultiplier  = 1.0
	overtimeMultiplier = 1.5
	premiumMultiplier  = 2.0
)

// Tier selects which multiplier schedule applies to a day
type Tier int

const (
	// TierPremium pays every hour at 2x (holidays and Sundays)
	TierPremium Tier = iota
	// TierSaturday pays the first 2 hours at 1.5x, the rest at 2x
	TierSaturday
	// TierRegular pays 8h at 1x, the next 2h at 1.5x, the rest at 2x
	TierRegular
)

func (t Tier) String() string {
	switch t {
	case TierPremium:
		return "premium"
	case TierSaturday:
		return "saturday"
	case TierRegular:
		return "regular"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// SelectTier picks the schedule for a day. A holiday always wins over the weekday.
func SelectTier(weekday time.Weekday, holiday bool) Tier {
	switch {
	case holiday || weekday == time.Sunday:
		return TierPremium
	case weekday == time.Saturday:
		return TierSaturday
	default:
		return TierRegular
	}
}

// InvalidRateError reports a rate outside its allowed range
type InvalidRateError struct {
	Name string
	Rate float64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid %s rate: %g", e.Name, e.Rate)
}

// Rates are the inputs of a pay calculation besides the hours
type Rates struct {
	Hourly float64 `json:"rate"`
	Social float64 `json:"social_withholding_rate"`
}

// DefaultRates returns the hourly rate with the default social rate
func DefaultRates(hourly float64) Rates {
	return Rates{Hourly: hourly, Social: DefaultSocialRate}
}

// Validate checks the hourly rate is non-negative and that the withholdings
// never exceed gross pay
func (r Rates) Validate() error {
	if r.Hourly < 0 || math.IsNaN(r.Hourly) {
		return &InvalidRateError{Name: "hourly", Rate: r.Hourly}
	}
	if r.Social < 0 || r.Social >= 1-TaxRate || math.IsNaN(r.Social) {
		return &InvalidRateError{Name: "social withholding", Rate: r.Social}
	}
	return nil
}

// GrossPay applies the tier schedule to the hours worked
func GrossPay(hours float64, weekday time.Weekday, holiday bool, hourly float64) float64 {
	switch SelectTier(weekday, holiday) {
	case TierPremium:
		return hours * hourly * premiumMultiplier
	case TierSaturday:
		return min(hours, saturdayThreshold)*hourly*overtimeMultiplier +
			max(hours-saturdayThreshold, 0)*hourly*premiumMultiplier
	default:
		return min(hours, regularThreshold)*hourly*regularMultiplier +
			min(max(hours-regularThreshold, 0), overtimeThreshold-regularThreshold)*hourly*overtimeMultiplier +
			max(hours-overtimeThreshold, 0)*hourly*premiumMultiplier
	}
}

// Compute returns the pay of one day. Absent hours pay nothing.
// Values are not rounded; use Round2 when displaying or exporting.
func Compute(hours timesheet.Hours, weekday time.Weekday, holiday bool, rates Rates) timesheet.Breakdown {
	h, ok := hours.Get()
	if !ok {
		return timesheet.Breakdown{}
	}

	gross := GrossPay(h, weekday, holiday, rates.Hourly)
	tax := gross * TaxRate
	social := gross * rates.Social
	return timesheet.Breakdown{
		Gross:  gross,
		Tax:    tax,
		Social: social,
		Net:    gross - tax - social,
	}
}

// ComputeDay computes the pay of a single record
func ComputeDay(r timesheet.DayRecord, rates Rates) timesheet.Breakdown {
	return Compute(r.Hours, r.Weekday, r.IsHoliday, rates)
}
