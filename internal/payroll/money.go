package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/username/timesheet-payroll/internal/timesheet"
)

// Round2 rounds half away from zero to two decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatMoney renders v with exactly two decimal places
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundBreakdown rounds every field of b for display
func RoundBreakdown(b timesheet.Breakdown) timesheet.Breakdown {
	return timesheet.Breakdown{
		Gross:  Round2(b.Gross),
		Tax:    Round2(b.Tax),
		Social: Round2(b.Social),
		Net:    Round2(b.Net),
	}
}

// Rounded returns the totals with money fields rounded for display
func (t Totals) Rounded() Totals {
	t.Gross = Round2(t.Gross)
	t.Tax = Round2(t.Tax)
	t.Social = Round2(t.Social)
	t.Net = Round2(t.Net)
	return t
}
