package payroll

import (
	"fmt"
	"strings"

	"github.com/username/timesheet-payroll/internal/timesheet"
)

// RecomputeMode controls when pay is recalculated
type RecomputeMode string

const (
	// RecomputeExplicit computes only when asked to
	RecomputeExplicit RecomputeMode = "explicit"
	// RecomputeAuto computes on every read of the totals
	RecomputeAuto RecomputeMode = "auto"
)

// ParseRecomputeMode parses a mode name; empty means explicit
func ParseRecomputeMode(s string) (RecomputeMode, error) {
	switch RecomputeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", RecomputeExplicit:
		return RecomputeExplicit, nil
	case RecomputeAuto:
		return RecomputeAuto, nil
	default:
		return "", fmt.Errorf("unknown recompute mode %q (want explicit or auto)", s)
	}
}

// Totals is the aggregate of a table
type Totals struct {
	Gross        float64 `json:"gross_pay"`
	Tax          float64 `json:"tax_withholding"`
	Social       float64 `json:"social_withholding"`
	Net          float64 `json:"net_pay"`
	Hours        float64 `json:"hours"`
	ComputedDays int     `json:"computed_days"`
	WorkedDays   int     `json:"worked_days"`
}

// Summarize sums the computed pay of every row. Rows without pay contribute
// zero money but their hours are still counted.
func Summarize(t timesheet.Table) Totals {
	totals := Totals{Hours: t.TotalHours()}
	for _, r := range t.Records {
		if r.Hours.IsSet() && r.Hours.Value() > 0 {
			totals.WorkedDays++
		}
		if r.Pay == nil {
			continue
		}
		totals.ComputedDays++
		totals.Gross += r.Pay.Gross
		totals.Tax += r.Pay.Tax
		totals.Social += r.Pay.Social
		totals.Net += r.Pay.Net
	}
	return totals
}

// Engine applies one set of rates and a recompute mode to tables
type Engine struct {
	rates Rates
	mode  RecomputeMode
}

// NewEngine validates the rates and returns an engine
func NewEngine(rates Rates, mode RecomputeMode) (*Engine, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = RecomputeExplicit
	}
	return &Engine{rates: rates, mode: mode}, nil
}

// Rates returns the engine's rates
func (e *Engine) Rates() Rates {
	return e.rates
}

// Mode returns the engine's recompute mode
func (e *Engine) Mode() RecomputeMode {
	return e.mode
}

// ComputeTable returns a copy of t with the pay of every row filled in
func (e *Engine) ComputeTable(t timesheet.Table) timesheet.Table {
	out := t.Clone()
	for i := range out.Records {
		pay := ComputeDay(out.Records[i], e.rates)
		out.Records[i].Pay = &pay
	}
	return out
}

// Totals summarizes t, computing it first in auto mode
func (e *Engine) Totals(t timesheet.Table) Totals {
	if e.mode == RecomputeAuto {
		t = e.ComputeTable(t)
	}
	return Summarize(t)
}
