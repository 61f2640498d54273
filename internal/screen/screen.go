// Package screen filters and ranks resolved records against a set of
// threshold criteria. Evaluation is conservative: a lower bound with
// no data fails, because "we could not verify it" must never admit a
// symbol the bound was meant to exclude.
package screen

import (
	"sort"

	"github.com/crownwell/vnscreener/internal/domain"
)

// minPass checks a lower bound. Zero disables it; an undefined metric
// fails an enabled bound.
func minPass(m domain.Metric, bound float64) bool {
	if bound == 0 {
		return true
	}
	v, ok := m.Get()
	return ok && v >= bound
}

// maxPass checks an upper bound, failing undefined metrics. Used for
// valuation ratios where missing data usually means losses (negative
// earnings have no P/E) and should not pass a cheapness filter.
func maxPass(m domain.Metric, bound float64) bool {
	if bound == 0 {
		return true
	}
	v, ok := m.Get()
	return ok && v <= bound
}

// maxPassLenient checks an upper bound, passing undefined metrics.
// Used for leverage: no reported debt ratio is far more often a data
// gap than hidden leverage, and failing it would empty bank screens.
func maxPassLenient(m domain.Metric, bound float64) bool {
	if bound == 0 {
		return true
	}
	v, ok := m.Get()
	if !ok {
		return true
	}
	return v <= bound
}

// Passes reports whether a record satisfies every enabled bound.
func Passes(r *domain.ResolvedRecord, c domain.ScreeningCriteria) bool {
	checks := []bool{
		minPass(r.RevenueCAGR3Y, c.MinRevenueCAGR3Y),
		minPass(r.ProfitCAGR3Y, c.MinProfitCAGR3Y),
		minPass(r.ROE, c.MinROE),
		minPass(r.ROA, c.MinROA),

		maxPass(r.PE, c.MaxPE),
		maxPass(r.PB, c.MaxPB),
		maxPass(r.PEG, c.MaxPEG),
		maxPass(r.EVEBITDA, c.MaxEVEBITDA),

		minPass(r.GrossMargin, c.MinGrossMargin),
		minPass(r.OperatingMargin, c.MinOperatingMargin),

		maxPassLenient(r.DebtToEquity, c.MaxDebtToEquity),
		minPass(r.CurrentRatio, c.MinCurrentRatio),
		minPass(r.QuickRatio, c.MinQuickRatio),

		minPass(r.DividendYield, c.MinDividendYield),

		minPass(r.FreeFloat, c.MinFreeFloat),
		minPass(r.ForeignOwnership, c.MinForeignOwnership),

		minPass(r.MarketVal, c.MinMarketCapBillion),
		minPass(r.AvgTradingValue, c.MinAvgTradingValueBillion),
	}
	for _, ok := range checks {
		if !ok {
			return false
		}
	}

	// Ownership is a fraction, so a bound at or above 1 excludes
	// nothing and is treated as disabled. Unreported insider
	// ownership fails an enabled bound.
	if c.MaxManagementOwnership > 0 && c.MaxManagementOwnership < 1 {
		v, ok := r.ManagementOwnership.Get()
		if !ok || v > c.MaxManagementOwnership {
			return false
		}
	}

	return true
}

// Apply filters records against the criteria and ranks survivors by
// profit growth, then return on equity, both descending. Undefined
// values rank last. The input slice is not modified.
func Apply(records []*domain.ResolvedRecord, c domain.ScreeningCriteria) []*domain.ResolvedRecord {
	var out []*domain.ResolvedRecord
	for _, r := range records {
		if Passes(r, c) {
			out = append(out, r)
		}
	}
	Rank(out)
	return out
}

// Rank sorts records in place by profit growth descending, ties
// broken by return on equity descending, then ticker for stability.
func Rank(records []*domain.ResolvedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]

		ag, bg := a.ProfitCAGR3Y.ValueOr(negInf), b.ProfitCAGR3Y.ValueOr(negInf)
		if ag != bg {
			return ag > bg
		}

		ar, br := a.ROE.ValueOr(negInf), b.ROE.ValueOr(negInf)
		if ar != br {
			return ar > br
		}

		return a.Ticker < b.Ticker
	})
}

// Undefined metrics sort below every real value, including losses.
const negInf = -1e308
