// Package metrics derives the growth, profitability and valuation
// figures that no provider reports directly. Every function is pure:
// inputs in, a defined-or-undefined metric out, no I/O.
package metrics

import (
	"math"

	"github.com/crownwell/vnscreener/internal/domain"
)

// CAGR computes compound annual growth over the trailing window of a
// year-ascending series. It needs years+1 observations and a positive
// starting value; otherwise the growth rate is undefined. A negative
// ending value is also undefined: the root of a negative ratio has no
// real meaning for a growth screen.
func CAGR(series []float64, years int) domain.Metric {
	if years <= 0 || len(series) < years+1 {
		return domain.UndefinedMetric()
	}

	start := series[len(series)-1-years]
	end := series[len(series)-1]
	if start <= 0 || end <= 0 {
		return domain.UndefinedMetric()
	}

	return domain.DefinedMetric(math.Pow(end/start, 1/float64(years)) - 1)
}

// ReturnOnAverage computes latest-income over the average of the last
// two base observations (equity for ROE, assets for ROA). Averaging
// smooths mid-year capital raises. A single base observation is used
// as-is.
func ReturnOnAverage(income []float64, base []float64) domain.Metric {
	if len(income) == 0 || len(base) == 0 {
		return domain.UndefinedMetric()
	}

	avg := base[len(base)-1]
	if len(base) >= 2 {
		avg = (base[len(base)-1] + base[len(base)-2]) / 2
	}
	if avg <= 0 {
		return domain.UndefinedMetric()
	}

	return domain.DefinedMetric(income[len(income)-1] / avg)
}

// PEG is the price-to-earnings ratio over profit growth expressed in
// whole percents. Defined only when both inputs are defined and growth
// is positive: a shrinking company has no meaningful PEG.
func PEG(pe, profitCAGR domain.Metric) domain.Metric {
	if !pe.Defined() || !profitCAGR.Defined() {
		return domain.UndefinedMetric()
	}
	growth := profitCAGR.Value() * 100
	if growth <= 0 {
		return domain.UndefinedMetric()
	}
	return domain.DefinedMetric(pe.Value() / growth)
}
