package metrics

import "github.com/crownwell/vnscreener/internal/domain"

// Discounted cash flow parameters. Fixed rather than configurable:
// a frontier-market screen wants comparable intrinsic values across
// symbols, not per-symbol tuning.
const (
	discountRate      = 0.12
	terminalGrowth    = 0.03
	projectionYears   = 5
	defaultGrowth     = 0.08
	growthFloor       = 0.02
	growthCeil        = 0.20
	capexRevenueRatio = 0.08
)

// DCFInput carries everything the intrinsic-value estimate can draw
// on. Monetary figures are in billions of VND except EPS (whole VND
// per share) and Shares (count).
type DCFInput struct {
	OperatingCashFlow domain.Metric
	Capex             domain.Metric // positive magnitude
	NetProfit         domain.Metric
	Revenue           domain.Metric
	ProfitCAGR        domain.Metric
	RevenueCAGR       domain.Metric
	EPS               domain.Metric
	Shares            domain.Metric
	MarketValue       domain.Metric
}

// EstimatedValue computes intrinsic value in billions of VND: a
// five-year free-cash-flow projection with a Gordon terminal value,
// falling back to a grown-earnings multiple and finally to market
// value itself when the statements cannot support a projection.
func EstimatedValue(in DCFInput) domain.Metric {
	if v, ok := dcfValue(in); ok {
		return domain.DefinedMetric(v)
	}

	// Grown-earnings fallback: next year's earnings at the current
	// share count. Negative growth is not extrapolated.
	if in.EPS.Defined() && in.EPS.Value() > 0 && in.Shares.Defined() && in.Shares.Value() > 0 {
		growth := 0.0
		if g, ok := in.ProfitCAGR.Get(); ok && g > 0 {
			growth = g
		}
		return domain.DefinedMetric(in.EPS.Value() * (1 + growth) * in.Shares.Value() / 1e9)
	}

	return in.MarketValue
}

// dcfValue runs the projection proper. Missing operating cash flow
// proxies to net profit; missing capex proxies to a fixed share of
// revenue. A non-positive base cash flow aborts the projection.
func dcfValue(in DCFInput) (float64, bool) {
	ocf, ok := in.OperatingCashFlow.Get()
	if !ok {
		ocf, ok = in.NetProfit.Get()
		if !ok {
			return 0, false
		}
	}

	capex, ok := in.Capex.Get()
	if !ok {
		rev, revOK := in.Revenue.Get()
		if !revOK {
			return 0, false
		}
		capex = rev * capexRevenueRatio
	}

	fcf := ocf - capex
	if fcf <= 0 {
		return 0, false
	}

	g := growthEstimate(in.ProfitCAGR, in.RevenueCAGR)

	var value float64
	discounted := 1.0
	projected := fcf
	for t := 0; t < projectionYears; t++ {
		projected *= 1 + g
		discounted *= 1 + discountRate
		value += projected / discounted
	}

	terminal := projected * (1 + terminalGrowth) / (discountRate - terminalGrowth)
	value += terminal / discounted

	if value <= 0 {
		return 0, false
	}
	return value, true
}

// growthEstimate averages the positive historical growth rates, falls
// back to a neutral assumption when both are missing or negative, and
// clamps to a band that keeps outlier histories from dominating the
// projection.
func growthEstimate(profitCAGR, revenueCAGR domain.Metric) float64 {
	var sum float64
	var n int
	if g, ok := profitCAGR.Get(); ok && g > 0 {
		sum += g
		n++
	}
	if g, ok := revenueCAGR.Get(); ok && g > 0 {
		sum += g
		n++
	}

	g := defaultGrowth
	if n > 0 {
		g = sum / float64(n)
	}

	if g < growthFloor {
		return growthFloor
	}
	if g > growthCeil {
		return growthCeil
	}
	return g
}
