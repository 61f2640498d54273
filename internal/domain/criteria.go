package domain

// ScreeningCriteria is a flat set of named thresholds. A zero value
// disables the bound; MaxManagementOwnership is additionally disabled
// at 1.0 and above since ownership is a fraction in [0,1].
// Read-only during evaluation.
type ScreeningCriteria struct {
	MinRevenueCAGR3Y float64 `json:"min_revenue_cagr_3y"`
	MinProfitCAGR3Y  float64 `json:"min_profit_cagr_3y"`
	MinROE           float64 `json:"min_roe"`
	MinROA           float64 `json:"min_roa"`

	MaxPE       float64 `json:"max_pe"`
	MaxPB       float64 `json:"max_pb"`
	MaxPEG      float64 `json:"max_peg"`
	MaxEVEBITDA float64 `json:"max_ev_ebitda"`

	MinGrossMargin     float64 `json:"min_gross_margin"`
	MinOperatingMargin float64 `json:"min_operating_margin"`

	MaxDebtToEquity float64 `json:"max_debt_to_equity"`
	MinCurrentRatio float64 `json:"min_current_ratio"`
	MinQuickRatio   float64 `json:"min_quick_ratio"`

	MinDividendYield float64 `json:"min_dividend_yield"`

	MinFreeFloat           float64 `json:"min_free_float"`
	MinForeignOwnership    float64 `json:"min_foreign_ownership"`
	MaxManagementOwnership float64 `json:"max_management_ownership"`

	MinMarketCapBillion       float64 `json:"min_market_cap_billion"`
	MinAvgTradingValueBillion float64 `json:"min_avg_trading_value_billion"`
}

// DefaultCriteria returns criteria with every bound disabled.
func DefaultCriteria() ScreeningCriteria {
	return ScreeningCriteria{}
}
