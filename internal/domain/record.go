package domain

import "time"

// Market value provenance markers. The last-resort revenue-multiple
// estimate is deterministic but deliberately flagged so callers can
// discount it.
const (
	MarketValSourceScraped       = "cafef"
	MarketValSourcePriceShares   = "price_x_shares"
	MarketValSourceLowConfidence = "estimate_low_confidence"
)

// ResolvedRecord is the canonical per-symbol snapshot produced by one
// scan pass. It is a value object: every scan builds a fresh record,
// nothing mutates one in place.
type ResolvedRecord struct {
	// Identity
	Ticker      string   `json:"ticker"`
	Exchange    Exchange `json:"exchange"`
	CompanyName string   `json:"company_name,omitempty"`
	IsBank      bool     `json:"is_bank"`

	// Price and valuation. Monetary aggregates are billions of VND,
	// PriceVND is whole VND per share.
	PriceVND        Metric `json:"price_vnd"`
	MarketVal       Metric `json:"market_val"`
	MarketValSource string `json:"market_val_source,omitempty"`
	EstVal          Metric `json:"est_val"`
	PE              Metric `json:"pe"`
	PB              Metric `json:"pb"`
	PEG             Metric `json:"peg"`
	EVEBITDA        Metric `json:"ev_ebitda"`
	EPS             Metric `json:"eps"`
	BookValue       Metric `json:"book_value_per_share"`

	// Growth
	RevenueCAGR3Y Metric `json:"revenue_cagr_3y"`
	ProfitCAGR3Y  Metric `json:"profit_cagr_3y"`

	// Profitability (fractions in [0,1] where percentage-like)
	ROE             Metric `json:"roe"`
	ROA             Metric `json:"roa"`
	GrossMargin     Metric `json:"gross_margin"`
	OperatingMargin Metric `json:"operating_margin"`

	// Leverage / liquidity
	DebtToEquity Metric `json:"debt_to_equity"`
	DebtToAsset  Metric `json:"debt_to_asset"`
	CurrentRatio Metric `json:"current_ratio"`
	QuickRatio   Metric `json:"quick_ratio"`

	// Income / cash flow
	DividendYield     Metric `json:"dividend_yield"`
	OperatingCashFlow Metric `json:"operating_cash_flow"`
	FreeCashFlow      Metric `json:"free_cash_flow"`

	// Ownership and trading liquidity
	SharesOutstanding   Metric `json:"shares_outstanding"`
	FreeFloat           Metric `json:"free_float"`
	ForeignOwnership    Metric `json:"foreign_ownership"`
	ManagementOwnership Metric `json:"management_ownership"`
	AvgTradingValue     Metric `json:"avg_trading_value"`

	// Bank-specific, populated only for bank symbols
	NPLRatio Metric `json:"npl_ratio"`
	LLR      Metric `json:"llr"`

	ScannedAt time.Time `json:"scanned_at"`
}

// Symbol returns the record's identity pair.
func (r *ResolvedRecord) Symbol() Symbol {
	return Symbol{Ticker: r.Ticker, Exchange: r.Exchange}
}
