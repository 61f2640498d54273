package domain

import "time"

// Provider identifies an upstream data source.
type Provider string

const (
	ProviderTCBS      Provider = "tcbs"
	ProviderVNDirect  Provider = "vndirect"
	ProviderCafeF     Provider = "cafef"
	ProviderVietstock Provider = "vietstock"

	// ProviderComputed marks values derived locally (price x shares etc.)
	// so provenance survives into the resolver.
	ProviderComputed Provider = "computed"
)

// Field names a logical fact the resolver can reconcile.
type Field string

const (
	FieldCompanyName         Field = "company_name"
	FieldPrice               Field = "price"
	FieldMarketCap           Field = "market_cap"
	FieldSharesOutstanding   Field = "shares_outstanding"
	FieldFreeFloat           Field = "free_float"
	FieldForeignOwnership    Field = "foreign_ownership"
	FieldManagementOwnership Field = "management_ownership"
	FieldAvgTradingValue     Field = "avg_trading_value"
	FieldEPS                 Field = "eps"
	FieldBookValuePerShare   Field = "book_value_per_share"
	FieldPE                  Field = "pe"
	FieldPB                  Field = "pb"
	FieldEVEBITDA            Field = "ev_ebitda"
	FieldROE                 Field = "roe"
	FieldROA                 Field = "roa"
	FieldGrossMargin         Field = "gross_margin"
	FieldOperatingMargin     Field = "operating_margin"
	FieldDebtToEquity        Field = "debt_to_equity"
	FieldDebtToAsset         Field = "debt_to_asset"
	FieldCurrentRatio        Field = "current_ratio"
	FieldQuickRatio          Field = "quick_ratio"
	FieldDividendYield       Field = "dividend_yield"
	FieldNPLRatio            Field = "npl_ratio"
	FieldLLR                 Field = "llr"
	FieldIndustry            Field = "industry"
)

// RawValue is one provider's claim about one field of one symbol.
// Multiple RawValues may exist for the same (symbol, field); the
// resolver picks exactly one per resolution pass.
type RawValue struct {
	Provider   Provider  `json:"provider"`
	Field      Field     `json:"field"`
	Value      float64   `json:"value"`
	Text       string    `json:"text,omitempty"` // source fragment, kept for unit markers
	ObservedAt time.Time `json:"observed_at"`
}

// FieldMap is what an adapter fetch returns: at most one RawValue
// per field from that provider.
type FieldMap map[Field]RawValue
