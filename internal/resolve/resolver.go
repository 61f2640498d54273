package resolve

import "github.com/crownwell/vnscreener/internal/domain"

// placeholderMarketCap is a template default some CafeF pages render
// instead of a real figure. Numerically plausible, always rejected.
const placeholderMarketCap = 1000

// marketCapMin and marketCapMax bound plausible market values in
// billions of VND.
const (
	marketCapMin = 1
	marketCapMax = 10_000_000
)

// priorities fixes the provider order tried per field. Scraped
// overview values are preferred for ownership and market cap; TCBS
// for statement-derived ratios; VNDirect for price. ProviderComputed
// ranks last everywhere it appears.
var priorities = map[domain.Field][]domain.Provider{
	domain.FieldPrice:             {domain.ProviderVNDirect, domain.ProviderTCBS},
	domain.FieldMarketCap:         {domain.ProviderCafeF, domain.ProviderVietstock, domain.ProviderComputed},
	domain.FieldSharesOutstanding: {domain.ProviderVietstock, domain.ProviderTCBS, domain.ProviderComputed},

	domain.FieldFreeFloat:           {domain.ProviderVietstock},
	domain.FieldForeignOwnership:    {domain.ProviderVietstock},
	domain.FieldManagementOwnership: {domain.ProviderCafeF},
	domain.FieldAvgTradingValue:     {domain.ProviderCafeF, domain.ProviderTCBS},

	domain.FieldPE:                {domain.ProviderTCBS},
	domain.FieldPB:                {domain.ProviderTCBS},
	domain.FieldEVEBITDA:          {domain.ProviderTCBS},
	domain.FieldEPS:               {domain.ProviderTCBS},
	domain.FieldBookValuePerShare: {domain.ProviderTCBS},
	domain.FieldROE:               {domain.ProviderTCBS},
	domain.FieldROA:               {domain.ProviderTCBS},
	domain.FieldGrossMargin:       {domain.ProviderTCBS},
	domain.FieldOperatingMargin:   {domain.ProviderTCBS},
	domain.FieldDebtToEquity:      {domain.ProviderTCBS},
	domain.FieldDebtToAsset:       {domain.ProviderTCBS},
	domain.FieldCurrentRatio:      {domain.ProviderTCBS},
	domain.FieldQuickRatio:        {domain.ProviderTCBS},
	domain.FieldDividendYield:     {domain.ProviderTCBS},
	domain.FieldNPLRatio:          {domain.ProviderTCBS},
	domain.FieldLLR:               {domain.ProviderTCBS},
}

// Resolver picks exactly one value per field from the candidates the
// adapters produced. Resolution is deterministic: same candidates,
// same result.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve normalizes each candidate and accepts the first one, in
// fixed provider priority order, that passes the field's plausibility
// filter. No candidate passing resolves to undefined.
func (r *Resolver) Resolve(field domain.Field, candidates []domain.RawValue) domain.Metric {
	order, ok := priorities[field]
	if !ok {
		return domain.UndefinedMetric()
	}

	byProvider := make(map[domain.Provider]domain.RawValue, len(candidates))
	for _, c := range candidates {
		if c.Field != field {
			continue
		}
		// First candidate per provider wins; adapters emit one value
		// per field so duplicates only arise from caller mistakes.
		if _, exists := byProvider[c.Provider]; !exists {
			byProvider[c.Provider] = c
		}
	}

	for _, provider := range order {
		rv, ok := byProvider[provider]
		if !ok {
			continue
		}
		v := Normalize(field, rv)
		if plausible(field, v) {
			return domain.DefinedMetric(v)
		}
	}

	return domain.UndefinedMetric()
}

// ResolveFrom resolves a field across adapter fan-out maps.
func (r *Resolver) ResolveFrom(field domain.Field, maps ...domain.FieldMap) domain.Metric {
	var candidates []domain.RawValue
	for _, m := range maps {
		if rv, ok := m[field]; ok {
			candidates = append(candidates, rv)
		}
	}
	return r.Resolve(field, candidates)
}

// ResolveText returns the highest-priority non-empty text fragment
// for a text-valued field (company name, industry).
func (r *Resolver) ResolveText(field domain.Field, maps ...domain.FieldMap) string {
	for _, m := range maps {
		if rv, ok := m[field]; ok && rv.Text != "" {
			return rv.Text
		}
	}
	return ""
}

// plausible is the per-field acceptance filter applied after
// normalization: magnitude bounds, placeholder rejection, sign checks.
func plausible(field domain.Field, v float64) bool {
	switch field {
	case domain.FieldMarketCap:
		return v >= marketCapMin && v <= marketCapMax && v != placeholderMarketCap
	case domain.FieldPrice:
		return v > 0
	case domain.FieldSharesOutstanding:
		return v > 0
	case domain.FieldPE, domain.FieldPB, domain.FieldEVEBITDA:
		return v > 0
	case domain.FieldEPS, domain.FieldBookValuePerShare:
		return v > 0
	case domain.FieldAvgTradingValue:
		return v > 0
	case domain.FieldDebtToEquity, domain.FieldDebtToAsset,
		domain.FieldCurrentRatio, domain.FieldQuickRatio:
		return v >= 0
	default:
		if percentFields[field] {
			return v >= 0 && v <= 1
		}
		return true
	}
}
