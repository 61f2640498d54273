package metrics

import "github.com/crownwell/vnscreener/internal/domain"

// revenueMultiple prices a company at a fixed multiple of annual
// revenue when nothing better is available. Deliberately conservative
// and deterministic so repeated scans agree.
const revenueMultiple = 3.5

// SharesOutstanding derives a share count when no provider reported
// one. The chain walks from most to least reliable: balance-sheet
// equity over book value per share, then revenue over earnings per
// share. Statement figures are in billions of VND, per-share figures
// in whole VND.
func SharesOutstanding(scraped, equity, bvps, revenue, eps domain.Metric) domain.Metric {
	if scraped.Defined() && scraped.Value() > 0 {
		return scraped
	}

	if equity.Defined() && bvps.Defined() && equity.Value() > 0 && bvps.Value() > 0 {
		return domain.DefinedMetric(equity.Value() * 1e9 / bvps.Value())
	}

	if revenue.Defined() && revenue.Value() > 0 && eps.Defined() {
		divisor := eps.Value()
		if divisor < 1 {
			divisor = 1
		}
		return domain.DefinedMetric(revenue.Value() * 1e9 / divisor)
	}

	return domain.UndefinedMetric()
}

// MarketValue derives market capitalization in billions of VND,
// reporting which rung of the chain produced it. The revenue-multiple
// rung exists so screening never silently drops a symbol; its source
// tag lets consumers discount it.
func MarketValue(scraped, price, shares, revenue domain.Metric) (domain.Metric, string) {
	if scraped.Defined() && scraped.Value() > 0 {
		return scraped, domain.MarketValSourceScraped
	}

	if price.Defined() && shares.Defined() && price.Value() > 0 && shares.Value() > 0 {
		return domain.DefinedMetric(price.Value() * shares.Value() / 1e9), domain.MarketValSourcePriceShares
	}

	if revenue.Defined() && revenue.Value() > 0 {
		return domain.DefinedMetric(revenue.Value() * revenueMultiple), domain.MarketValSourceLowConfidence
	}

	return domain.UndefinedMetric(), ""
}
