package tcbs

import (
	"context"
	"time"

	"github.com/crownwell/vnscreener/internal/domain"
)

// Name identifies this adapter to the scan engine.
func (c *Client) Name() domain.Provider {
	return domain.ProviderTCBS
}

// Fetch returns the latest-period snapshot fields TCBS can produce:
// ratio-sheet figures, company identity, outstanding shares, latest
// close and 20-day average trading value. Year-indexed series are
// served separately through the statement methods.
func (c *Client) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	out := domain.FieldMap{}
	now := time.Now()

	put := func(field domain.Field, value float64, text string) {
		out[field] = domain.RawValue{
			Provider:   domain.ProviderTCBS,
			Field:      field,
			Value:      value,
			Text:       text,
			ObservedAt: now,
		}
	}

	ratios, err := c.FinancialRatios(ctx, sym.Ticker)
	if err != nil {
		return nil, err
	}

	if len(ratios) > 0 {
		latest := ratios[len(ratios)-1]

		putNonZero := func(field domain.Field, v float64) {
			if v != 0 {
				put(field, v, "")
			}
		}

		putNonZero(domain.FieldPE, latest.PriceToEarning)
		putNonZero(domain.FieldPB, latest.PriceToBook)
		putNonZero(domain.FieldEVEBITDA, latest.ValueBeforeEBITDA)
		putNonZero(domain.FieldROE, latest.ROE)
		putNonZero(domain.FieldROA, latest.ROA)
		putNonZero(domain.FieldEPS, latest.EarningPerShare)
		putNonZero(domain.FieldBookValuePerShare, latest.BookValuePerShare)
		putNonZero(domain.FieldGrossMargin, latest.GrossProfitMargin)
		putNonZero(domain.FieldOperatingMargin, latest.OperatingProfitMargin)
		putNonZero(domain.FieldDividendYield, latest.Dividend)
		putNonZero(domain.FieldDebtToEquity, latest.DebtOnEquity)
		putNonZero(domain.FieldDebtToAsset, latest.DebtOnAsset)
		putNonZero(domain.FieldCurrentRatio, latest.CurrentPayment)
		putNonZero(domain.FieldQuickRatio, latest.QuickPayment)
		putNonZero(domain.FieldNPLRatio, latest.BadDebtPercentage)
		putNonZero(domain.FieldLLR, latest.ProvisionOnBadDebt)
	}

	// Company identity and outstanding shares; a miss here must not
	// discard the ratio fields already gathered.
	if ov, err := c.CompanyOverview(ctx, sym.Ticker); err == nil {
		if ov.ShortName != "" {
			put(domain.FieldCompanyName, 0, ov.ShortName)
		}
		if ov.Industry != "" {
			put(domain.FieldIndustry, 0, ov.Industry)
		}
		if ov.OutstandingShare > 0 {
			// Overview reports millions of shares
			put(domain.FieldSharesOutstanding, ov.OutstandingShare*1e6, "")
		}
	} else {
		c.logger.WithError(err).WithField("ticker", sym.Ticker).Debug("TCBS overview unavailable")
	}

	if price, err := c.LatestClose(ctx, sym.Ticker); err == nil {
		put(domain.FieldPrice, price, "")
	} else {
		c.logger.WithError(err).WithField("ticker", sym.Ticker).Debug("TCBS latest close unavailable")
	}

	if atv, err := c.AvgTradingValue20D(ctx, sym.Ticker); err == nil {
		put(domain.FieldAvgTradingValue, atv, "")
	} else {
		c.logger.WithError(err).WithField("ticker", sym.Ticker).Debug("TCBS trading value unavailable")
	}

	return out, nil
}
