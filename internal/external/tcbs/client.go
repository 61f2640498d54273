// Package tcbs talks to the TCBS public analysis API, the statement
// and ratio source for the screener. It is the only adapter that
// returns full year-indexed series.
package tcbs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/crownwell/vnscreener/pkg/httputil"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Client handles communication with the TCBS API.
// All TCBS calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TCBS client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://apipubaws.tcbs.com.vn"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// IncomeStatements fetches yearly income statements, oldest first.
func (c *Client) IncomeStatements(ctx context.Context, ticker string) ([]IncomeStatement, error) {
	url := fmt.Sprintf("%s/tcanalysis/v1/finance/%s/incomestatement?yearly=1&isAll=true", c.baseURL, ticker)

	var rows []IncomeStatement
	if err := c.httpClient.GetJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("fetch income statements for %s: %w", ticker, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// BalanceSheets fetches yearly balance sheets, oldest first.
func (c *Client) BalanceSheets(ctx context.Context, ticker string) ([]BalanceSheet, error) {
	url := fmt.Sprintf("%s/tcanalysis/v1/finance/%s/balancesheet?yearly=1&isAll=true", c.baseURL, ticker)

	var rows []BalanceSheet
	if err := c.httpClient.GetJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("fetch balance sheets for %s: %w", ticker, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// CashFlows fetches yearly cash flow statements, oldest first.
func (c *Client) CashFlows(ctx context.Context, ticker string) ([]CashFlow, error) {
	url := fmt.Sprintf("%s/tcanalysis/v1/finance/%s/cashflow?yearly=1&isAll=true", c.baseURL, ticker)

	var rows []CashFlow
	if err := c.httpClient.GetJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("fetch cash flows for %s: %w", ticker, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// FinancialRatios fetches yearly financial ratios, oldest first.
func (c *Client) FinancialRatios(ctx context.Context, ticker string) ([]FinancialRatio, error) {
	url := fmt.Sprintf("%s/tcanalysis/v1/finance/%s/financialratio?yearly=1&isAll=true", c.baseURL, ticker)

	var rows []FinancialRatio
	if err := c.httpClient.GetJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("fetch financial ratios for %s: %w", ticker, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// CompanyOverview fetches the company overview.
func (c *Client) CompanyOverview(ctx context.Context, ticker string) (*Overview, error) {
	url := fmt.Sprintf("%s/tcanalysis/v1/ticker/%s/overview", c.baseURL, ticker)

	var ov Overview
	if err := c.httpClient.GetJSON(ctx, url, &ov); err != nil {
		return nil, fmt.Errorf("fetch overview for %s: %w", ticker, err)
	}

	return &ov, nil
}

// Bars fetches daily price bars for the window [from, to].
func (c *Client) Bars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	url := fmt.Sprintf("%s/stock-insight/v1/stock/bars?ticker=%s&type=stock&resolution=1&from=%d&to=%d",
		c.baseURL, ticker, from.Unix(), to.Unix())

	var resp barsResponse
	if err := c.httpClient.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}

	return resp.Data, nil
}

// LatestClose returns the most recent positive close over the last
// two weeks of bars.
func (c *Client) LatestClose(ctx context.Context, ticker string) (float64, error) {
	now := time.Now()
	bars, err := c.Bars(ctx, ticker, now.AddDate(0, 0, -14), now)
	if err != nil {
		return 0, err
	}

	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close > 0 {
			return bars[i].Close, nil
		}
	}

	return 0, fmt.Errorf("no close price in recent bars for %s", ticker)
}

// AvgTradingValue20D computes the mean daily trading value over the
// last 20 bars, in billions of VND. Needs at least 5 usable bars.
func (c *Client) AvgTradingValue20D(ctx context.Context, ticker string) (float64, error) {
	now := time.Now()
	bars, err := c.Bars(ctx, ticker, now.AddDate(0, 0, -40), now)
	if err != nil {
		return 0, err
	}

	if len(bars) > 20 {
		bars = bars[len(bars)-20:]
	}

	var sum float64
	var n int
	for _, bar := range bars {
		if bar.Close > 0 && bar.Volume > 0 {
			sum += bar.Close * bar.Volume / 1e9
			n++
		}
	}
	if n < 5 {
		return 0, fmt.Errorf("too few usable bars for %s: %d", ticker, n)
	}

	return sum / float64(n), nil
}
