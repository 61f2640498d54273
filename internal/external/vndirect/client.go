// Package vndirect fetches latest prices from the VNDirect finfo API,
// with the price-board snapshot endpoint as a batch fallback.
package vndirect

import (
	"context"
	"fmt"
	"net/url"

	"github.com/crownwell/vnscreener/pkg/httputil"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Client handles communication with the VNDirect APIs.
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	snapshotURL string
}

// NewClient creates a new VNDirect client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://finfo-api.vndirect.com.vn"
	}
	return &Client{
		httpClient:  httpClient,
		logger:      log,
		baseURL:     baseURL,
		snapshotURL: "https://prices.vndirect.com.vn/priceservice/snapshot",
	}
}

// WithSnapshotURL overrides the snapshot endpoint, used in tests.
func (c *Client) WithSnapshotURL(u string) *Client {
	c.snapshotURL = u
	return c
}

type stockPrice struct {
	Code       string   `json:"code"`
	Date       string   `json:"date"`
	Close      *float64 `json:"close"`
	AdClose    *float64 `json:"adClose"`
	MatchPrice *float64 `json:"matchPrice"`
	Last       *float64 `json:"last"`
}

type stockPricesResponse struct {
	Data []stockPrice `json:"data"`
}

// LatestPrice fetches the newest daily price row for ticker and picks
// the first available of close, adClose, matchPrice, last.
func (c *Client) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("code:%s", ticker))
	q.Set("sort", "date:desc")
	q.Set("size", "1")
	reqURL := fmt.Sprintf("%s/v4/stock_prices/?%s", c.baseURL, q.Encode())

	var resp stockPricesResponse
	if err := c.httpClient.GetJSON(ctx, reqURL, &resp); err != nil {
		return 0, fmt.Errorf("fetch stock price for %s: %w", ticker, err)
	}

	if len(resp.Data) == 0 {
		return 0, fmt.Errorf("no price rows for %s", ticker)
	}

	item := resp.Data[0]
	for _, p := range []*float64{item.Close, item.AdClose, item.MatchPrice, item.Last} {
		if p != nil && *p > 0 {
			return *p, nil
		}
	}

	return 0, fmt.Errorf("price row for %s carries no usable price", ticker)
}

type snapshotEntry struct {
	Symbol       string   `json:"symbol"`
	Code         string   `json:"code"`
	LastPrice    *float64 `json:"lastPrice"`
	MatchedPrice *float64 `json:"matchedPrice"`
	Last         *float64 `json:"last"`
}

// SnapshotPrices fetches prices for many tickers in one call. Tickers
// without a usable price are absent from the result.
func (c *Client) SnapshotPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	if len(tickers) == 0 {
		return map[string]float64{}, nil
	}

	joined := tickers[0]
	for _, t := range tickers[1:] {
		joined += "," + t
	}
	reqURL := fmt.Sprintf("%s?symbols=%s", c.snapshotURL, joined)

	var entries []snapshotEntry
	if err := c.httpClient.GetJSON(ctx, reqURL, &entries); err != nil {
		return nil, fmt.Errorf("fetch snapshot prices: %w", err)
	}

	prices := make(map[string]float64, len(entries))
	for _, e := range entries {
		sym := e.Symbol
		if sym == "" {
			sym = e.Code
		}
		if sym == "" {
			continue
		}
		for _, p := range []*float64{e.LastPrice, e.MatchedPrice, e.Last} {
			if p != nil && *p > 0 {
				prices[sym] = *p
				break
			}
		}
	}

	return prices, nil
}

// PriceWithFallback tries the finfo endpoint first, then the snapshot
// batch endpoint for a single ticker.
func (c *Client) PriceWithFallback(ctx context.Context, ticker string) (float64, error) {
	price, err := c.LatestPrice(ctx, ticker)
	if err == nil {
		return price, nil
	}
	c.logger.WithError(err).WithField("ticker", ticker).Debug("finfo price miss, trying snapshot")

	prices, err := c.SnapshotPrices(ctx, []string{ticker})
	if err != nil {
		return 0, err
	}
	if p, ok := prices[ticker]; ok {
		return p, nil
	}

	return 0, fmt.Errorf("no price for %s from any endpoint", ticker)
}
