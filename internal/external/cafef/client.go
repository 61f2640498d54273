// Package cafef scrapes company pages on s.cafef.vn for market cap,
// average trading value and management ownership.
package cafef

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/internal/external/scrape"
	"github.com/crownwell/vnscreener/pkg/httputil"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Label variants seen on CafeF company pages. Ordered most specific
// first so the unit-bearing variant wins when present.
var (
	marketCapLabels = []string{
		"Vốn hóa thị trường (tỷ đồng)",
		"Vốn hóa thị trường",
		"Vốn hóa",
		"Market cap",
	}
	tradingValueLabels = []string{
		"Khối lượng giao dịch TB",
		"Khối lượng TB",
		"KLGD TB",
		"Giao dịch TB",
		"Trading volume",
	}
	ownershipLabels = []string{
		"Tỷ lệ sở hữu ban lãnh đạo",
		"Tỷ lệ sở hữu",
		"Sở hữu",
		"Management ownership",
	}
)

// Client scrapes CafeF company pages.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new CafeF client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://s.cafef.vn"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name identifies this adapter to the scan engine.
func (c *Client) Name() domain.Provider {
	return domain.ProviderCafeF
}

// candidateURLs lists page URLs to probe. The listing board and the
// ticker casing both vary, so the symbol's own exchange is tried
// first, then the other boards.
func (c *Client) candidateURLs(sym domain.Symbol) []string {
	boards := []string{"hose", "hnx", "upcom"}
	if sym.Exchange == domain.ExchangeHNX || sym.Exchange == domain.ExchangeUPCOM {
		boards = []string{string(sym.Exchange), "hose", "hnx", "upcom"}
	}

	var urls []string
	seen := map[string]bool{}
	for _, board := range boards {
		for _, ticker := range []string{strings.ToLower(sym.Ticker), sym.Ticker} {
			u := fmt.Sprintf("%s/%s/%s-ctcp.chn", c.baseURL, board, ticker)
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// fetchPage probes candidate URLs until one responds with a page that
// mentions the ticker.
func (c *Client) fetchPage(ctx context.Context, sym domain.Symbol) (*goquery.Document, error) {
	for _, u := range c.candidateURLs(sym) {
		resp, err := c.httpClient.Get(ctx, u)
		if err != nil {
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		html := string(body)
		if !strings.Contains(html, sym.Ticker) {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		return doc, nil
	}

	return nil, fmt.Errorf("no CafeF page found for %s", sym.Ticker)
}

// Fetch scrapes the company page into a field map.
func (c *Client) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	doc, err := c.fetchPage(ctx, sym)
	if err != nil {
		return nil, err
	}

	out := domain.FieldMap{}
	now := time.Now()

	put := func(field domain.Field, value float64, text string) {
		out[field] = domain.RawValue{
			Provider:   domain.ProviderCafeF,
			Field:      field,
			Value:      value,
			Text:       text,
			ObservedAt: now,
		}
	}

	if text := scrape.LabelValue(doc, marketCapLabels); text != "" {
		if v, ok := scrape.ParseBillions(text); ok {
			put(domain.FieldMarketCap, v, text)
		}
	}

	if text := scrape.LabelValue(doc, tradingValueLabels); text != "" {
		if v, ok := scrape.ParseBillions(text); ok {
			put(domain.FieldAvgTradingValue, v, text)
		}
	}

	if text := scrape.LabelValue(doc, ownershipLabels); text != "" {
		if v, ok := scrape.ParsePercent(text); ok {
			put(domain.FieldManagementOwnership, v, text)
		}
	}

	return out, nil
}
