// Package vietstock scrapes company pages on finance.vietstock.vn for
// free float, market cap, foreign ownership and outstanding shares.
package vietstock

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

var (
	freeFloatLabels = []string{
		"Tỷ lệ cổ phiếu lưu hành",
		"Cổ phiếu lưu hành",
		"Tỷ lệ lưu hành",
		"Free float",
	}
	marketCapLabels = []string{
		"Vốn hóa thị trường",
		"Giá trị vốn hóa",
		"Vốn hóa",
		"Market cap",
	}
	foreignLabels = []string{
		"Tỷ lệ sở hữu nước ngoài",
		"Sở hữu nước ngoài",
		"Tỷ lệ nước ngoài",
		"Foreign ownership",
	}
	sharesLabels = []string{
		"Số cổ phiếu lưu hành",
		"Số lượng cổ phiếu",
		"Outstanding shares",
	}
)

// Client scrapes Vietstock company pages.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Vietstock client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://finance.vietstock.vn"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name identifies this adapter to the scan engine.
func (c *Client) Name() domain.Provider {
	return domain.ProviderVietstock
}

// candidateURLs lists the company-page URL patterns Vietstock serves.
func (c *Client) candidateURLs(ticker string) []string {
	lower := strings.ToLower(ticker)
	upper := strings.ToUpper(ticker)
	return []string{
		fmt.Sprintf("%s/doanh-nghiep-a/%s-cong-ty-co-phan.htm", c.baseURL, lower),
		fmt.Sprintf("%s/doanh-nghiep-a/%s-cong-ty-co-phan.htm", c.baseURL, upper),
		fmt.Sprintf("%s/doanh-nghiep-a/%s.htm", c.baseURL, lower),
		fmt.Sprintf("%s/doanh-nghiep-a/%s.htm", c.baseURL, upper),
	}
}

func (c *Client) fetchPage(ctx context.Context, ticker string) (*goquery.Document, error) {
	for _, u := range c.candidateURLs(ticker) {
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
		if strings.Contains(html, "Page or Company not found") {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		return doc, nil
	}

	return nil, fmt.Errorf("no Vietstock page found for %s", ticker)
}

// Fetch scrapes the company page into a field map.
func (c *Client) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	doc, err := c.fetchPage(ctx, sym.Ticker)
	if err != nil {
		return nil, err
	}

	out := domain.FieldMap{}
	now := time.Now()

	put := func(field domain.Field, value float64, text string) {
		out[field] = domain.RawValue{
			Provider:   domain.ProviderVietstock,
			Field:      field,
			Value:      value,
			Text:       text,
			ObservedAt: now,
		}
	}

	if text := scrape.LabelValue(doc, freeFloatLabels); text != "" {
		if v, ok := scrape.ParsePercent(text); ok {
			put(domain.FieldFreeFloat, v, text)
		}
	}

	if text := scrape.LabelValue(doc, marketCapLabels); text != "" {
		if v, ok := scrape.ParseBillions(text); ok {
			put(domain.FieldMarketCap, v, text)
		}
	}

	if text := scrape.LabelValue(doc, foreignLabels); text != "" {
		if v, ok := scrape.ParsePercent(text); ok {
			put(domain.FieldForeignOwnership, v, text)
		}
	}

	if text := scrape.LabelValue(doc, sharesLabels); text != "" {
		if v, ok := scrape.ParseNumber(text); ok && v > 0 {
			put(domain.FieldSharesOutstanding, v, text)
		}
	}

	return out, nil
}
