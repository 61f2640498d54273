// Package universe maintains the set of scannable symbols per
// exchange. Board listings come from the VNDirect listing API and are
// cached in Redis; the VN30 basket is a static constituent list.
package universe

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/httputil"
	"github.com/crownwell/vnscreener/pkg/logger"
	"github.com/crownwell/vnscreener/pkg/redis"
)

const defaultListingURL = "https://finfo-api.vndirect.com.vn/v4/stocks"

// vn30 is the index basket. Constituents change twice a year; updates
// land here with the semi-annual review.
var vn30 = []string{
	"ACB", "BCM", "BID", "BVH", "CTG", "FPT", "GAS", "GVR", "HDB", "HPG",
	"MBB", "MSN", "MWG", "PLX", "POW", "SAB", "SSI", "STB", "TCB", "TPB",
	"VCB", "VHM", "VIB", "VIC", "VJC", "VNM", "VPB", "VRE", "VSH", "VTO",
}

// floorToExchange maps the listing API's floor codes to exchanges.
var floorToExchange = map[string]domain.Exchange{
	"HOSE":  domain.ExchangeHOSE,
	"HSX":   domain.ExchangeHOSE,
	"HNX":   domain.ExchangeHNX,
	"UPCOM": domain.ExchangeUPCOM,
}

type listingRow struct {
	Code   string `json:"code"`
	Floor  string `json:"floor"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type listingResponse struct {
	Data []listingRow `json:"data"`
}

// Service resolves exchanges to symbol lists.
type Service struct {
	http       *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	listingURL string

	mu       sync.Mutex
	lastGood map[domain.Exchange][]string
}

// NewService creates a universe service.
func NewService(httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		http:       httpClient,
		cache:      cache,
		logger:     log.WithField("component", "universe"),
		listingURL: defaultListingURL,
		lastGood:   make(map[domain.Exchange][]string),
	}
}

// WithListingURL overrides the listing endpoint. Test hook.
func (s *Service) WithListingURL(u string) *Service {
	s.listingURL = u
	return s
}

// Symbols returns the tickers listed on an exchange, serving from the
// Redis cache when fresh. The VN30 basket never touches the network.
// A failed listing fetch falls back to the last successfully fetched
// universe; only a failure with nothing to fall back on is an error.
func (s *Service) Symbols(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error) {
	if exchange == domain.ExchangeVN30 {
		return symbolize(vn30, exchange), nil
	}

	var tickers []string
	found, err := s.cache.Get(ctx, redis.UniverseKey(exchange.String()), &tickers)
	if err != nil {
		s.logger.WithError(err).Warn("Universe cache read failed")
	}
	if found && len(tickers) > 0 {
		return symbolize(tickers, exchange), nil
	}

	symbols, err := s.Refresh(ctx, exchange)
	if err == nil {
		return symbols, nil
	}

	if stale, ok := s.lastKnown(ctx, exchange); ok {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"exchange": exchange.String(),
			"symbols":  len(stale),
		}).Warn("Listing fetch failed, serving last known universe")
		return symbolize(stale, exchange), nil
	}

	return nil, err
}

// Refresh fetches the listing upstream, bypassing and repopulating
// the cache. An empty listing is an error: scanning zero symbols
// silently would look like success.
func (s *Service) Refresh(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error) {
	if exchange == domain.ExchangeVN30 {
		return symbolize(vn30, exchange), nil
	}

	tickers, err := s.fetchListing(ctx, exchange)
	if err != nil {
		return nil, fmt.Errorf("universe refresh for %s: %w", exchange, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe refresh for %s: empty listing", exchange)
	}

	if err := s.cache.Set(ctx, redis.UniverseKey(exchange.String()), tickers, redis.TTLLong); err != nil {
		s.logger.WithError(err).Warn("Universe cache write failed")
	}
	s.rememberGood(ctx, exchange, tickers)

	s.logger.WithFields(map[string]interface{}{
		"exchange": exchange.String(),
		"symbols":  len(tickers),
	}).Info("Universe refreshed")

	return symbolize(tickers, exchange), nil
}

// rememberGood records the listing as the stale fallback, both in
// process and under a no-expiry Redis key so it survives restarts.
func (s *Service) rememberGood(ctx context.Context, exchange domain.Exchange, tickers []string) {
	s.mu.Lock()
	s.lastGood[exchange] = tickers
	s.mu.Unlock()

	if err := s.cache.Set(ctx, redis.UniverseStaleKey(exchange.String()), tickers, 0); err != nil {
		s.logger.WithError(err).Warn("Universe fallback write failed")
	}
}

// lastKnown returns the most recent successfully fetched listing, if
// one survives in process or in Redis.
func (s *Service) lastKnown(ctx context.Context, exchange domain.Exchange) ([]string, bool) {
	s.mu.Lock()
	tickers := s.lastGood[exchange]
	s.mu.Unlock()
	if len(tickers) > 0 {
		return tickers, true
	}

	var stale []string
	if found, err := s.cache.Get(ctx, redis.UniverseStaleKey(exchange.String()), &stale); err == nil && found && len(stale) > 0 {
		return stale, true
	}
	return nil, false
}

func (s *Service) fetchListing(ctx context.Context, exchange domain.Exchange) ([]string, error) {
	params := url.Values{}
	params.Set("q", "type:STOCK~status:LISTED")
	params.Set("fields", "code,floor,type,status")
	params.Set("size", "3000")

	var resp listingResponse
	if err := s.http.GetJSON(ctx, s.listingURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	var tickers []string
	for _, row := range resp.Data {
		if floorToExchange[strings.ToUpper(row.Floor)] != exchange {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		// Warrants and bonds share the listing feed; plain equities
		// have three-letter codes.
		if len(code) != 3 {
			continue
		}
		tickers = append(tickers, code)
	}

	sort.Strings(tickers)
	return tickers, nil
}

func symbolize(tickers []string, exchange domain.Exchange) []domain.Symbol {
	symbols := make([]domain.Symbol, 0, len(tickers))
	for _, t := range tickers {
		symbols = append(symbols, domain.NewSymbol(t, exchange))
	}
	return symbols
}
