package vndirect

import (
	"context"
	"time"

	"github.com/crownwell/vnscreener/internal/domain"
)

// Name identifies this adapter to the scan engine.
func (c *Client) Name() domain.Provider {
	return domain.ProviderVNDirect
}

// Fetch returns the latest price. VNDirect is the preferred price
// source; other fields come from elsewhere.
func (c *Client) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	price, err := c.PriceWithFallback(ctx, sym.Ticker)
	if err != nil {
		return nil, err
	}

	return domain.FieldMap{
		domain.FieldPrice: {
			Provider:   domain.ProviderVNDirect,
			Field:      domain.FieldPrice,
			Value:      price,
			ObservedAt: time.Now(),
		},
	}, nil
}
