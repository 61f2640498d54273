package scan

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/crownwell/vnscreener/internal/domain"
)

// limitedProvider throttles fetches with a token bucket. The scraped
// sites ban aggressive clients, so the limiter sits in front of the
// cache-miss path only: cache hits never spend a token.
type limitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// Limited wraps a provider with a requests-per-second budget.
func Limited(p Provider, rps float64, burst int) Provider {
	return &limitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (l *limitedProvider) Name() domain.Provider {
	return l.inner.Name()
}

func (l *limitedProvider) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Fetch(ctx, sym)
}
