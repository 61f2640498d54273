package scan

import (
	"context"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Provider is one upstream adapter. Fetch returns the snapshot fields
// the provider can produce for a symbol; callers must not assume full
// field coverage.
type Provider interface {
	Name() domain.Provider
	Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error)
}

// softProvider absorbs adapter failures at the provider boundary.
// Network, parse and timeout errors all degrade to an empty map with
// a warn log; nothing escapes to the symbol pipeline.
type softProvider struct {
	inner  Provider
	logger *logger.Logger
}

// Soft wraps a provider so failures become soft misses.
func Soft(p Provider, log *logger.Logger) Provider {
	return &softProvider{
		inner:  p,
		logger: log.WithField("provider", string(p.Name())),
	}
}

func (s *softProvider) Name() domain.Provider {
	return s.inner.Name()
}

func (s *softProvider) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	fields, err := s.inner.Fetch(ctx, sym)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", sym.Ticker).Warn("Provider fetch failed, treating as soft miss")
		return domain.FieldMap{}, nil
	}
	if fields == nil {
		fields = domain.FieldMap{}
	}
	return fields, nil
}

// cachedProvider serves Fetch through the freshness cache.
type cachedProvider struct {
	inner Provider
	cache *Cache
	kind  QueryKind
}

// Cached wraps a provider with the freshness cache under the given
// query kind.
func Cached(p Provider, cache *Cache, kind QueryKind) Provider {
	return &cachedProvider{inner: p, cache: cache, kind: kind}
}

func (c *cachedProvider) Name() domain.Provider {
	return c.inner.Name()
}

func (c *cachedProvider) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	return GetOrFetch(ctx, c.cache, string(c.inner.Name()), sym.Ticker, c.kind,
		func(ctx context.Context) (domain.FieldMap, error) {
			return c.inner.Fetch(ctx, sym)
		})
}
