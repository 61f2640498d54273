package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/config"
	"github.com/crownwell/vnscreener/pkg/logger"
)

type fakeProvider struct {
	name   domain.Provider
	fields domain.FieldMap
	err    error
	calls  int
}

func (f *fakeProvider) Name() domain.Provider { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

func TestSoftAbsorbsErrors(t *testing.T) {
	inner := &fakeProvider{name: domain.ProviderCafeF, err: errors.New("connection refused")}
	p := Soft(inner, testLogger())

	fields, err := p.Fetch(context.Background(), domain.NewSymbol("FPT", domain.ExchangeHOSE))
	if err != nil {
		t.Fatalf("Expected soft miss, got error: %v", err)
	}
	if fields == nil || len(fields) != 0 {
		t.Errorf("Expected empty field map, got %v", fields)
	}
}

func TestSoftPassesThroughSuccess(t *testing.T) {
	inner := &fakeProvider{
		name: domain.ProviderTCBS,
		fields: domain.FieldMap{
			domain.FieldPrice: {Provider: domain.ProviderTCBS, Field: domain.FieldPrice, Value: 120000},
		},
	}
	p := Soft(inner, testLogger())

	fields, err := p.Fetch(context.Background(), domain.NewSymbol("FPT", domain.ExchangeHOSE))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fields[domain.FieldPrice].Value != 120000 {
		t.Errorf("Expected fields passed through, got %v", fields)
	}
}

func TestSoftNormalizesNilMap(t *testing.T) {
	inner := &fakeProvider{name: domain.ProviderVNDirect, fields: nil}
	p := Soft(inner, testLogger())

	fields, err := p.Fetch(context.Background(), domain.NewSymbol("VNM", domain.ExchangeHOSE))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fields == nil {
		t.Error("Expected non-nil map for nil adapter result")
	}
}

func TestCachedProviderHitSkipsFetch(t *testing.T) {
	inner := &fakeProvider{
		name: domain.ProviderCafeF,
		fields: domain.FieldMap{
			domain.FieldMarketCap: {Provider: domain.ProviderCafeF, Field: domain.FieldMarketCap, Value: 182500},
		},
	}
	cache := NewCache(map[QueryKind]time.Duration{KindOverview: time.Hour})
	p := Cached(inner, cache, KindOverview)
	sym := domain.NewSymbol("FPT", domain.ExchangeHOSE)

	for i := 0; i < 3; i++ {
		fields, err := p.Fetch(context.Background(), sym)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if fields[domain.FieldMarketCap].Value != 182500 {
			t.Errorf("Expected market cap field, got %v", fields)
		}
	}

	if inner.calls != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", inner.calls)
	}
}

func TestCachedProviderSeparatesTickers(t *testing.T) {
	inner := &fakeProvider{name: domain.ProviderCafeF, fields: domain.FieldMap{}}
	cache := NewCache(map[QueryKind]time.Duration{KindOverview: time.Hour})
	p := Cached(inner, cache, KindOverview)

	p.Fetch(context.Background(), domain.NewSymbol("FPT", domain.ExchangeHOSE))
	p.Fetch(context.Background(), domain.NewSymbol("VNM", domain.ExchangeHOSE))

	if inner.calls != 2 {
		t.Errorf("Expected one fetch per ticker, got %d", inner.calls)
	}
}
