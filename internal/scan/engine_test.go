package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/internal/external/tcbs"
)

var errTest = errors.New("provider unavailable")

type fakeStatements struct {
	income  []tcbs.IncomeStatement
	balance []tcbs.BalanceSheet
	cash    []tcbs.CashFlow
	calls   int
}

func (f *fakeStatements) IncomeStatements(ctx context.Context, ticker string) ([]tcbs.IncomeStatement, error) {
	f.calls++
	return f.income, nil
}

func (f *fakeStatements) BalanceSheets(ctx context.Context, ticker string) ([]tcbs.BalanceSheet, error) {
	return f.balance, nil
}

func (f *fakeStatements) CashFlows(ctx context.Context, ticker string) ([]tcbs.CashFlow, error) {
	return f.cash, nil
}

func fieldMapProvider(name domain.Provider, fields map[domain.Field]float64) *fakeProvider {
	fm := domain.FieldMap{}
	for f, v := range fields {
		fm[f] = domain.RawValue{Provider: name, Field: f, Value: v}
	}
	return &fakeProvider{name: name, fields: fm}
}

func testEngine(providers []Provider, st StatementSource) *Engine {
	cache := NewCache(map[QueryKind]time.Duration{
		KindStatement:       time.Hour,
		KindStatementSeries: time.Hour,
	})
	return NewEngine(providers, st, cache, 2, 0, testLogger())
}

func TestScanBuildsRecordPerSymbol(t *testing.T) {
	tcbsP := fieldMapProvider(domain.ProviderTCBS, map[domain.Field]float64{
		domain.FieldPE:  14,
		domain.FieldROE: 21.5,
		domain.FieldEPS: 4870,
	})
	vnd := fieldMapProvider(domain.ProviderVNDirect, map[domain.Field]float64{
		domain.FieldPrice: 120_000,
	})
	cafef := fieldMapProvider(domain.ProviderCafeF, map[domain.Field]float64{
		domain.FieldMarketCap: 182_500,
	})

	st := &fakeStatements{
		income: []tcbs.IncomeStatement{
			{Year: 2022, Revenue: 100, PostTaxProfit: 10},
			{Year: 2023, Revenue: 110, PostTaxProfit: 12},
			{Year: 2024, Revenue: 121, PostTaxProfit: 15},
			{Year: 2025, Revenue: 133.1, PostTaxProfit: 18},
		},
		balance: []tcbs.BalanceSheet{
			{Year: 2024, Equity: 95, Asset: 180},
			{Year: 2025, Equity: 105, Asset: 220},
		},
		cash: []tcbs.CashFlow{
			{Year: 2025, FromSale: 20, InvestCost: -5},
		},
	}

	engine := testEngine([]Provider{tcbsP, vnd, cafef}, st)

	records := engine.Scan(context.Background(), []domain.Symbol{
		domain.NewSymbol("FPT", domain.ExchangeHOSE),
		domain.NewSymbol("VNM", domain.ExchangeHOSE),
	})

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Ticker != "FPT" || records[1].Ticker != "VNM" {
		t.Fatalf("Expected ticker-ordered records, got %s, %s", records[0].Ticker, records[1].Ticker)
	}

	rec := records[0]
	if rec.PriceVND.Value() != 120_000 {
		t.Errorf("Expected price 120000, got %f", rec.PriceVND.Value())
	}
	if rec.PE.Value() != 14 {
		t.Errorf("Expected P/E 14, got %f", rec.PE.Value())
	}
	if math.Abs(rec.ROE.Value()-0.215) > 1e-9 {
		t.Errorf("Expected ROE normalized to 0.215, got %f", rec.ROE.Value())
	}
	if math.Abs(rec.RevenueCAGR3Y.Value()-0.10) > 1e-6 {
		t.Errorf("Expected revenue CAGR 0.10, got %f", rec.RevenueCAGR3Y.Value())
	}
	if rec.MarketVal.Value() != 182_500 || rec.MarketValSource != domain.MarketValSourceScraped {
		t.Errorf("Expected scraped market value, got %f (%s)", rec.MarketVal.Value(), rec.MarketValSource)
	}
	if rec.FreeCashFlow.Value() != 15 {
		t.Errorf("Expected FCF 15, got %f", rec.FreeCashFlow.Value())
	}
	if !rec.PEG.Defined() {
		t.Error("Expected defined PEG from P/E and profit growth")
	}
	if !rec.EstVal.Defined() {
		t.Error("Expected defined intrinsic value estimate")
	}
	if rec.IsBank {
		t.Error("FPT must not classify as a bank")
	}
}

func TestScanFailedProviderDegrades(t *testing.T) {
	vnd := fieldMapProvider(domain.ProviderVNDirect, map[domain.Field]float64{
		domain.FieldPrice: 50_000,
	})
	broken := &fakeProvider{name: domain.ProviderCafeF, err: errTest}

	engine := testEngine([]Provider{vnd, broken}, &fakeStatements{})

	records := engine.Scan(context.Background(), []domain.Symbol{
		domain.NewSymbol("HPG", domain.ExchangeHOSE),
	})

	if len(records) != 1 {
		t.Fatalf("Expected 1 record despite provider failure, got %d", len(records))
	}
	if records[0].PriceVND.Value() != 50_000 {
		t.Errorf("Expected surviving provider's price, got %f", records[0].PriceVND.Value())
	}
	if records[0].MarketVal.Defined() {
		t.Error("Expected undefined market value with no usable source")
	}
}

func TestScanBankGetsAssetQualityFields(t *testing.T) {
	tcbsP := fieldMapProvider(domain.ProviderTCBS, map[domain.Field]float64{
		domain.FieldNPLRatio: 0.98,
		domain.FieldLLR:      220,
	})

	engine := testEngine([]Provider{tcbsP}, &fakeStatements{})

	records := engine.Scan(context.Background(), []domain.Symbol{
		domain.NewSymbol("VCB", domain.ExchangeHOSE),
		domain.NewSymbol("HPG", domain.ExchangeHOSE),
	})

	var vcb, hpg *domain.ResolvedRecord
	for _, r := range records {
		switch r.Ticker {
		case "VCB":
			vcb = r
		case "HPG":
			hpg = r
		}
	}

	if vcb == nil || !vcb.IsBank {
		t.Fatal("Expected VCB classified as a bank")
	}
	if !vcb.NPLRatio.Defined() {
		t.Error("Expected NPL ratio on a bank record")
	}
	if hpg.NPLRatio.Defined() || hpg.LLR.Defined() {
		t.Error("Asset-quality fields must stay undefined for non-banks")
	}
}

func TestScanReusesFreshTCBSData(t *testing.T) {
	snapshot := fieldMapProvider(domain.ProviderTCBS, map[domain.Field]float64{
		domain.FieldPE: 14,
	})
	st := &fakeStatements{
		income: []tcbs.IncomeStatement{{Year: 2025, Revenue: 100, PostTaxProfit: 10}},
	}

	cache := NewCache(map[QueryKind]time.Duration{
		KindStatement:       time.Hour,
		KindStatementSeries: time.Hour,
	})
	engine := NewEngine([]Provider{Cached(snapshot, cache, KindStatement)}, st, cache, 1, 0, testLogger())

	symbols := []domain.Symbol{domain.NewSymbol("FPT", domain.ExchangeHOSE)}
	engine.Scan(context.Background(), symbols)
	engine.Scan(context.Background(), symbols)

	// The snapshot fields and the statement series share the cache but
	// not a key; within TTL neither goes upstream twice.
	if snapshot.calls != 1 {
		t.Errorf("Expected 1 snapshot fetch across scans, got %d", snapshot.calls)
	}
	if st.calls != 1 {
		t.Errorf("Expected 1 statement fetch across scans, got %d", st.calls)
	}
}

func TestScanCancelKeepsCompletedRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	slow := &blockingProvider{
		name:    domain.ProviderTCBS,
		release: make(chan struct{}),
	}
	engine := NewEngine([]Provider{slow}, nil, NewCache(nil), 1, 0, testLogger())

	var symbols []domain.Symbol
	for i := 0; i < 50; i++ {
		symbols = append(symbols, domain.NewSymbol(fmt.Sprintf("S%02d", i), domain.ExchangeHNX))
	}

	done := make(chan []*domain.ResolvedRecord)
	go func() { done <- engine.Scan(ctx, symbols) }()

	// Let the first symbol through, then cancel before the rest feed.
	slow.release <- struct{}{}
	cancel()
	close(slow.release)

	records := <-done
	if len(records) == 0 {
		t.Fatal("Expected completed records to survive cancellation")
	}
	if len(records) == len(symbols) {
		t.Error("Expected cancellation to stop feeding symbols")
	}
}

type blockingProvider struct {
	name    domain.Provider
	release chan struct{}
}

func (b *blockingProvider) Name() domain.Provider { return b.name }

func (b *blockingProvider) Fetch(ctx context.Context, sym domain.Symbol) (domain.FieldMap, error) {
	<-b.release
	return domain.FieldMap{}, nil
}
