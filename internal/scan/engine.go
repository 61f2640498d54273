// Package scan runs the multi-source scan pipeline: a worker pool
// fans symbols out to the provider adapters, reconciles their answers
// into one record per symbol, and derives the metrics no provider
// reports directly.
package scan

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/crownwell/vnscreener/internal/banks"
	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/internal/external/tcbs"
	"github.com/crownwell/vnscreener/internal/metrics"
	"github.com/crownwell/vnscreener/internal/resolve"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// StatementSource provides year-indexed statement series. Satisfied
// by the TCBS client.
type StatementSource interface {
	IncomeStatements(ctx context.Context, ticker string) ([]tcbs.IncomeStatement, error)
	BalanceSheets(ctx context.Context, ticker string) ([]tcbs.BalanceSheet, error)
	CashFlows(ctx context.Context, ticker string) ([]tcbs.CashFlow, error)
}

// statementSet bundles one ticker's series so the freshness cache
// holds them as a unit.
type statementSet struct {
	Income  []tcbs.IncomeStatement
	Balance []tcbs.BalanceSheet
	Cash    []tcbs.CashFlow
}

// Engine drives scans. Providers are expected to arrive wrapped
// (soft, cached, rate limited) by the caller; the engine itself never
// fails a symbol on provider errors.
type Engine struct {
	providers  []Provider
	statements StatementSource
	cache      *Cache
	resolver   *resolve.Resolver
	logger     *logger.Logger
	workers    int
	delay      time.Duration
	now        func() time.Time
}

// NewEngine creates a scan engine.
func NewEngine(providers []Provider, statements StatementSource, cache *Cache, workers int, delay time.Duration, log *logger.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		providers:  providers,
		statements: statements,
		cache:      cache,
		resolver:   resolve.NewResolver(),
		logger:     log.WithField("component", "scan"),
		workers:    workers,
		delay:      delay,
		now:        time.Now,
	}
}

// Scan processes the symbols through the worker pool and returns one
// record per completed symbol, ordered by ticker. Cancelling the
// context stops feeding new symbols; records already built are kept
// and returned.
func (e *Engine) Scan(ctx context.Context, symbols []domain.Symbol) []*domain.ResolvedRecord {
	start := e.now()

	symbolCh := make(chan domain.Symbol)
	resultCh := make(chan *domain.ResolvedRecord)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range symbolCh {
				resultCh <- e.buildRecord(ctx, sym)

				if e.delay > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(e.delay):
					}
				}
			}
		}()
	}

	go func() {
		defer close(symbolCh)
		for _, sym := range symbols {
			select {
			case <-ctx.Done():
				return
			case symbolCh <- sym:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var records []*domain.ResolvedRecord
	for rec := range resultCh {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })

	e.logger.WithFields(map[string]interface{}{
		"symbols":  len(symbols),
		"records":  len(records),
		"duration": e.now().Sub(start).String(),
	}).Info("Scan completed")

	return records
}

// fetchAll fans the symbol out to every provider concurrently and
// collects their field maps. Providers are soft-wrapped, so a failed
// source contributes an empty map rather than an error.
func (e *Engine) fetchAll(ctx context.Context, sym domain.Symbol) []domain.FieldMap {
	maps := make([]domain.FieldMap, len(e.providers))

	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			fields, err := p.Fetch(ctx, sym)
			if err != nil {
				e.logger.WithError(err).WithFields(map[string]interface{}{
					"provider": string(p.Name()),
					"ticker":   sym.Ticker,
				}).Warn("Provider fetch failed")
				fields = domain.FieldMap{}
			}
			maps[i] = fields
		}(i, p)
	}
	wg.Wait()

	return maps
}

// fetchStatements loads the ticker's statement series through the
// freshness cache. The series cache under their own kind so they
// never collide with the TCBS snapshot provider's entry. Individual
// series failures degrade to empty slices; only a total miss is an
// error, which keeps the result out of the cache so the next scan
// retries.
func (e *Engine) fetchStatements(ctx context.Context, ticker string) statementSet {
	if e.statements == nil {
		return statementSet{}
	}

	set, err := GetOrFetch(ctx, e.cache, string(domain.ProviderTCBS), ticker, KindStatementSeries,
		func(ctx context.Context) (statementSet, error) {
			var set statementSet
			var failures int

			var err error
			if set.Income, err = e.statements.IncomeStatements(ctx, ticker); err != nil {
				e.logger.WithError(err).WithField("ticker", ticker).Warn("Income statement fetch failed")
				failures++
			}
			if set.Balance, err = e.statements.BalanceSheets(ctx, ticker); err != nil {
				e.logger.WithError(err).WithField("ticker", ticker).Warn("Balance sheet fetch failed")
				failures++
			}
			if set.Cash, err = e.statements.CashFlows(ctx, ticker); err != nil {
				e.logger.WithError(err).WithField("ticker", ticker).Warn("Cash flow fetch failed")
				failures++
			}

			if failures == 3 {
				return set, errors.New("all statement series unavailable")
			}
			return set, nil
		})
	if err != nil {
		return statementSet{}
	}
	return set
}

// buildRecord assembles one symbol's snapshot: provider fan-out,
// field resolution, then derived metrics.
func (e *Engine) buildRecord(ctx context.Context, sym domain.Symbol) *domain.ResolvedRecord {
	maps := e.fetchAll(ctx, sym)
	st := e.fetchStatements(ctx, sym.Ticker)

	r := e.resolver
	rec := &domain.ResolvedRecord{
		Ticker:    sym.Ticker,
		Exchange:  sym.Exchange,
		ScannedAt: e.now(),
	}

	rec.CompanyName = r.ResolveText(domain.FieldCompanyName, maps...)
	industry := r.ResolveText(domain.FieldIndustry, maps...)
	rec.IsBank = banks.IsBank(sym.Ticker, industry)

	rec.PriceVND = r.ResolveFrom(domain.FieldPrice, maps...)
	rec.PE = r.ResolveFrom(domain.FieldPE, maps...)
	rec.PB = r.ResolveFrom(domain.FieldPB, maps...)
	rec.EVEBITDA = r.ResolveFrom(domain.FieldEVEBITDA, maps...)
	rec.EPS = r.ResolveFrom(domain.FieldEPS, maps...)
	rec.BookValue = r.ResolveFrom(domain.FieldBookValuePerShare, maps...)
	rec.ROE = r.ResolveFrom(domain.FieldROE, maps...)
	rec.ROA = r.ResolveFrom(domain.FieldROA, maps...)
	rec.GrossMargin = r.ResolveFrom(domain.FieldGrossMargin, maps...)
	rec.OperatingMargin = r.ResolveFrom(domain.FieldOperatingMargin, maps...)
	rec.DebtToEquity = r.ResolveFrom(domain.FieldDebtToEquity, maps...)
	rec.DebtToAsset = r.ResolveFrom(domain.FieldDebtToAsset, maps...)
	rec.CurrentRatio = r.ResolveFrom(domain.FieldCurrentRatio, maps...)
	rec.QuickRatio = r.ResolveFrom(domain.FieldQuickRatio, maps...)
	rec.DividendYield = r.ResolveFrom(domain.FieldDividendYield, maps...)
	rec.FreeFloat = r.ResolveFrom(domain.FieldFreeFloat, maps...)
	rec.ForeignOwnership = r.ResolveFrom(domain.FieldForeignOwnership, maps...)
	rec.ManagementOwnership = r.ResolveFrom(domain.FieldManagementOwnership, maps...)
	rec.AvgTradingValue = r.ResolveFrom(domain.FieldAvgTradingValue, maps...)

	// Growth from statement series.
	var revenues, profits, equities, assets []float64
	for _, row := range st.Income {
		revenues = append(revenues, row.Revenue)
		profits = append(profits, row.PostTaxProfit)
	}
	for _, row := range st.Balance {
		equities = append(equities, row.Equity)
		assets = append(assets, row.Asset)
	}
	rec.RevenueCAGR3Y = metrics.CAGR(revenues, 3)
	rec.ProfitCAGR3Y = metrics.CAGR(profits, 3)

	// Profitability falls back to statement-derived figures when the
	// ratio feed has none.
	if !rec.ROE.Defined() {
		rec.ROE = metrics.ReturnOnAverage(profits, equities)
	}
	if !rec.ROA.Defined() {
		rec.ROA = metrics.ReturnOnAverage(profits, assets)
	}

	var capex domain.Metric
	if n := len(st.Cash); n > 0 {
		last := st.Cash[n-1]
		rec.OperatingCashFlow = domain.DefinedMetric(last.FromSale)
		capex = domain.DefinedMetric(math.Abs(last.InvestCost))
		rec.FreeCashFlow = domain.DefinedMetric(last.FromSale - math.Abs(last.InvestCost))
	}

	var latestRevenue, latestProfit, latestEquity domain.Metric
	if len(revenues) > 0 {
		latestRevenue = domain.DefinedMetric(revenues[len(revenues)-1])
	}
	if len(profits) > 0 {
		latestProfit = domain.DefinedMetric(profits[len(profits)-1])
	}
	if len(equities) > 0 {
		latestEquity = domain.DefinedMetric(equities[len(equities)-1])
	}

	reported := r.ResolveFrom(domain.FieldSharesOutstanding, maps...)
	rec.SharesOutstanding = metrics.SharesOutstanding(reported, latestEquity, rec.BookValue, latestRevenue, rec.EPS)

	scrapedCap := r.ResolveFrom(domain.FieldMarketCap, maps...)
	rec.MarketVal, rec.MarketValSource = metrics.MarketValue(scrapedCap, rec.PriceVND, rec.SharesOutstanding, latestRevenue)

	rec.PEG = metrics.PEG(rec.PE, rec.ProfitCAGR3Y)

	rec.EstVal = metrics.EstimatedValue(metrics.DCFInput{
		OperatingCashFlow: rec.OperatingCashFlow,
		Capex:             capex,
		NetProfit:         latestProfit,
		Revenue:           latestRevenue,
		ProfitCAGR:        rec.ProfitCAGR3Y,
		RevenueCAGR:       rec.RevenueCAGR3Y,
		EPS:               rec.EPS,
		Shares:            rec.SharesOutstanding,
		MarketValue:       rec.MarketVal,
	})

	// Asset-quality fields only mean anything for credit institutions.
	if rec.IsBank {
		rec.NPLRatio = r.ResolveFrom(domain.FieldNPLRatio, maps...)
		rec.LLR = r.ResolveFrom(domain.FieldLLR, maps...)
	}

	return rec
}
