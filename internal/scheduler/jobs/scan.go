// Package jobs holds the screener's scheduled jobs: the daily scan
// and the weekly universe refresh.
package jobs

import (
	"context"
	"fmt"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Scanner runs a scan over a symbol set.
type Scanner interface {
	Scan(ctx context.Context, symbols []domain.Symbol) []*domain.ResolvedRecord
}

// SymbolSource resolves exchanges to symbols.
type SymbolSource interface {
	Symbols(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error)
	Refresh(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error)
}

// SnapshotStore persists scan snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, exchange domain.Exchange, records []*domain.ResolvedRecord) error
}

// DailyScanJob scans every exchange after the HOSE close and
// persists the snapshots.
type DailyScanJob struct {
	scanner  Scanner
	universe SymbolSource
	store    SnapshotStore
	logger   *logger.Logger
}

// NewDailyScanJob creates the daily scan job.
func NewDailyScanJob(scanner Scanner, universe SymbolSource, store SnapshotStore, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		scanner:  scanner,
		universe: universe,
		store:    store,
		logger:   log,
	}
}

func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule runs at 16:00 ICT, after the afternoon session settles.
func (j *DailyScanJob) Schedule() string {
	return "0 0 16 * * 1-5"
}

// Run scans each exchange in turn. One exchange failing to persist
// does not stop the others; the job reports the first error at the
// end so the scheduler retries.
func (j *DailyScanJob) Run(ctx context.Context) error {
	var firstErr error

	for _, exchange := range domain.AllExchanges {
		symbols, err := j.universe.Symbols(ctx, exchange)
		if err != nil {
			j.logger.WithError(err).WithField("exchange", exchange.String()).Error("Universe resolution failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("universe for %s: %w", exchange, err)
			}
			continue
		}

		records := j.scanner.Scan(ctx, symbols)

		if err := j.store.Save(ctx, exchange, records); err != nil {
			j.logger.WithError(err).WithField("exchange", exchange.String()).Error("Snapshot save failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("save for %s: %w", exchange, err)
			}
		}
	}

	return firstErr
}
