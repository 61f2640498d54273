package jobs

import (
	"context"
	"fmt"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// UniverseRefreshJob re-pulls the exchange listings weekly so new
// listings and delistings show up without a manual refresh.
type UniverseRefreshJob struct {
	universe SymbolSource
	logger   *logger.Logger
}

// NewUniverseRefreshJob creates the universe refresh job.
func NewUniverseRefreshJob(universe SymbolSource, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		universe: universe,
		logger:   log,
	}
}

func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule runs Sunday evenings, outside trading hours.
func (j *UniverseRefreshJob) Schedule() string {
	return "0 0 20 * * 0"
}

// Run refreshes each board listing. VN30 is static and skipped.
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	var firstErr error

	for _, exchange := range []domain.Exchange{domain.ExchangeHOSE, domain.ExchangeHNX, domain.ExchangeUPCOM} {
		symbols, err := j.universe.Refresh(ctx, exchange)
		if err != nil {
			j.logger.WithError(err).WithField("exchange", exchange.String()).Error("Universe refresh failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("refresh %s: %w", exchange, err)
			}
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"exchange": exchange.String(),
			"symbols":  len(symbols),
		}).Info("Universe refreshed")
	}

	return firstErr
}
