package screen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownwell/vnscreener/internal/domain"
)

func record(ticker string, mutate func(*domain.ResolvedRecord)) *domain.ResolvedRecord {
	r := &domain.ResolvedRecord{
		Ticker:        ticker,
		Exchange:      domain.ExchangeHOSE,
		PriceVND:      domain.DefinedMetric(50_000),
		MarketVal:     domain.DefinedMetric(10_000),
		PE:            domain.DefinedMetric(12),
		PB:            domain.DefinedMetric(2),
		ROE:           domain.DefinedMetric(0.18),
		ROA:           domain.DefinedMetric(0.08),
		ProfitCAGR3Y:  domain.DefinedMetric(0.15),
		RevenueCAGR3Y: domain.DefinedMetric(0.12),
	}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestPassesAllDisabled(t *testing.T) {
	empty := &domain.ResolvedRecord{Ticker: "XXX"}
	assert.True(t, Passes(empty, domain.DefaultCriteria()),
		"disabled criteria must pass a record with no data at all")
}

func TestPassesMinBounds(t *testing.T) {
	c := domain.ScreeningCriteria{MinROE: 0.15}

	assert.True(t, Passes(record("AAA", nil), c))
	assert.False(t, Passes(record("BBB", func(r *domain.ResolvedRecord) {
		r.ROE = domain.DefinedMetric(0.10)
	}), c))
	assert.False(t, Passes(record("CCC", func(r *domain.ResolvedRecord) {
		r.ROE = domain.UndefinedMetric()
	}), c), "undefined must fail an enabled lower bound")
}

func TestPassesMaxValuationBounds(t *testing.T) {
	c := domain.ScreeningCriteria{MaxPE: 15}

	assert.True(t, Passes(record("AAA", nil), c))
	assert.False(t, Passes(record("BBB", func(r *domain.ResolvedRecord) {
		r.PE = domain.DefinedMetric(22)
	}), c))
	assert.False(t, Passes(record("CCC", func(r *domain.ResolvedRecord) {
		r.PE = domain.UndefinedMetric()
	}), c), "no P/E usually means losses; must fail a cheapness bound")
}

func TestPassesDebtBoundLenient(t *testing.T) {
	c := domain.ScreeningCriteria{MaxDebtToEquity: 1.5}

	assert.True(t, Passes(record("AAA", func(r *domain.ResolvedRecord) {
		r.DebtToEquity = domain.UndefinedMetric()
	}), c), "missing leverage data passes")
	assert.False(t, Passes(record("BBB", func(r *domain.ResolvedRecord) {
		r.DebtToEquity = domain.DefinedMetric(3.2)
	}), c))
}

func TestPassesManagementOwnership(t *testing.T) {
	c := domain.ScreeningCriteria{MaxManagementOwnership: 0.30}

	assert.True(t, Passes(record("AAA", func(r *domain.ResolvedRecord) {
		r.ManagementOwnership = domain.DefinedMetric(0.10)
	}), c))
	assert.False(t, Passes(record("BBB", func(r *domain.ResolvedRecord) {
		r.ManagementOwnership = domain.DefinedMetric(0.45)
	}), c))
	assert.False(t, Passes(record("CCC", nil), c),
		"unreported insider ownership fails an enabled bound")

	// At or above 1 the bound cannot exclude any fraction: disabled.
	loose := domain.ScreeningCriteria{MaxManagementOwnership: 1.0}
	assert.True(t, Passes(record("DDD", nil), loose))
}

func TestApplyFiltersAndRanks(t *testing.T) {
	records := []*domain.ResolvedRecord{
		record("LOW", func(r *domain.ResolvedRecord) {
			r.ProfitCAGR3Y = domain.DefinedMetric(0.05)
		}),
		record("TOP", func(r *domain.ResolvedRecord) {
			r.ProfitCAGR3Y = domain.DefinedMetric(0.30)
		}),
		record("OUT", func(r *domain.ResolvedRecord) {
			r.ROE = domain.DefinedMetric(0.02)
		}),
		record("MID", func(r *domain.ResolvedRecord) {
			r.ProfitCAGR3Y = domain.DefinedMetric(0.15)
		}),
	}

	got := Apply(records, domain.ScreeningCriteria{MinROE: 0.10})

	require.Len(t, got, 3)
	assert.Equal(t, "TOP", got[0].Ticker)
	assert.Equal(t, "MID", got[1].Ticker)
	assert.Equal(t, "LOW", got[2].Ticker)
	assert.Len(t, records, 4, "input slice must not be modified")
}

func TestRankTieBreaksOnROE(t *testing.T) {
	records := []*domain.ResolvedRecord{
		record("AAA", func(r *domain.ResolvedRecord) { r.ROE = domain.DefinedMetric(0.12) }),
		record("BBB", func(r *domain.ResolvedRecord) { r.ROE = domain.DefinedMetric(0.25) }),
	}

	Rank(records)

	assert.Equal(t, "BBB", records[0].Ticker)
}

func TestRankUndefinedGrowthLast(t *testing.T) {
	records := []*domain.ResolvedRecord{
		record("NOG", func(r *domain.ResolvedRecord) {
			r.ProfitCAGR3Y = domain.UndefinedMetric()
		}),
		record("NEG", func(r *domain.ResolvedRecord) {
			r.ProfitCAGR3Y = domain.DefinedMetric(-0.20)
		}),
	}

	Rank(records)

	assert.Equal(t, "NEG", records[0].Ticker, "a real loss still outranks no data")
	assert.Equal(t, "NOG", records[1].Ticker)
}

func TestWriteCSV(t *testing.T) {
	records := []*domain.ResolvedRecord{
		record("FPT", func(r *domain.ResolvedRecord) {
			r.SharesOutstanding = domain.DefinedMetric(1_270_500_000)
			r.ManagementOwnership = domain.UndefinedMetric()
		}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, len(csvHeader))
	assert.Equal(t, "FPT", fields[0])
	assert.Equal(t, "50000", fields[1])
	assert.Equal(t, "", fields[9], "undefined renders as an empty cell")
	assert.Equal(t, "1270500000", fields[10])
}
