package metrics

import (
	"math"
	"testing"

	"github.com/crownwell/vnscreener/internal/domain"
)

func TestCAGR(t *testing.T) {
	m := CAGR([]float64{100, 110, 121, 133.1}, 3)
	if !m.Defined() {
		t.Fatal("Expected defined CAGR")
	}
	if math.Abs(m.Value()-0.10) > 1e-6 {
		t.Errorf("Expected 0.10, got %f", m.Value())
	}
}

func TestCAGRTooFewPeriods(t *testing.T) {
	if m := CAGR([]float64{100, 110, 121}, 3); m.Defined() {
		t.Error("Expected undefined with 3 observations for a 3-year window")
	}
}

func TestCAGRNonPositiveStart(t *testing.T) {
	if m := CAGR([]float64{-50, 110, 121, 133}, 3); m.Defined() {
		t.Error("Expected undefined for non-positive start")
	}
	if m := CAGR([]float64{100, 110, 121, -10}, 3); m.Defined() {
		t.Error("Expected undefined for non-positive end")
	}
}

func TestCAGRUsesTrailingWindow(t *testing.T) {
	// Earlier noise outside the window must not matter.
	m := CAGR([]float64{1, 9999, 100, 110, 121, 133.1}, 3)
	if !m.Defined() || math.Abs(m.Value()-0.10) > 1e-6 {
		t.Errorf("Expected trailing-window 0.10, got %+v", m)
	}
}

func TestReturnOnAverage(t *testing.T) {
	// Latest income 120 over mean(equity 950, 1050) = 1000.
	m := ReturnOnAverage([]float64{100, 120}, []float64{950, 1050})
	if !m.Defined() {
		t.Fatal("Expected defined return")
	}
	if math.Abs(m.Value()-0.12) > 1e-9 {
		t.Errorf("Expected 0.12, got %f", m.Value())
	}
}

func TestReturnOnAverageSingleBase(t *testing.T) {
	m := ReturnOnAverage([]float64{120}, []float64{1000})
	if !m.Defined() || math.Abs(m.Value()-0.12) > 1e-9 {
		t.Errorf("Expected 0.12 from single base year, got %+v", m)
	}
}

func TestReturnOnAverageNonPositiveBase(t *testing.T) {
	if m := ReturnOnAverage([]float64{120}, []float64{100, -300}); m.Defined() {
		t.Error("Expected undefined for non-positive averaged base")
	}
}

func TestPEG(t *testing.T) {
	m := PEG(domain.DefinedMetric(15), domain.DefinedMetric(0.10))
	if !m.Defined() {
		t.Fatal("Expected defined PEG")
	}
	if math.Abs(m.Value()-1.5) > 1e-9 {
		t.Errorf("Expected 1.5, got %f", m.Value())
	}
}

func TestPEGUndefinedPropagation(t *testing.T) {
	if m := PEG(domain.UndefinedMetric(), domain.DefinedMetric(0.10)); m.Defined() {
		t.Error("Expected undefined PEG without P/E")
	}
	if m := PEG(domain.DefinedMetric(15), domain.UndefinedMetric()); m.Defined() {
		t.Error("Expected undefined PEG without growth")
	}
	if m := PEG(domain.DefinedMetric(15), domain.DefinedMetric(-0.05)); m.Defined() {
		t.Error("Expected undefined PEG for shrinking profit")
	}
}

func TestSharesOutstandingChain(t *testing.T) {
	scraped := domain.DefinedMetric(5_589_091_262)
	equity := domain.DefinedMetric(120_000) // billions
	bvps := domain.DefinedMetric(24_000)    // VND
	revenue := domain.DefinedMetric(56_000)
	eps := domain.DefinedMetric(4_870)

	if m := SharesOutstanding(scraped, equity, bvps, revenue, eps); m.Value() != 5_589_091_262 {
		t.Errorf("Expected scraped count preferred, got %f", m.Value())
	}

	m := SharesOutstanding(domain.UndefinedMetric(), equity, bvps, revenue, eps)
	if !m.Defined() || m.Value() != 120_000*1e9/24_000 {
		t.Errorf("Expected equity/BVPS rung, got %+v", m)
	}

	m = SharesOutstanding(domain.UndefinedMetric(), domain.UndefinedMetric(), bvps, revenue, eps)
	if !m.Defined() || m.Value() != 56_000*1e9/4_870 {
		t.Errorf("Expected revenue/EPS rung, got %+v", m)
	}
}

func TestSharesOutstandingEPSFloor(t *testing.T) {
	// Near-zero EPS must not explode the share count.
	m := SharesOutstanding(
		domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric(),
		domain.DefinedMetric(1000), domain.DefinedMetric(0.4),
	)
	if !m.Defined() || m.Value() != 1000*1e9 {
		t.Errorf("Expected EPS floored at 1, got %+v", m)
	}
}

func TestSharesOutstandingAllMissing(t *testing.T) {
	m := SharesOutstanding(
		domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric(),
		domain.UndefinedMetric(), domain.UndefinedMetric(),
	)
	if m.Defined() {
		t.Error("Expected undefined share count with no inputs")
	}
}

func TestMarketValueChain(t *testing.T) {
	scraped := domain.DefinedMetric(182_500)
	price := domain.DefinedMetric(120_000)
	shares := domain.DefinedMetric(1_270_500_000)
	revenue := domain.DefinedMetric(56_000)

	m, src := MarketValue(scraped, price, shares, revenue)
	if m.Value() != 182_500 || src != domain.MarketValSourceScraped {
		t.Errorf("Expected scraped rung, got %f (%s)", m.Value(), src)
	}

	m, src = MarketValue(domain.UndefinedMetric(), price, shares, revenue)
	want := 120_000 * 1_270_500_000 / 1e9
	if math.Abs(m.Value()-want) > 1e-6 || src != domain.MarketValSourcePriceShares {
		t.Errorf("Expected price x shares rung %f, got %f (%s)", want, m.Value(), src)
	}

	m, src = MarketValue(domain.UndefinedMetric(), domain.UndefinedMetric(), shares, revenue)
	if m.Value() != 56_000*3.5 || src != domain.MarketValSourceLowConfidence {
		t.Errorf("Expected revenue-multiple rung, got %f (%s)", m.Value(), src)
	}

	m, src = MarketValue(domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric())
	if m.Defined() || src != "" {
		t.Errorf("Expected undefined market value, got %+v (%s)", m, src)
	}
}

func TestMarketValueDeterministic(t *testing.T) {
	revenue := domain.DefinedMetric(56_000)
	a, _ := MarketValue(domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric(), revenue)
	b, _ := MarketValue(domain.UndefinedMetric(), domain.UndefinedMetric(), domain.UndefinedMetric(), revenue)
	if a.Value() != b.Value() {
		t.Errorf("Estimate must be deterministic: %f vs %f", a.Value(), b.Value())
	}
}
