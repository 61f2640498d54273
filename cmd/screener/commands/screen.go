package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/internal/screen"
)

// screenCmd filters the stored snapshot against criteria.
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a stored snapshot against criteria",
	Long: `Apply screening criteria to the latest stored snapshot of an
exchange. A zero threshold disables that bound. Percentage-like
thresholds are fractions: --min-roe 0.15 means 15%.

Example:
  go run ./cmd/screener screen --exchange hose --min-roe 0.15 --max-pe 12
  go run ./cmd/screener screen --exchange vn30 --min-profit-cagr 0.10 --output picks.csv`,
	RunE: runScreen,
}

var (
	screenExchange string
	screenOutput   string
	screenCriteria domain.ScreeningCriteria
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenExchange, "exchange", "vn30", "exchange to screen (hose|hnx|upcom|vn30)")
	screenCmd.Flags().StringVar(&screenOutput, "output", "", "write survivors to a CSV file")

	f := screenCmd.Flags()
	f.Float64Var(&screenCriteria.MinRevenueCAGR3Y, "min-revenue-cagr", 0, "minimum 3y revenue CAGR")
	f.Float64Var(&screenCriteria.MinProfitCAGR3Y, "min-profit-cagr", 0, "minimum 3y profit CAGR")
	f.Float64Var(&screenCriteria.MinROE, "min-roe", 0, "minimum return on equity")
	f.Float64Var(&screenCriteria.MinROA, "min-roa", 0, "minimum return on assets")
	f.Float64Var(&screenCriteria.MaxPE, "max-pe", 0, "maximum price/earnings")
	f.Float64Var(&screenCriteria.MaxPB, "max-pb", 0, "maximum price/book")
	f.Float64Var(&screenCriteria.MaxPEG, "max-peg", 0, "maximum PEG ratio")
	f.Float64Var(&screenCriteria.MaxEVEBITDA, "max-ev-ebitda", 0, "maximum EV/EBITDA")
	f.Float64Var(&screenCriteria.MinGrossMargin, "min-gross-margin", 0, "minimum gross margin")
	f.Float64Var(&screenCriteria.MinOperatingMargin, "min-operating-margin", 0, "minimum operating margin")
	f.Float64Var(&screenCriteria.MaxDebtToEquity, "max-debt-to-equity", 0, "maximum debt/equity")
	f.Float64Var(&screenCriteria.MinCurrentRatio, "min-current-ratio", 0, "minimum current ratio")
	f.Float64Var(&screenCriteria.MinQuickRatio, "min-quick-ratio", 0, "minimum quick ratio")
	f.Float64Var(&screenCriteria.MinDividendYield, "min-dividend-yield", 0, "minimum dividend yield")
	f.Float64Var(&screenCriteria.MinFreeFloat, "min-free-float", 0, "minimum free float")
	f.Float64Var(&screenCriteria.MinForeignOwnership, "min-foreign-ownership", 0, "minimum foreign ownership")
	f.Float64Var(&screenCriteria.MaxManagementOwnership, "max-management-ownership", 0, "maximum management ownership")
	f.Float64Var(&screenCriteria.MinMarketCapBillion, "min-market-cap", 0, "minimum market cap (billions VND)")
	f.Float64Var(&screenCriteria.MinAvgTradingValueBillion, "min-avg-trading-value", 0, "minimum 20d avg trading value (billions VND)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	exchange, err := domain.ParseExchange(screenExchange)
	if err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	records, err := a.repo.Load(ctx, exchange)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no snapshot stored for %s, run a scan first", exchange)
	}

	matched := screen.Apply(records, screenCriteria)

	scannedAt, err := a.repo.LatestScanTime(ctx, exchange)
	if err == nil && !scannedAt.IsZero() {
		fmt.Printf("Snapshot from %s\n", scannedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d of %d symbols match\n\n", len(matched), len(records))

	printRecords(matched)

	if screenOutput != "" {
		if err := writeCSVFile(screenOutput, matched); err != nil {
			return err
		}
		fmt.Printf("\nWritten to %s\n", screenOutput)
	}

	return nil
}

// printRecords prints a compact ranking table.
func printRecords(records []*domain.ResolvedRecord) {
	fmt.Printf("%-8s %10s %8s %8s %8s %10s %12s\n",
		"TICKER", "PRICE", "PE", "ROE", "CAGR3Y", "PEG", "MKTCAP(B)")

	for _, r := range records {
		fmt.Printf("%-8s %10s %8s %8s %8s %10s %12s\n",
			r.Ticker,
			fmtMetric(r.PriceVND, "%.0f"),
			fmtMetric(r.PE, "%.1f"),
			fmtMetric(r.ROE, "%.1f%%"),
			fmtMetric(r.ProfitCAGR3Y, "%.1f%%"),
			fmtMetric(r.PEG, "%.2f"),
			fmtMetric(r.MarketVal, "%.0f"),
		)
	}
}

// fmtMetric renders a metric, scaling percent formats to whole
// percents and showing a dash for undefined.
func fmtMetric(m domain.Metric, format string) string {
	v, ok := m.Get()
	if !ok {
		return "-"
	}
	if format == "%.1f%%" {
		v *= 100
	}
	return fmt.Sprintf(format, v)
}

func writeCSVFile(path string, records []*domain.ResolvedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := screen.WriteCSV(f, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
