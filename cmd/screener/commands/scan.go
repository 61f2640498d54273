package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/internal/domain"
)

// scanCmd runs one scan over an exchange's universe.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an exchange and persist the snapshot",
	Long: `Scan every symbol on an exchange across all four data
sources, reconcile the results, and persist the snapshot.

Ctrl+C aborts the scan; records already completed are kept and
persisted.

Example:
  go run ./cmd/screener scan --exchange vn30
  go run ./cmd/screener scan --exchange hose --no-persist`,
	RunE: runScan,
}

var (
	scanExchange  string
	scanNoPersist bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanExchange, "exchange", "vn30", "exchange to scan (hose|hnx|upcom|vn30)")
	scanCmd.Flags().BoolVar(&scanNoPersist, "no-persist", false, "skip writing the snapshot to the database")
}

func runScan(cmd *cobra.Command, args []string) error {
	exchange, err := domain.ParseExchange(scanExchange)
	if err != nil {
		return err
	}

	a, err := newApp(!scanNoPersist)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\nAborting scan, keeping completed records...")
		cancel()
	}()

	symbols, err := a.universe.Symbols(ctx, exchange)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	fmt.Printf("Scanning %d symbols on %s...\n", len(symbols), exchange)
	start := time.Now()

	records := a.engine.Scan(ctx, symbols)

	fmt.Printf("Scan finished: %d/%d records in %.1fs\n", len(records), len(symbols), time.Since(start).Seconds())

	if scanNoPersist {
		return nil
	}

	if err := a.repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if err := persistSnapshot(a.repo, exchange, records, "."); err != nil {
		return err
	}

	fmt.Printf("Snapshot persisted to %s\n", exchange)
	return nil
}

// snapshotSaver is the slice of the repository the scan command needs.
type snapshotSaver interface {
	Save(ctx context.Context, exchange domain.Exchange, records []*domain.ResolvedRecord) error
}

// persistSnapshot writes the snapshot to the database. A failed write
// dumps the records to a CSV in dir so the scan isn't lost; the
// database error still surfaces so the run exits non-zero.
func persistSnapshot(repo snapshotSaver, exchange domain.Exchange, records []*domain.ResolvedRecord, dir string) error {
	err := repo.Save(context.Background(), exchange, records)
	if err == nil {
		return nil
	}

	name := fmt.Sprintf("scan-%s-%s.csv", exchange, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if csvErr := writeCSVFile(path, records); csvErr != nil {
		return fmt.Errorf("persist snapshot: %w (CSV fallback failed: %v)", err, csvErr)
	}

	fmt.Printf("Database write failed, snapshot dumped to %s\n", path)
	return fmt.Errorf("persist snapshot: %w", err)
}
