package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/internal/domain"
)

// exportCmd writes a stored snapshot to CSV.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored snapshot to CSV",
	Long: `Export the latest stored snapshot of an exchange to a CSV
file, unfiltered and ranked by profit growth.

Example:
  go run ./cmd/screener export --exchange hose --output hose.csv`,
	RunE: runExport,
}

var (
	exportExchange string
	exportOutput   string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportExchange, "exchange", "vn30", "exchange to export (hose|hnx|upcom|vn30)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output CSV path (required)")
	exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	exchange, err := domain.ParseExchange(exportExchange)
	if err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.repo.Load(context.Background(), exchange)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no snapshot stored for %s, run a scan first", exchange)
	}

	if err := writeCSVFile(exportOutput, records); err != nil {
		return err
	}

	fmt.Printf("Exported %d records to %s\n", len(records), exportOutput)
	return nil
}
