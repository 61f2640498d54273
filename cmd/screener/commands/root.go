package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Vietnamese equity screener",
	Long: `Multi-source screener for Vietnamese equities.

Reconciles fundamentals, prices and ownership data across four
upstream sources, derives growth and valuation metrics, and screens
the result against configurable criteria.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener api
  go run ./cmd/screener scan --exchange vn30
  go run ./cmd/screener screen --exchange hose --min-roe 0.15 --max-pe 12
  go run ./cmd/screener export --exchange hose --output hose.csv`,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}
