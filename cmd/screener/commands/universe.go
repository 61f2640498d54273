package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/internal/domain"
)

// universeCmd lists or refreshes the symbol universe.
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the symbols on an exchange",
	Long: `List the scannable symbols on an exchange. With --refresh
the listing is re-pulled from upstream instead of served from cache.

Example:
  go run ./cmd/screener universe --exchange hnx
  go run ./cmd/screener universe --exchange hose --refresh`,
	RunE: runUniverse,
}

var (
	universeExchange string
	universeRefresh  bool
)

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.Flags().StringVar(&universeExchange, "exchange", "vn30", "exchange (hose|hnx|upcom|vn30)")
	universeCmd.Flags().BoolVar(&universeRefresh, "refresh", false, "bypass the cache and re-pull the listing")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	exchange, err := domain.ParseExchange(universeExchange)
	if err != nil {
		return err
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	var symbols []domain.Symbol
	if universeRefresh {
		symbols, err = a.universe.Refresh(ctx, exchange)
	} else {
		symbols, err = a.universe.Symbols(ctx, exchange)
	}
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	fmt.Printf("%s: %d symbols\n", exchange, len(symbols))
	for i, s := range symbols {
		fmt.Printf("%-6s", s.Ticker)
		if (i+1)%10 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
	return nil
}
