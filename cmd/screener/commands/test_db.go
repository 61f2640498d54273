package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/pkg/config"
	"github.com/crownwell/vnscreener/pkg/database"
)

// testDBCmd checks the database connection.
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the PostgreSQL connection",
	Long: `Test the database connection and show pool statistics.

Example:
  go run ./cmd/screener test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fmt.Printf("Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	fmt.Println("Connecting to database...")
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer db.Close()
	fmt.Println("Connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Printf("Ping OK (%s)\n\n", health.ResponseTime)
	fmt.Println("Pool statistics:")
	fmt.Printf("  Total conns    : %d\n", health.Stats.TotalConns)
	fmt.Printf("  Idle conns     : %d\n", health.Stats.IdleConns)
	fmt.Printf("  Acquired conns : %d\n", health.Stats.AcquiredConns)
	fmt.Printf("  Max conns      : %d\n", health.Stats.MaxConns)

	return nil
}

// maskPassword hides the password component of a connection URL.
func maskPassword(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "(unparseable)"
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "****")
		}
	}
	return u.String()
}
