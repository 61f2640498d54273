package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/pkg/config"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// testLoggerCmd exercises the structured logger.
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Test structured logging output",
	Long: `Exercise the structured logger in both output formats.

Example:
  go run ./cmd/screener test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Logger Test ===")

	fmt.Println("1. JSON format")
	jsonLog := logger.New(&config.Config{Env: "production", LogLevel: "debug", LogFormat: "json"})
	jsonLog.Info("Info message")
	jsonLog.WithField("ticker", "FPT").Debug("Debug with field")
	fmt.Println()

	fmt.Println("2. Console format")
	consoleLog := logger.New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"})
	consoleLog.Info("Info message")
	consoleLog.Warn("Warning message")
	fmt.Println()

	fmt.Println("3. Structured fields")
	consoleLog.WithFields(map[string]interface{}{
		"exchange": "hose",
		"symbols":  412,
		"duration": "3m12s",
	}).Info("Scan completed")
	fmt.Println()

	fmt.Println("4. Error context")
	consoleLog.WithError(errors.New("connection refused")).
		WithField("provider", "cafef").
		Warn("Provider fetch failed")

	fmt.Println("\nAll logger tests completed")
	return nil
}
