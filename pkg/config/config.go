package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the screener.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream data providers
	TCBS      ProviderConfig
	VNDirect  ProviderConfig
	CafeF     ProviderConfig
	Vietstock ProviderConfig

	// Scan
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds settings for one upstream data source.
type ProviderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ScanConfig holds scan pipeline tuning.
type ScanConfig struct {
	Workers      int           // concurrent symbol pipelines
	RequestDelay time.Duration // courtesy delay between symbols per worker

	// Freshness cache TTLs by query kind
	StatementTTL time.Duration // annual statements, ratios
	OverviewTTL  time.Duration // scraped investor pages
	PriceTTL     time.Duration // latest price, bars
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		TCBS: ProviderConfig{
			BaseURL: getEnv("TCBS_BASE_URL", "https://apipubaws.tcbs.com.vn"),
			Timeout: getEnvAsDuration("TCBS_TIMEOUT", "15s"),
		},
		VNDirect: ProviderConfig{
			BaseURL: getEnv("VNDIRECT_BASE_URL", "https://finfo-api.vndirect.com.vn"),
			Timeout: getEnvAsDuration("VNDIRECT_TIMEOUT", "10s"),
		},
		CafeF: ProviderConfig{
			BaseURL: getEnv("CAFEF_BASE_URL", "https://s.cafef.vn"),
			Timeout: getEnvAsDuration("CAFEF_TIMEOUT", "15s"),
		},
		Vietstock: ProviderConfig{
			BaseURL: getEnv("VIETSTOCK_BASE_URL", "https://finance.vietstock.vn"),
			Timeout: getEnvAsDuration("VIETSTOCK_TIMEOUT", "15s"),
		},

		Scan: ScanConfig{
			Workers:      getEnvAsInt("SCAN_WORKERS", 4),
			RequestDelay: getEnvAsDuration("SCAN_REQUEST_DELAY", "2s"),
			StatementTTL: getEnvAsDuration("CACHE_STATEMENT_TTL", "6h"),
			OverviewTTL:  getEnvAsDuration("CACHE_OVERVIEW_TTL", "30m"),
			PriceTTL:     getEnvAsDuration("CACHE_PRICE_TTL", "1m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
