package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8090" {
		t.Errorf("Expected Port to be 8090, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 25 {
		t.Errorf("Expected DB MaxConns to be 25, got %d", cfg.Database.MaxConns)
	}

	if cfg.TCBS.BaseURL != "https://apipubaws.tcbs.com.vn" {
		t.Errorf("Unexpected TCBS base URL: %s", cfg.TCBS.BaseURL)
	}

	if cfg.Scan.Workers != 4 {
		t.Errorf("Expected 4 scan workers, got %d", cfg.Scan.Workers)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("SCAN_WORKERS", "8")
	os.Setenv("CACHE_PRICE_TTL", "30s")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("SCAN_WORKERS")
		os.Unsetenv("CACHE_PRICE_TTL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Scan.Workers != 8 {
		t.Errorf("Expected 8 scan workers, got %d", cfg.Scan.Workers)
	}

	if cfg.Scan.PriceTTL.Seconds() != 30 {
		t.Errorf("Expected price TTL 30s, got %v", cfg.Scan.PriceTTL)
	}
}

func TestValidateRejectsBadEnv(t *testing.T) {
	os.Setenv("ENV", "nonsense")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Expected Load() to fail for invalid ENV")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	os.Setenv("SCAN_WORKERS", "0")
	defer os.Unsetenv("SCAN_WORKERS")

	if _, err := Load(); err == nil {
		t.Error("Expected Load() to fail for SCAN_WORKERS=0")
	}
}
