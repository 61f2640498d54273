package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crownwell/vnscreener/internal/domain"
)

type stubSaver struct {
	err   error
	saved int
}

func (s *stubSaver) Save(ctx context.Context, exchange domain.Exchange, records []*domain.ResolvedRecord) error {
	if s.err != nil {
		return s.err
	}
	s.saved = len(records)
	return nil
}

func TestPersistSnapshotDumpsCSVOnSaveFailure(t *testing.T) {
	dir := t.TempDir()
	records := []*domain.ResolvedRecord{
		{Ticker: "FPT", Exchange: domain.ExchangeHOSE, PriceVND: domain.DefinedMetric(120_000)},
		{Ticker: "VNM", Exchange: domain.ExchangeHOSE, PriceVND: domain.DefinedMetric(65_000)},
	}

	saver := &stubSaver{err: errors.New("connection refused")}
	err := persistSnapshot(saver, domain.ExchangeHOSE, records, dir)
	if err == nil {
		t.Fatal("Expected the database error to surface")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".csv") {
		t.Fatalf("Expected one CSV fallback file, got %v", entries)
	}

	data, readErr := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, ticker := range []string{"FPT", "VNM"} {
		if !strings.Contains(string(data), ticker) {
			t.Errorf("Expected %s in the fallback CSV", ticker)
		}
	}
}

func TestPersistSnapshotNoDumpOnSuccess(t *testing.T) {
	dir := t.TempDir()
	records := []*domain.ResolvedRecord{
		{Ticker: "HPG", Exchange: domain.ExchangeHOSE},
	}

	saver := &stubSaver{}
	if err := persistSnapshot(saver, domain.ExchangeHOSE, records, dir); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if saver.saved != 1 {
		t.Errorf("Expected 1 record saved, got %d", saver.saved)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no fallback file on success, got %v", entries)
	}
}
