package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/internal/screen"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// Scanner runs a scan over a symbol set.
type Scanner interface {
	Scan(ctx context.Context, symbols []domain.Symbol) []*domain.ResolvedRecord
}

// SymbolSource resolves exchanges to symbols.
type SymbolSource interface {
	Symbols(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error)
	Refresh(ctx context.Context, exchange domain.Exchange) ([]domain.Symbol, error)
}

// SnapshotStore persists and serves scan snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, exchange domain.Exchange, records []*domain.ResolvedRecord) error
	Load(ctx context.Context, exchange domain.Exchange) ([]*domain.ResolvedRecord, error)
	LatestScanTime(ctx context.Context, exchange domain.Exchange) (time.Time, error)
}

// CacheFlusher invalidates the freshness cache.
type CacheFlusher interface {
	Flush()
}

// ScreenerHandler handles the screener API endpoints.
type ScreenerHandler struct {
	scanner  Scanner
	universe SymbolSource
	store    SnapshotStore
	cache    CacheFlusher
	logger   *logger.Logger
}

// NewScreenerHandler creates a screener handler.
func NewScreenerHandler(scanner Scanner, universe SymbolSource, store SnapshotStore, cache CacheFlusher, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		scanner:  scanner,
		universe: universe,
		store:    store,
		cache:    cache,
		logger:   log,
	}
}

// Health returns service health.
// GET /health
func (h *ScreenerHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "vnscreener-api",
	})
}

// ScanRequest triggers a scan of one exchange.
type ScanRequest struct {
	Exchange string `json:"exchange"`
	Persist  *bool  `json:"persist,omitempty"` // default true
}

// ScanResponse summarizes a completed scan.
type ScanResponse struct {
	Exchange  string    `json:"exchange"`
	Symbols   int       `json:"symbols"`
	Records   int       `json:"records"`
	Persisted bool      `json:"persisted"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Scan runs a synchronous scan over an exchange's universe.
// POST /api/scan
func (h *ScreenerHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exchange, err := domain.ParseExchange(req.Exchange)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	symbols, err := h.universe.Symbols(ctx, exchange)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe")
		respondError(w, http.StatusBadGateway, "Failed to resolve symbol universe")
		return
	}

	records := h.scanner.Scan(ctx, symbols)

	persist := req.Persist == nil || *req.Persist
	if persist {
		if err := h.store.Save(ctx, exchange, records); err != nil {
			h.logger.WithError(err).Error("Failed to persist scan")
			respondError(w, http.StatusInternalServerError, "Scan completed but persisting failed")
			return
		}
	}

	respondJSON(w, http.StatusOK, ScanResponse{
		Exchange:  exchange.String(),
		Symbols:   len(symbols),
		Records:   len(records),
		Persisted: persist,
		ScannedAt: time.Now(),
	})
}

// RecordsResponse wraps a stored snapshot.
type RecordsResponse struct {
	Exchange  string                   `json:"exchange"`
	Count     int                      `json:"count"`
	ScannedAt time.Time                `json:"scanned_at"`
	Records   []*domain.ResolvedRecord `json:"records"`
}

// Records returns the stored snapshot for an exchange.
// GET /api/records/{exchange}
func (h *ScreenerHandler) Records(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exchange, err := domain.ParseExchange(mux.Vars(r)["exchange"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Load(ctx, exchange)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	scannedAt, err := h.store.LatestScanTime(ctx, exchange)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load scan time")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	respondJSON(w, http.StatusOK, RecordsResponse{
		Exchange:  exchange.String(),
		Count:     len(records),
		ScannedAt: scannedAt,
		Records:   records,
	})
}

// ScreenRequest filters a stored snapshot against criteria.
type ScreenRequest struct {
	Exchange string                   `json:"exchange"`
	Criteria domain.ScreeningCriteria `json:"criteria"`
}

// ScreenResponse holds the ranked survivors.
type ScreenResponse struct {
	Exchange string                   `json:"exchange"`
	Total    int                      `json:"total"`
	Matched  int                      `json:"matched"`
	Records  []*domain.ResolvedRecord `json:"records"`
}

// Screen applies criteria to the stored snapshot.
// POST /api/screen
func (h *ScreenerHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exchange, err := domain.ParseExchange(req.Exchange)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Load(ctx, exchange)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	matched := screen.Apply(records, req.Criteria)

	respondJSON(w, http.StatusOK, ScreenResponse{
		Exchange: exchange.String(),
		Total:    len(records),
		Matched:  len(matched),
		Records:  matched,
	})
}

// Refresh flushes the freshness cache so the next scan refetches
// everything.
// POST /api/refresh
func (h *ScreenerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.cache.Flush()
	h.logger.Info("Freshness cache flushed")

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "flushed",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
