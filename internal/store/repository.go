// Package store persists scan snapshots in Postgres. Each exchange
// writes to its own table and a scan replaces the table's contents
// wholesale: the database holds the latest snapshot, history lives in
// exports.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crownwell/vnscreener/internal/domain"
	"github.com/crownwell/vnscreener/pkg/database"
	"github.com/crownwell/vnscreener/pkg/logger"
)

// insertBatchSize bounds statements per batch round trip.
const insertBatchSize = 100

var exchangeTables = map[domain.Exchange]string{
	domain.ExchangeHOSE:  "stocks_hose",
	domain.ExchangeHNX:   "stocks_hnx",
	domain.ExchangeUPCOM: "stocks_upcom",
	domain.ExchangeVN30:  "stocks_vn30",
}

// tableFor maps an exchange to its snapshot table. Unknown exchanges
// land in the HOSE table rather than failing a whole scan.
func tableFor(exchange domain.Exchange) string {
	if t, ok := exchangeTables[exchange]; ok {
		return t
	}
	return "stocks_hose"
}

// Repository reads and writes scan snapshots.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a snapshot repository.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithField("component", "store"),
	}
}

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %s (
	ticker TEXT PRIMARY KEY,
	exchange TEXT NOT NULL,
	company_name TEXT,
	is_bank BOOLEAN NOT NULL DEFAULT FALSE,
	price_vnd DOUBLE PRECISION,
	market_val DOUBLE PRECISION,
	market_val_source TEXT,
	est_val DOUBLE PRECISION,
	pe DOUBLE PRECISION,
	pb DOUBLE PRECISION,
	peg DOUBLE PRECISION,
	ev_ebitda DOUBLE PRECISION,
	eps DOUBLE PRECISION,
	book_value_per_share DOUBLE PRECISION,
	revenue_cagr_3y DOUBLE PRECISION,
	profit_cagr_3y DOUBLE PRECISION,
	roe DOUBLE PRECISION,
	roa DOUBLE PRECISION,
	gross_margin DOUBLE PRECISION,
	operating_margin DOUBLE PRECISION,
	debt_to_equity DOUBLE PRECISION,
	debt_to_asset DOUBLE PRECISION,
	current_ratio DOUBLE PRECISION,
	quick_ratio DOUBLE PRECISION,
	dividend_yield DOUBLE PRECISION,
	operating_cash_flow DOUBLE PRECISION,
	free_cash_flow DOUBLE PRECISION,
	shares_outstanding DOUBLE PRECISION,
	free_float DOUBLE PRECISION,
	foreign_ownership DOUBLE PRECISION,
	management_ownership DOUBLE PRECISION,
	avg_trading_value DOUBLE PRECISION,
	npl_ratio DOUBLE PRECISION,
	llr DOUBLE PRECISION,
	scanned_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the per-exchange snapshot tables.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, table := range exchangeTables {
		if _, err := r.db.Pool.Exec(ctx, fmt.Sprintf(schemaTemplate, table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

var recordColumns = []string{
	"ticker", "exchange", "company_name", "is_bank",
	"price_vnd", "market_val", "market_val_source", "est_val",
	"pe", "pb", "peg", "ev_ebitda", "eps", "book_value_per_share",
	"revenue_cagr_3y", "profit_cagr_3y",
	"roe", "roa", "gross_margin", "operating_margin",
	"debt_to_equity", "debt_to_asset", "current_ratio", "quick_ratio",
	"dividend_yield", "operating_cash_flow", "free_cash_flow",
	"shares_outstanding", "free_float", "foreign_ownership",
	"management_ownership", "avg_trading_value",
	"npl_ratio", "llr", "scanned_at",
}

func insertSQL(table string) string {
	cols := ""
	params := ""
	for i, c := range recordColumns {
		if i > 0 {
			cols += ", "
			params += ", "
		}
		cols += c
		params += fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, params)
}

func recordArgs(rec *domain.ResolvedRecord) []interface{} {
	return []interface{}{
		rec.Ticker, rec.Exchange.String(), rec.CompanyName, rec.IsBank,
		rec.PriceVND.Ptr(), rec.MarketVal.Ptr(), rec.MarketValSource, rec.EstVal.Ptr(),
		rec.PE.Ptr(), rec.PB.Ptr(), rec.PEG.Ptr(), rec.EVEBITDA.Ptr(),
		rec.EPS.Ptr(), rec.BookValue.Ptr(),
		rec.RevenueCAGR3Y.Ptr(), rec.ProfitCAGR3Y.Ptr(),
		rec.ROE.Ptr(), rec.ROA.Ptr(), rec.GrossMargin.Ptr(), rec.OperatingMargin.Ptr(),
		rec.DebtToEquity.Ptr(), rec.DebtToAsset.Ptr(), rec.CurrentRatio.Ptr(), rec.QuickRatio.Ptr(),
		rec.DividendYield.Ptr(), rec.OperatingCashFlow.Ptr(), rec.FreeCashFlow.Ptr(),
		rec.SharesOutstanding.Ptr(), rec.FreeFloat.Ptr(), rec.ForeignOwnership.Ptr(),
		rec.ManagementOwnership.Ptr(), rec.AvgTradingValue.Ptr(),
		rec.NPLRatio.Ptr(), rec.LLR.Ptr(), rec.ScannedAt,
	}
}

// Save replaces the exchange's snapshot with the given records in one
// transaction. A failed scan therefore never leaves a half-written
// table behind.
func (r *Repository) Save(ctx context.Context, exchange domain.Exchange, records []*domain.ResolvedRecord) error {
	table := tableFor(exchange)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	sql := insertSQL(table)
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := &pgx.Batch{}
		for _, rec := range records[start:end] {
			batch.Queue(sql, recordArgs(rec)...)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"exchange": exchange.String(),
		"records":  len(records),
	}).Info("Snapshot saved")

	return nil
}

// Load returns the exchange's stored snapshot ordered by ticker.
func (r *Repository) Load(ctx context.Context, exchange domain.Exchange) ([]*domain.ResolvedRecord, error) {
	table := tableFor(exchange)

	cols := ""
	for i, c := range recordColumns {
		if i > 0 {
			cols += ", "
		}
		cols += c
	}

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY ticker", cols, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var records []*domain.ResolvedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestScanTime returns the newest scan timestamp in the exchange's
// table, or the zero time when the table is empty.
func (r *Repository) LatestScanTime(ctx context.Context, exchange domain.Exchange) (time.Time, error) {
	table := tableFor(exchange)

	var latest *time.Time
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf("SELECT MAX(scanned_at) FROM %s", table)).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query scan time from %s: %w", table, err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

func scanRecord(rows pgx.Rows) (*domain.ResolvedRecord, error) {
	var rec domain.ResolvedRecord
	var exchange string
	var priceVND, marketVal, estVal, pe, pb, peg, evEBITDA, eps, bookValue *float64
	var revenueCAGR, profitCAGR *float64
	var roe, roa, grossMargin, operatingMargin *float64
	var debtToEquity, debtToAsset, currentRatio, quickRatio *float64
	var dividendYield, ocf, fcf *float64
	var shares, freeFloat, foreign, management, atv *float64
	var npl, llr *float64

	err := rows.Scan(
		&rec.Ticker, &exchange, &rec.CompanyName, &rec.IsBank,
		&priceVND, &marketVal, &rec.MarketValSource, &estVal,
		&pe, &pb, &peg, &evEBITDA, &eps, &bookValue,
		&revenueCAGR, &profitCAGR,
		&roe, &roa, &grossMargin, &operatingMargin,
		&debtToEquity, &debtToAsset, &currentRatio, &quickRatio,
		&dividendYield, &ocf, &fcf,
		&shares, &freeFloat, &foreign, &management, &atv,
		&npl, &llr, &rec.ScannedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Exchange = domain.Exchange(exchange)
	rec.PriceVND = domain.MetricFromPtr(priceVND)
	rec.MarketVal = domain.MetricFromPtr(marketVal)
	rec.EstVal = domain.MetricFromPtr(estVal)
	rec.PE = domain.MetricFromPtr(pe)
	rec.PB = domain.MetricFromPtr(pb)
	rec.PEG = domain.MetricFromPtr(peg)
	rec.EVEBITDA = domain.MetricFromPtr(evEBITDA)
	rec.EPS = domain.MetricFromPtr(eps)
	rec.BookValue = domain.MetricFromPtr(bookValue)
	rec.RevenueCAGR3Y = domain.MetricFromPtr(revenueCAGR)
	rec.ProfitCAGR3Y = domain.MetricFromPtr(profitCAGR)
	rec.ROE = domain.MetricFromPtr(roe)
	rec.ROA = domain.MetricFromPtr(roa)
	rec.GrossMargin = domain.MetricFromPtr(grossMargin)
	rec.OperatingMargin = domain.MetricFromPtr(operatingMargin)
	rec.DebtToEquity = domain.MetricFromPtr(debtToEquity)
	rec.DebtToAsset = domain.MetricFromPtr(debtToAsset)
	rec.CurrentRatio = domain.MetricFromPtr(currentRatio)
	rec.QuickRatio = domain.MetricFromPtr(quickRatio)
	rec.DividendYield = domain.MetricFromPtr(dividendYield)
	rec.OperatingCashFlow = domain.MetricFromPtr(ocf)
	rec.FreeCashFlow = domain.MetricFromPtr(fcf)
	rec.SharesOutstanding = domain.MetricFromPtr(shares)
	rec.FreeFloat = domain.MetricFromPtr(freeFloat)
	rec.ForeignOwnership = domain.MetricFromPtr(foreign)
	rec.ManagementOwnership = domain.MetricFromPtr(management)
	rec.AvgTradingValue = domain.MetricFromPtr(atv)
	rec.NPLRatio = domain.MetricFromPtr(npl)
	rec.LLR = domain.MetricFromPtr(llr)

	return &rec, nil
}
