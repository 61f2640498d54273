package screen

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/crownwell/vnscreener/internal/domain"
)

// csvHeader fixes the export column order. Undefined metrics render
// as empty cells.
var csvHeader = []string{
	"symbol",
	"price_vnd",
	"pe",
	"pb",
	"roe",
	"roa",
	"market_cap",
	"free_float",
	"foreign_ownership",
	"management_ownership",
	"outstanding_shares",
	"avg_trading_value",
}

// WriteCSV writes records in the fixed export layout.
func WriteCSV(w io.Writer, records []*domain.ResolvedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Ticker,
			cell(r.PriceVND),
			cell(r.PE),
			cell(r.PB),
			cell(r.ROE),
			cell(r.ROA),
			cell(r.MarketVal),
			cell(r.FreeFloat),
			cell(r.ForeignOwnership),
			cell(r.ManagementOwnership),
			cell(r.SharesOutstanding),
			cell(r.AvgTradingValue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(m domain.Metric) string {
	v, ok := m.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
