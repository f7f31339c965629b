package prices

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
)

// StaticSource serves prices from a table held in memory
type StaticSource struct {
	table *risk.PriceTable
}

// NewStaticSource wraps an existing table
func NewStaticSource(table *risk.PriceTable) *StaticSource {
	return &StaticSource{table: table}
}

// FetchPrices selects the requested columns and the rows in [start, end).
// Rows where every requested column is missing are skipped.
func (s *StaticSource) FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*risk.PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	available := s.table.Tickers()
	cols := make([]int, len(tickers))
	for i, ticker := range tickers {
		cols[i] = available.Index(ticker)
		if cols[i] < 0 {
			return nil, fmt.Errorf("%w: no prices for %s", risk.ErrDataUnavailable, ticker)
		}
	}

	allDates := s.table.Dates()
	seen := make([]bool, len(tickers))
	var dates []time.Time
	var values [][]float64
	for i, d := range allDates {
		if !inRange(d, start, end) {
			continue
		}

		row := make([]float64, len(cols))
		present := false
		for j, col := range cols {
			row[j] = s.table.At(i, col)
			if !math.IsNaN(row[j]) {
				present = true
				seen[j] = true
			}
		}
		if !present {
			continue
		}
		dates = append(dates, d)
		values = append(values, row)
	}

	for j, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: no prices for %s between %s and %s", risk.ErrDataUnavailable,
				tickers[j], start.Format(risk.DateLayout), end.Format(risk.DateLayout))
		}
	}

	return risk.NewPriceTable(tickers, dates, values)
}
