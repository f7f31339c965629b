package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/varcalc/pkg/formulas"
)

// Transform turns prices into per-instrument log returns and the
// equal-weighted portfolio return series.
//
// The first row has no predecessor and is dropped. A row where any
// instrument's return is missing is dropped as a whole so every surviving
// row covers all instruments.
func Transform(prices *PriceTable) (*LogReturnMatrix, PortfolioReturnSeries, error) {
	if prices == nil || prices.Width() == 0 {
		return nil, PortfolioReturnSeries{}, fmt.Errorf("%w: price table has no instruments", ErrInvalidInput)
	}
	if prices.Len() < 2 {
		return nil, PortfolioReturnSeries{}, fmt.Errorf("%w: need at least 2 price rows, got %d", ErrInsufficientData, prices.Len())
	}
	if err := checkPrices(prices); err != nil {
		return nil, PortfolioReturnSeries{}, err
	}

	n := prices.Width()
	returns := &LogReturnMatrix{
		tickers: prices.Tickers(),
		dates:   make([]time.Time, 0, prices.Len()-1),
		values:  make([][]float64, 0, prices.Len()-1),
	}

	for t := 1; t < prices.Len(); t++ {
		row := make([]float64, n)
		complete := true
		for j := 0; j < n; j++ {
			r := formulas.LogReturn(prices.At(t-1, j), prices.At(t, j))
			if math.IsNaN(r) {
				complete = false
				break
			}
			row[j] = r
		}
		if !complete {
			continue
		}
		returns.dates = append(returns.dates, prices.dates[t])
		returns.values = append(returns.values, row)
	}

	if returns.Len() < 2 {
		return nil, PortfolioReturnSeries{}, fmt.Errorf("%w: only %d complete return rows after dropping gaps", ErrInsufficientData, returns.Len())
	}

	return returns, returns.Weighted(EqualWeights(n)), nil
}

func checkPrices(prices *PriceTable) error {
	for i := 0; i < prices.Len(); i++ {
		for j := 0; j < prices.Width(); j++ {
			p := prices.At(i, j)
			if math.IsNaN(p) {
				continue
			}
			if p <= 0 || math.IsInf(p, 0) {
				return fmt.Errorf("%w: price %v for %s on %s must be positive and finite",
					ErrInvalidInput, p, prices.tickers[j], prices.dates[i].Format(DateLayout))
			}
		}
	}
	return nil
}
