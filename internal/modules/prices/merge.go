// Package prices provides price sources that feed the risk engine.
package prices

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
)

// Observation is one adjusted close of one instrument
type Observation struct {
	Date  time.Time
	Close float64
}

// Merge outer-joins per-ticker observations on date. Dates missing for a
// ticker become NaN cells; columns follow the order of tickers. A ticker
// with no observations at all fails with ErrDataUnavailable.
func Merge(tickers []string, series map[string][]Observation) (*risk.PriceTable, error) {
	index := make(map[int64]int)
	var dates []time.Time
	for _, ticker := range tickers {
		obs := series[ticker]
		if len(obs) == 0 {
			return nil, fmt.Errorf("%w: no prices for %s", risk.ErrDataUnavailable, ticker)
		}
		for _, o := range obs {
			day := risk.TruncateDay(o.Date)
			if _, ok := index[day.Unix()]; !ok {
				index[day.Unix()] = -1
				dates = append(dates, day)
			}
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, d := range dates {
		index[d.Unix()] = i
	}

	values := make([][]float64, len(dates))
	for i := range values {
		values[i] = make([]float64, len(tickers))
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}
	for j, ticker := range tickers {
		for _, o := range series[ticker] {
			values[index[risk.TruncateDay(o.Date).Unix()]][j] = o.Close
		}
	}

	return risk.NewPriceTable(tickers, dates, values)
}

// checkRange rejects an empty or inverted date range
func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return fmt.Errorf("%w: invalid date range %s to %s", risk.ErrInvalidInput,
			start.Format(risk.DateLayout), end.Format(risk.DateLayout))
	}
	return nil
}

// inRange reports whether day falls in [start, end)
func inRange(day, start, end time.Time) bool {
	return !day.Before(start) && day.Before(end)
}
