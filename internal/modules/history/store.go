// Package history keeps an append-only record of completed VaR runs.
package history

import (
	"github.com/aristath/varcalc/internal/modules/risk"
)

// Store is the append-only run history consumed by the risk service.
type Store = risk.HistoryStore

func copyResult(r risk.Result) risk.Result {
	r.Inputs.Tickers = append([]string(nil), r.Inputs.Tickers...)
	r.RollingReturns.Dates = append(r.RollingReturns.Dates[:0:0], r.RollingReturns.Dates...)
	r.RollingReturns.Values = append([]float64(nil), r.RollingReturns.Values...)
	return r
}
