package risk

import (
	"context"
	"time"
)

// PriceSource supplies adjusted closing prices. Columns of the returned
// table follow the order of tickers. end is exclusive.
type PriceSource interface {
	FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error)
}

// HistoryStore is the append-only record of completed runs.
type HistoryStore interface {
	Append(ctx context.Context, result Result) error
	Recent(ctx context.Context, limit int) ([]Result, error)
}

// MetricsRecorder observes run outcomes.
type MetricsRecorder interface {
	RunSucceeded(duration time.Duration, estimates Estimates)
	RunFailed(kind string, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RunSucceeded(time.Duration, Estimates) {}
func (nopMetrics) RunFailed(string, time.Duration)       {}
