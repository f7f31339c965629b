// Package yahoo fetches daily price history from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// DailyClose is one trading day of a symbol
type DailyClose struct {
	Date     time.Time // Calendar date, midnight UTC
	Close    float64
	AdjClose float64
}

// historyFunc loads bars for one symbol
type historyFunc func(symbol string, params models.HistoryParams) ([]models.Bar, error)

// Client fetches daily bars through go-yfinance with retries
type Client struct {
	log        zerolog.Logger
	maxRetries int
	fetch      historyFunc
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Yahoo Finance client. maxRetries < 1 means 3.
func NewClient(log zerolog.Logger, maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &Client{
		log:        log.With().Str("client", "yahoo").Logger(),
		maxRetries: maxRetries,
		fetch:      fetchHistory,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// GetDailyCloses returns unadjusted and adjusted closes for symbol on
// trading days in [start, end), oldest first.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]DailyClose, error) {
	params := models.HistoryParams{
		Period:     periodFor(start, c.now()),
		Interval:   "1d",
		AutoAdjust: false,
	}

	var bars []models.Bar
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, lastErr = c.fetch(symbol, params)
		if lastErr == nil {
			break
		}

		if attempt < c.maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn().Err(lastErr).Str("symbol", symbol).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Retrying")
			if err := c.sleep(ctx, waitTime); err != nil {
				return nil, err
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to get historical prices for %s after %d attempts: %w", symbol, c.maxRetries, lastErr)
	}

	closes := make([]DailyClose, 0, len(bars))
	for _, bar := range bars {
		day := truncateDay(bar.Date)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		closes = append(closes, DailyClose{Date: day, Close: bar.Close, AdjClose: bar.AdjClose})
	}
	sort.Slice(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })

	c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Int("in_range", len(closes)).Msg("Fetched daily history")
	return closes, nil
}

func fetchHistory(symbol string, params models.HistoryParams) ([]models.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return bars, nil
}

// periods are the lookback windows Yahoo accepts, shortest first
var periods = []struct {
	name string
	span time.Duration
}{
	{"1mo", 31 * 24 * time.Hour},
	{"3mo", 92 * 24 * time.Hour},
	{"6mo", 183 * 24 * time.Hour},
	{"1y", 366 * 24 * time.Hour},
	{"2y", 731 * 24 * time.Hour},
	{"5y", 1827 * 24 * time.Hour},
	{"10y", 3653 * 24 * time.Hour},
}

// periodFor picks the shortest lookback from now that reaches start
func periodFor(start, now time.Time) string {
	need := now.Sub(start)
	for _, p := range periods {
		if need <= p.span {
			return p.name
		}
	}
	return "max"
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
