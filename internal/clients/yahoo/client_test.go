package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnjoon/go-yfinance/pkg/models"
)

func newTestClient(fetch historyFunc) (*Client, *[]time.Duration) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	c := NewClient(log, 3)
	c.fetch = fetch
	c.now = func() time.Time { return time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC) }

	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func bar(y int, m time.Month, d int, closeP, adj float64) models.Bar {
	// Yahoo stamps daily bars at the exchange open, not midnight.
	return models.Bar{Date: time.Date(y, m, d, 13, 30, 0, 0, time.UTC), Close: closeP, AdjClose: adj}
}

func TestNewClient(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	client := NewClient(log, 0)

	assert.NotNil(t, client)
	assert.Equal(t, 3, client.maxRetries)
}

func TestGetDailyCloses_FiltersRangeAndUsesAdjustedClose(t *testing.T) {
	var gotParams models.HistoryParams
	client, _ := newTestClient(func(symbol string, params models.HistoryParams) ([]models.Bar, error) {
		assert.Equal(t, "AAPL", symbol)
		gotParams = params
		return []models.Bar{
			bar(2024, 1, 4, 181.9, 180.9),
			bar(2023, 12, 29, 192.5, 191.6),
			bar(2024, 1, 2, 185.6, 184.7),
			bar(2024, 1, 3, 184.3, 183.3),
		}, nil
	})

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	closes, err := client.GetDailyCloses(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	assert.False(t, gotParams.AutoAdjust)
	assert.Equal(t, "1d", gotParams.Interval)
	assert.Equal(t, "6mo", gotParams.Period)

	require.Len(t, closes, 2)
	assert.Equal(t, start, closes[0].Date)
	assert.Equal(t, 184.7, closes[0].AdjClose)
	assert.Equal(t, 185.6, closes[0].Close)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), closes[1].Date)
}

func TestGetDailyCloses_RetriesWithBackoff(t *testing.T) {
	calls := 0
	client, waits := newTestClient(func(symbol string, params models.HistoryParams) ([]models.Bar, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rate limited")
		}
		return []models.Bar{bar(2024, 1, 2, 1, 1)}, nil
	})

	closes, err := client.GetDailyCloses(context.Background(), "MSFT",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, closes, 1)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestGetDailyCloses_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	client, _ := newTestClient(func(symbol string, params models.HistoryParams) ([]models.Bar, error) {
		calls++
		return nil, errors.New("unavailable")
	})

	_, err := client.GetDailyCloses(context.Background(), "GOOG",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestGetDailyCloses_StopsOnCancelledContext(t *testing.T) {
	client, _ := newTestClient(func(symbol string, params models.HistoryParams) ([]models.Bar, error) {
		t.Fatal("fetch must not be called")
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetDailyCloses(ctx, "AAPL", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPeriodFor(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		start    time.Time
		expected string
	}{
		{now.AddDate(0, 0, -10), "1mo"},
		{now.AddDate(0, -2, 0), "3mo"},
		{now.AddDate(-1, 0, 0), "1y"},
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "5y"},
		{time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), "10y"},
		{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), "max"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, periodFor(tc.start, now))
		})
	}
}
