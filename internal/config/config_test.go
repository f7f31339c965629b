package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("VAR_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, SourceYahoo, cfg.PriceSource)
	assert.Equal(t, BackendSQLite, cfg.HistoryBackend)
	assert.True(t, cfg.PriceCache)
	assert.Equal(t, 3, cfg.YahooMaxRetries)
	assert.Equal(t, 20, cfg.Defaults.RollingWindow)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VAR_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "9100")
	t.Setenv("PRICE_SOURCE", "CSV")
	t.Setenv("PRICE_CSV_PATH", "/tmp/prices.csv")
	t.Setenv("PRICE_CACHE", "false")
	t.Setenv("HISTORY_BACKEND", "memory")
	t.Setenv("DEFAULT_CONFIDENCE_LEVEL", "0.99")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, SourceCSV, cfg.PriceSource)
	assert.False(t, cfg.PriceCache)
	assert.Equal(t, BackendMemory, cfg.HistoryBackend)
	assert.Equal(t, 0.99, cfg.Defaults.ConfidenceLevel)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("VAR_DATA_DIR", t.TempDir())
	t.Setenv("DEFAULT_ROLLING_WINDOW", "twenty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Defaults.RollingWindow)
}

func validConfig() *Config {
	return &Config{
		Port:           8001,
		PriceSource:    SourceYahoo,
		HistoryBackend: BackendSQLite,
		Defaults: RunDefaults{
			Tickers:         "AAPL MSFT",
			StartDate:       "2020-01-01",
			RollingWindow:   20,
			ConfidenceLevel: 0.95,
			PortfolioValue:  100000,
		},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown source", func(c *Config) { c.PriceSource = "bloomberg" }, "unknown PRICE_SOURCE"},
		{"csv without path", func(c *Config) { c.PriceSource = SourceCSV }, "PRICE_CSV_PATH is required"},
		{"unknown backend", func(c *Config) { c.HistoryBackend = "redis" }, "unknown HISTORY_BACKEND"},
		{"bad port", func(c *Config) { c.Port = 0 }, "GO_PORT out of range"},
		{"bad start date", func(c *Config) { c.Defaults.StartDate = "2020/01/01" }, "DEFAULT_START_DATE"},
		{"empty tickers", func(c *Config) { c.Defaults.Tickers = " , " }, "DEFAULT_TICKERS"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDefaultParameters(t *testing.T) {
	params, err := validConfig().DefaultParameters()
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, params.Tickers)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), params.StartDate)
	assert.True(t, params.EndDate.IsZero())
	assert.Equal(t, 20, params.RollingWindow)
}
