// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/joho/godotenv"
)

// Price sources
const (
	SourceYahoo = "yahoo"
	SourceCSV   = "csv"
)

// History backends
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for all databases (always absolute)
	LogLevel        string
	Port            int
	DevMode         bool
	PriceSource     string
	PriceCSVPath    string
	PriceCache      bool // Cache fetched prices in SQLite
	HistoryBackend  string
	YahooMaxRetries int
	Defaults        RunDefaults
}

// RunDefaults are applied to zero fields of incoming requests
type RunDefaults struct {
	Tickers         string
	StartDate       string
	RollingWindow   int
	ConfidenceLevel float64
	PortfolioValue  float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("VAR_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PriceSource:     strings.ToLower(getEnv("PRICE_SOURCE", SourceYahoo)),
		PriceCSVPath:    getEnv("PRICE_CSV_PATH", ""),
		PriceCache:      getEnvAsBool("PRICE_CACHE", true),
		HistoryBackend:  strings.ToLower(getEnv("HISTORY_BACKEND", BackendSQLite)),
		YahooMaxRetries: getEnvAsInt("YAHOO_MAX_RETRIES", 3),
		Defaults: RunDefaults{
			Tickers:         getEnv("DEFAULT_TICKERS", "AAPL MSFT GOOG"),
			StartDate:       getEnv("DEFAULT_START_DATE", "2020-01-01"),
			RollingWindow:   getEnvAsInt("DEFAULT_ROLLING_WINDOW", 20),
			ConfidenceLevel: getEnvAsFloat("DEFAULT_CONFIDENCE_LEVEL", 0.95),
			PortfolioValue:  getEnvAsFloat("DEFAULT_PORTFOLIO_VALUE", 100000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.PriceSource {
	case SourceYahoo:
	case SourceCSV:
		if c.PriceCSVPath == "" {
			return fmt.Errorf("PRICE_CSV_PATH is required when PRICE_SOURCE=%s", SourceCSV)
		}
	default:
		return fmt.Errorf("unknown PRICE_SOURCE %q", c.PriceSource)
	}

	switch c.HistoryBackend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT out of range: %d", c.Port)
	}

	if _, err := c.DefaultParameters(); err != nil {
		return fmt.Errorf("invalid run defaults: %w", err)
	}
	return nil
}

// DefaultParameters converts the run defaults into risk parameters. The end
// date is left zero and resolved per request.
func (c *Config) DefaultParameters() (risk.Parameters, error) {
	start, err := risk.ParseDate(c.Defaults.StartDate)
	if err != nil {
		return risk.Parameters{}, fmt.Errorf("DEFAULT_START_DATE: %w", err)
	}

	tickers := risk.ParseTickers(c.Defaults.Tickers)
	if len(tickers) == 0 {
		return risk.Parameters{}, fmt.Errorf("DEFAULT_TICKERS must not be empty")
	}

	return risk.Parameters{
		Tickers:         tickers,
		StartDate:       start,
		RollingWindow:   c.Defaults.RollingWindow,
		ConfidenceLevel: c.Defaults.ConfidenceLevel,
		PortfolioValue:  c.Defaults.PortfolioValue,
	}, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
