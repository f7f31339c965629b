package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// rollingBlob is the msgpack layout of a stored rolling series
type rollingBlob struct {
	Window int       `msgpack:"w"`
	Dates  []int64   `msgpack:"d"` // Unix seconds
	Values []float64 `msgpack:"v"`
}

// SQLiteStore persists runs in the history database (var_runs table)
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteStore creates a store on a migrated history database
func NewSQLiteStore(db *sql.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Append inserts a run. IDs are unique; re-appending an ID fails.
func (s *SQLiteStore) Append(ctx context.Context, result risk.Result) error {
	blob, err := encodeRolling(result.RollingReturns)
	if err != nil {
		return fmt.Errorf("failed to encode rolling returns: %w", err)
	}

	in := result.Inputs
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO var_runs (
			id, created_at, tickers, start_date, end_date, rolling_window,
			confidence_level, portfolio_value, historical_var, parametric_var,
			horizon_days, rolling_returns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.CreatedAt.UnixMilli(),
		strings.Join(in.Tickers, " "),
		in.StartDate.Format(risk.DateLayout),
		in.EndDate.Format(risk.DateLayout),
		in.RollingWindow,
		in.ConfidenceLevel,
		in.PortfolioValue,
		result.Historical.Value,
		result.Parametric.Value,
		result.Parametric.HorizonDays,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.ID, err)
	}

	s.log.Debug().Str("run_id", result.ID).Msg("Recorded VaR run")
	return nil
}

// Recent returns up to limit runs, newest first
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]risk.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, tickers, start_date, end_date, rolling_window,
		       confidence_level, portfolio_value, historical_var, parametric_var,
		       horizon_days, rolling_returns
		FROM var_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	results := make([]risk.Result, 0, min(limit, risk.DefaultHistoryLimit))
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run history: %w", err)
	}
	return results, nil
}

func scanResult(rows *sql.Rows) (risk.Result, error) {
	var (
		r                  risk.Result
		createdAt          int64
		tickers            string
		startDate, endDate string
		horizon            int
		blob               []byte
	)
	err := rows.Scan(
		&r.ID, &createdAt, &tickers, &startDate, &endDate, &r.Inputs.RollingWindow,
		&r.Inputs.ConfidenceLevel, &r.Inputs.PortfolioValue,
		&r.Historical.Value, &r.Parametric.Value, &horizon, &blob,
	)
	if err != nil {
		return risk.Result{}, fmt.Errorf("failed to scan run: %w", err)
	}

	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.Inputs.Tickers = strings.Fields(tickers)
	if r.Inputs.StartDate, err = time.Parse(risk.DateLayout, startDate); err != nil {
		return risk.Result{}, fmt.Errorf("run %s has invalid start date: %w", r.ID, err)
	}
	if r.Inputs.EndDate, err = time.Parse(risk.DateLayout, endDate); err != nil {
		return risk.Result{}, fmt.Errorf("run %s has invalid end date: %w", r.ID, err)
	}

	r.Historical.Method = risk.MethodHistorical
	r.Historical.ConfidenceLevel = r.Inputs.ConfidenceLevel
	r.Historical.HorizonDays = r.Inputs.RollingWindow
	r.Parametric.Method = risk.MethodParametric
	r.Parametric.ConfidenceLevel = r.Inputs.ConfidenceLevel
	r.Parametric.HorizonDays = horizon

	if r.RollingReturns, err = decodeRolling(blob); err != nil {
		return risk.Result{}, fmt.Errorf("run %s has invalid rolling returns: %w", r.ID, err)
	}
	return r, nil
}

func encodeRolling(series risk.RollingReturnSeries) ([]byte, error) {
	blob := rollingBlob{
		Window: series.Window,
		Dates:  make([]int64, len(series.Dates)),
		Values: series.Values,
	}
	for i, d := range series.Dates {
		blob.Dates[i] = d.Unix()
	}
	return msgpack.Marshal(&blob)
}

func decodeRolling(data []byte) (risk.RollingReturnSeries, error) {
	var blob rollingBlob
	if err := msgpack.Unmarshal(data, &blob); err != nil {
		return risk.RollingReturnSeries{}, err
	}

	series := risk.RollingReturnSeries{
		Window: blob.Window,
		Dates:  make([]time.Time, len(blob.Dates)),
		Values: blob.Values,
	}
	for i, d := range blob.Dates {
		series.Dates[i] = time.Unix(d, 0).UTC()
	}
	return series, nil
}
