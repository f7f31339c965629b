package prices

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/varcalc/internal/database"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/rs/zerolog"
)

// Repository stores fetched closes in the prices database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a repository on a migrated prices database
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "prices").Logger(),
	}
}

// IsCovered reports whether [start, end) for ticker was fetched before
func (r *Repository) IsCovered(ctx context.Context, ticker string, start, end time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM fetch_log
		WHERE ticker = ? AND start_date <= ? AND end_date >= ?`,
		ticker, start.Format(risk.DateLayout), end.Format(risk.DateLayout),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check fetch log for %s: %w", ticker, err)
	}
	return count > 0, nil
}

// LoadCloses returns the cached closes for ticker in [start, end), oldest first
func (r *Repository) LoadCloses(ctx context.Context, ticker string, start, end time.Time) ([]Observation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, adj_close FROM daily_prices
		WHERE ticker = ? AND date >= ? AND date < ?
		ORDER BY date ASC`,
		ticker, start.Format(risk.DateLayout), end.Format(risk.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var date string
		var o Observation
		if err := rows.Scan(&date, &o.Close); err != nil {
			return nil, fmt.Errorf("failed to scan cached price for %s: %w", ticker, err)
		}
		if o.Date, err = time.Parse(risk.DateLayout, date); err != nil {
			return nil, fmt.Errorf("cached price for %s has invalid date %q: %w", ticker, date, err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached prices for %s: %w", ticker, err)
	}
	return obs, nil
}

// StoreCloses upserts closes for ticker. When covered is set the range is
// logged so later requests inside it are served from the cache.
func (r *Repository) StoreCloses(ctx context.Context, ticker string, start, end time.Time, obs []Observation, covered bool) error {
	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices (ticker, date, adj_close, fetched_at)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare price insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range obs {
			if _, err := stmt.ExecContext(ctx, ticker, o.Date.Format(risk.DateLayout), o.Close, now); err != nil {
				return fmt.Errorf("failed to store price for %s on %s: %w", ticker, o.Date.Format(risk.DateLayout), err)
			}
		}

		if !covered {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO fetch_log (ticker, start_date, end_date, fetched_at)
			VALUES (?, ?, ?, ?)`,
			ticker, start.Format(risk.DateLayout), end.Format(risk.DateLayout), now)
		if err != nil {
			return fmt.Errorf("failed to log fetch for %s: %w", ticker, err)
		}
		return nil
	})
}
