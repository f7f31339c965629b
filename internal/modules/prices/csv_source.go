package prices

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// dateColumn is the required date column of a price CSV
const dateColumn = "Date"

// missingTokens are the only cells read as missing prices
var missingTokens = []string{"", "NA", "NaN", "nan", "null"}

// ReadCSV parses a price table with a Date column (YYYY-MM-DD) followed by
// one column of adjusted closes per ticker. Empty or NA cells are missing.
//
//	Date,AAPL,MSFT
//	2024-01-02,184.73,368.51
//	2024-01-03,183.35,
func ReadCSV(r io.Reader) (*risk.PriceTable, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.NaNValues(missingTokens),
		dataframe.WithTypes(map[string]series.Type{dateColumn: series.String}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: failed to parse price CSV: %v", risk.ErrInvalidInput, df.Err)
	}

	var tickers []string
	hasDate := false
	for _, name := range df.Names() {
		if name == dateColumn {
			hasDate = true
			continue
		}
		tickers = append(tickers, strings.TrimSpace(name))
	}
	if !hasDate {
		return nil, fmt.Errorf("%w: price CSV has no %s column", risk.ErrInvalidInput, dateColumn)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: price CSV has no ticker columns", risk.ErrInvalidInput)
	}

	columns := make([][]float64, 0, len(tickers))
	for _, name := range df.Names() {
		if name == dateColumn {
			continue
		}
		col := df.Col(name)
		values := col.Float()
		for i, raw := range col.Records() {
			if math.IsNaN(values[i]) && !isMissing(raw) {
				return nil, fmt.Errorf("%w: price CSV row %d has invalid %s price %q", risk.ErrInvalidInput, i+1, strings.TrimSpace(name), raw)
			}
		}
		columns = append(columns, values)
	}

	type row struct {
		date   time.Time
		values []float64
	}
	records := df.Col(dateColumn).Records()
	rows := make([]row, len(records))
	for i, raw := range records {
		d, err := time.Parse(risk.DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: price CSV row %d has invalid date %q", risk.ErrInvalidInput, i+1, raw)
		}
		rows[i] = row{date: d, values: make([]float64, len(columns))}
		for j, col := range columns {
			rows[i].values[j] = col[i]
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	dates := make([]time.Time, len(rows))
	values := make([][]float64, len(rows))
	for i, r := range rows {
		if i > 0 && r.date.Equal(rows[i-1].date) {
			return nil, fmt.Errorf("%w: price CSV has duplicate date %s", risk.ErrInvalidInput, r.date.Format(risk.DateLayout))
		}
		dates[i] = r.date
		values[i] = r.values
	}

	return risk.NewPriceTable(tickers, dates, values)
}

// isMissing reports whether a cell is a declared missing value. gota
// renders missing elements as "NaN".
func isMissing(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, token := range missingTokens {
		if raw == token {
			return true
		}
	}
	return false
}

// LoadCSVFile reads a price CSV from disk into a static source
func LoadCSVFile(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price CSV: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStaticSource(table), nil
}
