package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
)

// ParquetMarketDataProvider serves bars from a Parquet file written by the download command.
// Bars are resampled to the requested timeframe, so a 1m file can feed a 1h session.
type ParquetMarketDataProvider struct {
	db      *sql.DB
	sq      squirrel.StatementBuilderType
	path    string
	symbols []string
}

// NewParquetMarketDataProvider opens an in-memory DuckDB database with a view over the file at path.
// symbols restricts GetActiveSymbols to a watchlist; empty uses every symbol in the file.
func NewParquetMarketDataProvider(path string, symbols []string) (*ParquetMarketDataProvider, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "data path is required by the file provider")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "cannot read market data file %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to open DuckDB connection", err)
	}

	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM read_parquet('%s')`, strings.ReplaceAll(path, "'", "''"))
	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to load %s", path)
	}

	return &ParquetMarketDataProvider{
		db:      db,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		path:    path,
		symbols: symbols,
	}, nil
}

// GetActiveSymbols returns the symbols whose volume over the last day of the file is at least minVolume.
func (p *ParquetMarketDataProvider) GetActiveSymbols(ctx context.Context, minVolume float64) ([]string, error) {
	query := p.sq.Select("symbol").
		From("bars").
		Where("time > (SELECT max(time) FROM bars) - INTERVAL 1 DAY").
		GroupBy("symbol").
		Having(squirrel.GtOrEq{"sum(volume)": minVolume}).
		OrderBy("symbol")

	if len(p.symbols) > 0 {
		query = query.Where(squirrel.Eq{"symbol": p.symbols})
	}

	rows, err := query.RunWith(p.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to query active symbols", err)
	}
	defer rows.Close()

	symbols := []string{}

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to iterate symbols", err)
	}

	return symbols, nil
}

// FetchHistoricalData returns the latest limit bars of symbol, resampled to timeframe.
// The indicators of a resampled bar are those of its last source bar.
func (p *ParquetMarketDataProvider) FetchHistoricalData(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]types.Bar, error) {
	if err := validateFetch(symbol, timeframe, limit); err != nil {
		return nil, err
	}

	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d seconds', time)", int64(timeframe.Duration()/time.Second))

	rows, err := p.sq.Select(
		bucket+" AS bucket",
		"arg_min(open, time)",
		"max(high)",
		"min(low)",
		"arg_max(close, time)",
		"sum(volume)",
		"arg_max(indicators, time)",
	).
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		GroupBy("bucket").
		OrderBy("bucket DESC").
		Limit(uint64(limit)).
		RunWith(p.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var (
			bar        types.Bar
			indicators sql.NullString
		)

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &indicators); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to scan bar for %s", symbol)
		}

		bar.Symbol = symbol

		if indicators.Valid && indicators.String != "" && indicators.String != "{}" {
			if err := json.Unmarshal([]byte(indicators.String), &bar.Indicators); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid indicators for %s at %s", symbol, bar.Time)
			}
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to iterate bars for %s", symbol)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeUnsupportedSymbol, "symbol %s not found in %s", symbol, p.path)
	}

	slices.Reverse(bars)

	return bars, nil
}

// Close releases the DuckDB connection.
func (p *ParquetMarketDataProvider) Close() error {
	return p.db.Close()
}
