package session

import (
	"context"
	"maps"
	"slices"

	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/indicator"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

// minBars is the shortest series an environment accepts.
const minBars = 2

// Prepare selects the active symbols, fetches their history and appends indicators.
func Prepare(ctx context.Context, cfg *config.Config, opts ...Option) (*Dataset, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeMissingConfiguration, "configuration is required")
	}

	o, err := resolve(cfg, opts)
	if err != nil {
		return nil, err
	}
	defer o.release()

	return prepare(ctx, cfg, o)
}

func prepare(ctx context.Context, cfg *config.Config, o *options) (*Dataset, error) {
	symbols, err := o.provider.GetActiveSymbols(ctx, cfg.Environment.MinVolume)
	if err != nil {
		return nil, err
	}

	if len(symbols) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoActiveSymbols, "no symbol trades at least %g", cfg.Environment.MinVolume)
	}

	raw, err := fetchAll(ctx, cfg, o, symbols)
	if err != nil {
		return nil, err
	}

	raw = alignLengths(raw)

	dataset := &Dataset{}

	for _, series := range raw {
		withIndicators, err := o.pipeline.AddAllIndicators(series)
		if err != nil {
			withIndicators = indicator.PadIndicators(series, o.pipeline.Columns())
			dataset.Degraded = append(dataset.Degraded, series.Symbol)

			event := events.New(events.TypeIndicatorsUnavailable, events.LevelWarn, "indicators unavailable, continuing with raw bars")
			event.Symbol = series.Symbol
			event.Err = err
			o.sink.Emit(event)
		}

		dataset.Symbols = append(dataset.Symbols, series.Symbol)
		dataset.Series = append(dataset.Series, withIndicators)
	}

	// simulated bars carry a trend strength in [0, 1]; prefer it when ADX is not computed
	if !slices.Contains(o.pipeline.Columns(), indicator.ADXColumn) && hasColumn(dataset.Series, provider.ColumnTrendStrength) {
		dataset.TrendColumn = provider.ColumnTrendStrength
		dataset.TrendScale = 1
	}

	return dataset, nil
}

// fetchAll fetches every symbol in order. Symbols the provider cannot serve are
// skipped; any other failure aborts.
func fetchAll(ctx context.Context, cfg *config.Config, o *options, symbols []string) ([]types.Series, error) {
	var out []types.Series

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, err := o.provider.FetchHistoricalData(ctx, symbol, cfg.Environment.Timeframe, cfg.Environment.DataLimit)
		if err != nil {
			if !errors.HasCode(err, errors.ErrCodeUnsupportedSymbol) {
				return nil, err
			}

			skip(o.sink, symbol, "symbol not supported by the provider", err)

			continue
		}

		if len(bars) < minBars {
			skip(o.sink, symbol, "not enough bars", errors.Newf(errors.ErrCodeMissingBarAtStep, "%s returned %d bars", symbol, len(bars)))

			continue
		}

		out = append(out, types.Series{
			Symbol:     symbol,
			Indicators: commonColumns(bars),
			Bars:       bars,
		})
	}

	if len(out) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoActiveSymbols, "none of %d active symbols returned usable data", len(symbols))
	}

	return out, nil
}

func skip(sink events.Sink, symbol, message string, err error) {
	event := events.New(events.TypeSymbolSkipped, events.LevelWarn, message)
	event.Symbol = symbol
	event.Err = err
	sink.Emit(event)
}

// commonColumns returns the indicator columns every bar carries, sorted by name.
func commonColumns(bars []types.Bar) []string {
	if len(bars) == 0 || len(bars[0].Indicators) == 0 {
		return nil
	}

	columns := slices.Sorted(maps.Keys(bars[0].Indicators))

	return slices.DeleteFunc(columns, func(column string) bool {
		for _, bar := range bars[1:] {
			if _, ok := bar.Indicators[column]; !ok {
				return true
			}
		}

		return false
	})
}

// alignLengths trims every series to the shortest one, keeping the most recent bars.
func alignLengths(all []types.Series) []types.Series {
	shortest := all[0].Len()
	for _, series := range all[1:] {
		shortest = min(shortest, series.Len())
	}

	out := make([]types.Series, len(all))
	for i, series := range all {
		series.Bars = series.Bars[series.Len()-shortest:]
		out[i] = series
	}

	return out
}

func hasColumn(all []types.Series, column string) bool {
	for _, series := range all {
		if !slices.Contains(series.Indicators, column) {
			return false
		}
	}

	return len(all) > 0
}
