package indicator

import (
	"maps"
	"math"
	"slices"

	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// Pipeline appends the columns of a fixed, ordered set of indicators to a series.
type Pipeline struct {
	indicators []Indicator
}

// NewPipeline creates a pipeline running indicators in order.
func NewPipeline(indicators ...Indicator) *Pipeline {
	return &Pipeline{indicators: indicators}
}

// NewPipelineFromRegistry builds a pipeline of the named indicators in the given order.
// With no names, every indicator in types.AllIndicatorTypes is used.
func NewPipelineFromRegistry(registry IndicatorRegistry, names ...types.IndicatorType) (*Pipeline, error) {
	if len(names) == 0 {
		names = types.AllIndicatorTypes
	}

	indicators := make([]Indicator, 0, len(names))

	for _, name := range names {
		indicator, err := registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		indicators = append(indicators, indicator)
	}

	return NewPipeline(indicators...), nil
}

// DefaultPipeline runs momentum, trend, volatility and volume indicators with default settings.
func DefaultPipeline() *Pipeline {
	// the default registry holds every type in AllIndicatorTypes
	pipeline, _ := NewPipelineFromRegistry(NewDefaultRegistry())

	return pipeline
}

// Columns returns every column the pipeline appends, in order.
func (p *Pipeline) Columns() []string {
	var columns []string
	for _, indicator := range p.indicators {
		columns = append(columns, indicator.Columns()...)
	}

	return columns
}

// Lookback returns the longest warm-up of any indicator in the pipeline.
func (p *Pipeline) Lookback() int {
	lookback := 0
	for _, indicator := range p.indicators {
		lookback = max(lookback, indicator.Lookback())
	}

	return lookback
}

// AddAllIndicators returns a copy of series with every indicator column appended.
// The input series is not modified. Warm-up cells are NaN.
// It fails with IndicatorsUnavailable when the series is shorter than an indicator needs,
// and with IndicatorCalculation when an indicator fails.
func (p *Pipeline) AddAllIndicators(series types.Series) (out types.Series, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = types.Series{}
			err = errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator calculation panicked for %s: %v", series.Symbol, r)
		}
	}()

	n := series.Len()
	input := NewInput(series)

	bars := make([]types.Bar, n)
	for i, bar := range series.Bars {
		bar.Indicators = maps.Clone(bar.Indicators)
		if bar.Indicators == nil {
			bar.Indicators = make(map[string]float64)
		}

		bars[i] = bar
	}

	columns := make([]string, 0, len(series.Indicators)+len(p.Columns()))
	columns = append(columns, series.Indicators...)

	for _, indicator := range p.indicators {
		if n <= indicator.Lookback() {
			return types.Series{}, errors.Newf(errors.ErrCodeIndicatorsUnavailable,
				"%s needs more than %d bars, %s has %d", indicator.Name(), indicator.Lookback(), series.Symbol, n)
		}

		values, err := indicator.Compute(input)
		if err != nil {
			return types.Series{}, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s for %s", indicator.Name(), series.Symbol)
		}

		names := indicator.Columns()
		if len(values) != len(names) {
			return types.Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation,
				"%s produced %d columns, expected %d", indicator.Name(), len(values), len(names))
		}

		for c, name := range names {
			if len(values[c]) != n {
				return types.Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation,
					"%s column %s has %d values, expected %d", indicator.Name(), name, len(values[c]), n)
			}

			for i := range bars {
				if i < indicator.Lookback() {
					bars[i].Indicators[name] = math.NaN()

					continue
				}

				bars[i].Indicators[name] = values[c][i]
			}
		}

		columns = append(columns, names...)
	}

	return types.Series{
		Symbol:     series.Symbol,
		Indicators: columns,
		Bars:       bars,
	}, nil
}

// PadIndicators returns a copy of series declaring columns it could not compute.
// The missing cells read as NaN so the series keeps the same width as its peers.
func PadIndicators(series types.Series, columns []string) types.Series {
	out := series
	out.Indicators = make([]string, 0, len(series.Indicators)+len(columns))
	out.Indicators = append(out.Indicators, series.Indicators...)

	for _, column := range columns {
		if !slices.Contains(series.Indicators, column) {
			out.Indicators = append(out.Indicators, column)
		}
	}

	return out
}
