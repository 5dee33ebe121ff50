package environment

import (
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/indicator"
)

const (
	// DefaultTrendScale maps ADX readings (0-100) onto [0, 1].
	DefaultTrendScale = 100.0
	// VolatilityColumn is read as the bar volatility when present.
	VolatilityColumn = "volatility"
	// rewardEpsilon keeps the reward finite when the previous value is zero.
	rewardEpsilon = 1e-8
)

// Option configures an Environment.
type Option func(*Environment)

// WithSink routes environment and portfolio events to sink.
func WithSink(sink events.Sink) Option {
	return func(e *Environment) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithTrendColumn selects the bar column read as trend strength and the divisor that maps it onto [0, 1].
func WithTrendColumn(column string, scale float64) Option {
	return func(e *Environment) {
		e.trendColumn = column
		if scale > 0 {
			e.trendScale = scale
		}
	}
}

// WithMaxDrawdown halts trading once the portfolio falls maxDrawdown (a fraction) below its peak.
// Zero disables the check.
func WithMaxDrawdown(maxDrawdown float64) Option {
	return func(e *Environment) {
		if maxDrawdown > 0 {
			e.maxDrawdown = maxDrawdown
		}
	}
}

func defaultOptions() []Option {
	return []Option{
		WithTrendColumn(indicator.ADXColumn, DefaultTrendScale),
	}
}
