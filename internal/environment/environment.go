// Package environment is the trading-step state machine: it walks a shared price
// timeline, turns actions into portfolio trades, and produces rewards and observations.
package environment

import (
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// Environment is single-threaded: Reset and Step must not be called concurrently.
// Run independent instances for parallel workloads.
type Environment struct {
	portfolio *portfolio.Portfolio
	assets    []string
	data      []types.Series
	shape     types.ObservationShape
	length    int
	sink      events.Sink

	trendColumn string
	trendScale  float64
	maxDrawdown float64

	currentStep int
	episodeID   string
}

// New validates the asset data and builds an environment positioned at step 0.
// It is the only operation that fails: every asset needs a series of the same length
// (at least two bars) and the same number of feature columns.
func New(p *portfolio.Portfolio, data []types.Series, opts ...Option) (*Environment, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeEnvironmentConstruction, "portfolio is required")
	}

	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeNoAssets, "at least one asset is required")
	}

	assets := make([]string, len(data))
	seen := make(map[string]struct{}, len(data))

	for i, series := range data {
		if series.Symbol == "" {
			return nil, errors.Newf(errors.ErrCodeEnvironmentConstruction, "asset %d has no symbol", i)
		}

		if _, dup := seen[series.Symbol]; dup {
			return nil, errors.Newf(errors.ErrCodeEnvironmentConstruction, "duplicate asset %s", series.Symbol)
		}

		seen[series.Symbol] = struct{}{}
		assets[i] = series.Symbol

		if series.Len() != data[0].Len() {
			return nil, errors.Newf(errors.ErrCodeSeriesLengthMismatch,
				"asset %s has %d bars, expected %d", series.Symbol, series.Len(), data[0].Len())
		}

		if len(series.Columns()) != len(data[0].Columns()) {
			return nil, errors.Newf(errors.ErrCodeFeatureWidthMismatch,
				"asset %s has %d feature columns, expected %d", series.Symbol, len(series.Columns()), len(data[0].Columns()))
		}
	}

	if data[0].Len() < 2 {
		return nil, errors.Newf(errors.ErrCodeEnvironmentConstruction, "at least 2 bars are required, got %d", data[0].Len())
	}

	e := &Environment{
		portfolio: p,
		assets:    assets,
		data:      data,
		length:    data[0].Len(),
		sink:      events.NewNopSink(),
		shape: types.ObservationShape{
			NumAssets:   len(data),
			NumFeatures: len(data[0].Columns()),
		},
	}

	for _, opt := range append(defaultOptions(), opts...) {
		opt(e)
	}

	p.SetSink(e.sink)

	if err := e.anchor(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironmentConstruction, "failed to value the portfolio at step 0", err)
	}

	event := events.New(events.TypeEnvironmentCreated, events.LevelInfo, "environment initialized")
	event.Fields = map[string]float64{
		"assets":           float64(e.shape.NumAssets),
		"features":         float64(e.shape.NumFeatures),
		"observation_size": float64(e.shape.Size()),
		"steps":            float64(e.length),
	}
	e.sink.Emit(event)

	return e, nil
}

// Reset reseeds slippage when a seed is given, rewinds to step 0, resets the portfolio
// and returns the initial observation.
func (e *Environment) Reset(seed optional.Option[int64]) (types.Observation, types.StepInfo) {
	if seed.IsSome() {
		e.portfolio.Seed(seed.Unwrap())
	}

	e.currentStep = 0
	e.episodeID = uuid.New().String()
	e.portfolio.Reset()

	// Step 0 closes always exist once New succeeded and the portfolio holds nothing.
	_ = e.anchor()

	obs, fallback := e.observe()
	info := e.info()
	info.ObservationFallback = fallback

	event := e.event(events.TypeEpisodeReset, events.LevelInfo, "environment reset to initial state")
	event.Info = optional.Some(info)
	e.sink.Emit(event)

	return obs, info
}

// Step advances one bar, executes the action against the new bar and returns the
// observation, reward and done flag. Per-asset failures are recorded in the info and
// never abort the step.
func (e *Environment) Step(action types.Action) types.StepResult {
	e.currentStep++

	info := types.StepInfo{}
	prices := make(map[string]float64, len(e.assets))

	for i, series := range e.data {
		bar, err := series.At(e.currentStep).Take()
		if err != nil {
			e.reject(&info, types.NewTradeFailure(series.Symbol, "", 0,
				errors.Newf(errors.ErrCodeMissingBarAtStep, "no bar for %s at step %d", series.Symbol, e.currentStep)))

			continue
		}

		prices[series.Symbol] = bar.Close
		e.portfolio.AdjustGrowthLimit(e.trendStrength(bar))
		e.trade(&info, series.Symbol, bar.Close, action.At(i))
	}

	e.portfolio.UpdatePrices(prices)

	reward, volatility, err := e.reward()
	if err != nil {
		reward = -1
		info.RewardFallback = true

		event := e.event(events.TypeRewardFallback, events.LevelError, "failed to compute reward")
		event.Reward = reward
		event.Err = err
		e.sink.Emit(event)
	}

	obs, obsFallback := e.observe()

	stepInfo := e.info()
	stepInfo.Trades = info.Trades
	stepInfo.Failures = info.Failures
	stepInfo.Volatility = volatility
	stepInfo.RewardFallback = info.RewardFallback
	stepInfo.ObservationFallback = obsFallback

	result := types.StepResult{
		Observation: obs,
		Reward:      reward,
		Done:        e.Done(),
		Truncated:   false,
		Info:        stepInfo,
	}

	event := e.event(events.TypeStepCompleted, events.LevelInfo, "step completed")
	event.Reward = reward
	event.Info = optional.Some(stepInfo)
	e.sink.Emit(event)

	return result
}

// trade turns one action signal into a buy or sell. Zero signals and zero quantities are no-ops.
func (e *Environment) trade(info *types.StepInfo, symbol string, price, signal float64) {
	if math.IsNaN(signal) || signal == 0 {
		return
	}

	signal = math.Max(-1, math.Min(1, signal))

	var (
		record   types.TradeRecord
		err      error
		side     types.PurchaseType
		quantity float64
	)

	if signal > 0 {
		side = types.PurchaseTypeBuy
		quantity = signal * e.portfolio.Balance() / price

		if quantity == 0 {
			return
		}

		record, err = e.portfolio.Buy(symbol, price, quantity)
	} else {
		side = types.PurchaseTypeSell
		quantity = -signal * e.portfolio.Holding(symbol)

		if quantity == 0 {
			return
		}

		record, err = e.portfolio.Sell(symbol, price, quantity)
	}

	if err != nil {
		failure := types.NewTradeFailure(symbol, side, quantity, err)
		e.reject(info, failure)

		return
	}

	info.Trades = append(info.Trades, record)

	event := e.event(events.TypeTradeExecuted, events.LevelInfo, "trade executed")
	event.Symbol = symbol
	event.Trade = optional.Some(record)
	e.sink.Emit(event)
}

func (e *Environment) reject(info *types.StepInfo, failure types.TradeFailure) {
	info.Failures = append(info.Failures, failure)

	event := e.event(events.TypeTradeRejected, events.LevelWarn, "action failed")
	event.Symbol = failure.Symbol
	event.Failure = optional.Some(failure)
	e.sink.Emit(event)
}

// trendStrength reads the trend column of bar scaled to [0, 1]; absent or NaN reads as 0.
func (e *Environment) trendStrength(bar types.Bar) float64 {
	raw := bar.Value(e.trendColumn).TakeOr(0)

	return portfolio.ClampUnit(raw / e.trendScale)
}

// anchor measures the portfolio at the current step's closes and makes that the
// value the next reward is compared with.
func (e *Environment) anchor() error {
	prices, err := e.closes()
	if err != nil {
		return err
	}

	e.portfolio.UpdatePrices(prices)

	value, err := e.portfolio.TotalValue(prices)
	if err != nil {
		return err
	}

	e.portfolio.SetPreviousValue(value)
	e.portfolio.UpdatePeak(value)

	return nil
}

// closes returns the close of every asset at the current step.
func (e *Environment) closes() (map[string]float64, error) {
	prices := make(map[string]float64, len(e.assets))

	for _, series := range e.data {
		bar, err := series.At(e.currentStep).Take()
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeMissingBarAtStep, "no bar for %s at step %d", series.Symbol, e.currentStep)
		}

		prices[series.Symbol] = bar.Close
	}

	return prices, nil
}

// info snapshots the portfolio. When it cannot be valued at the current step the last
// known value is reported and ValueFallback is set.
func (e *Environment) info() types.StepInfo {
	value, fallback := e.portfolio.PreviousValue(), true
	if prices, err := e.closes(); err == nil {
		if v, err := e.portfolio.TotalValue(prices); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			value, fallback = v, false
		}
	}

	return types.StepInfo{
		Step:           e.currentStep,
		PortfolioValue: value,
		ValueFallback:  fallback,
		Balance:        e.portfolio.Balance(),
		RiskLimit:      e.portfolio.RiskLimit(),
		GrowthLimit:    e.portfolio.GrowthLimit(),
		TradingActive:  e.portfolio.TradingActive(),
	}
}

func (e *Environment) event(eventType events.Type, level events.Level, message string) events.Event {
	event := events.New(eventType, level, message)
	event.EpisodeID = e.episodeID
	event.Step = e.currentStep

	return event
}

// Done reports whether the current step is the last bar of the timeline.
func (e *Environment) Done() bool {
	return e.currentStep >= e.length-1
}

func (e *Environment) CurrentStep() int {
	return e.currentStep
}

// Assets returns the asset symbols in observation order.
func (e *Environment) Assets() []string {
	return append([]string(nil), e.assets...)
}

func (e *Environment) ObservationShape() types.ObservationShape {
	return e.shape
}

// ActionSize is the number of signals Step expects.
func (e *Environment) ActionSize() int {
	return len(e.assets)
}

// Len is the number of bars in the shared timeline.
func (e *Environment) Len() int {
	return e.length
}

func (e *Environment) Portfolio() *portfolio.Portfolio {
	return e.portfolio
}

// EpisodeID identifies the episode started by the last Reset; empty before the first Reset.
func (e *Environment) EpisodeID() string {
	return e.episodeID
}
