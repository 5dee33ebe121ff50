package provider

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
)

// Extra columns the simulated provider attaches to every bar.
const (
	ColumnVolatility    = "volatility"
	ColumnTrendStrength = "trend_strength"
	ColumnNoise         = "noise"
	ColumnAdjustedClose = "adjusted_close"
)

// DefaultSimulatedSymbols are traded when no watchlist is configured.
var DefaultSimulatedSymbols = []string{"BTC/USDT", "ETH/USDT", "LTC/USDT"}

// SimulationPattern defines the type of price simulation pattern.
type SimulationPattern string

const (
	// PatternRandomWalk adds a standard normal step to the close every bar.
	PatternRandomWalk SimulationPattern = "random_walk"
	// PatternIncreasing simulates a continuously increasing price trend.
	PatternIncreasing SimulationPattern = "increasing"
	// PatternDecreasing simulates a continuously decreasing price trend.
	PatternDecreasing SimulationPattern = "decreasing"
	// PatternVolatile simulates a volatile price with a maximum drawdown constraint.
	PatternVolatile SimulationPattern = "volatile"
)

// MarketCondition is a market-wide regime applied to every simulated symbol.
type MarketCondition string

const (
	ConditionBullish  MarketCondition = "bullish"
	ConditionBearish  MarketCondition = "bearish"
	ConditionSideways MarketCondition = "sideways"
)

var conditionFactors = map[MarketCondition]float64{
	ConditionBullish:  1.05,
	ConditionBearish:  0.95,
	ConditionSideways: 1.0,
}

// ExtremeCondition is a price shock applied to a single symbol.
type ExtremeCondition string

const (
	ExtremeCrash  ExtremeCondition = "crash"
	ExtremeBubble ExtremeCondition = "bubble"
)

const (
	// DefaultMinimumPrice is the minimum price floor to prevent negative or zero prices.
	DefaultMinimumPrice = 0.01
	// DefaultInitialPrice is the level the random walk starts from.
	DefaultInitialPrice = 50.0
	// DefaultTrendStrength is the per-bar drift of the increasing and decreasing patterns.
	DefaultTrendStrength = 0.01
	// DefaultVolatilityPercent is the base volatility of the trend patterns.
	DefaultVolatilityPercent = 2.0
	// DefaultMaxDrawdownPercent bounds the volatile pattern's fall from its peak.
	DefaultMaxDrawdownPercent = 10.0
	// DefaultIncreasingNoiseBias makes the increasing pattern's noise slightly positive.
	DefaultIncreasingNoiseBias = 0.3
	// DefaultDecreasingNoiseBias makes the decreasing pattern's noise slightly negative.
	DefaultDecreasingNoiseBias = 0.7
	// DefaultVolatileUpwardBias gives the volatile pattern a slight upward bias.
	DefaultVolatileUpwardBias = 0.45
	// extremeTimeframe and extremeLimit are the window SimulateExtremeConditions returns.
	extremeTimeframe = marketdata.TimespanOneHour
	extremeLimit     = 100
)

// SymbolQuote is one row of the simulated market overview.
type SymbolQuote struct {
	Symbol string  `json:"symbol"`
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
}

// SimulatedMarketDataProvider generates synthetic bars. Every fetch draws from its own
// generator seeded by the provider seed and the request, so equal requests return equal
// bars. Market and extreme conditions scale the prices of later fetches until cleared.
// It is not safe for concurrent use.
type SimulatedMarketDataProvider struct {
	seed       int64
	symbols    []string
	sink       events.Sink
	pattern    SimulationPattern
	end        time.Time
	market     float64
	shocks     map[string]float64
	conditions map[string]MarketCondition
}

// NewSimulatedMarketDataProvider creates a random-walk provider over symbols (DefaultSimulatedSymbols when empty).
func NewSimulatedMarketDataProvider(seed int64, symbols []string, sink events.Sink) *SimulatedMarketDataProvider {
	if len(symbols) == 0 {
		symbols = DefaultSimulatedSymbols
	}

	if sink == nil {
		sink = events.NewNopSink()
	}

	return &SimulatedMarketDataProvider{
		seed:       seed,
		symbols:    slices.Clone(symbols),
		sink:       sink,
		pattern:    PatternRandomWalk,
		end:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		market:     1.0,
		shocks:     make(map[string]float64),
		conditions: make(map[string]MarketCondition),
	}
}

// SetPattern switches the price generator used by later fetches.
func (p *SimulatedMarketDataProvider) SetPattern(pattern SimulationPattern) error {
	switch pattern {
	case PatternRandomWalk, PatternIncreasing, PatternDecreasing, PatternVolatile:
		p.pattern = pattern

		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown pattern: %s", pattern)
	}
}

// SetEndTime sets the timestamp of the last generated bar.
func (p *SimulatedMarketDataProvider) SetEndTime(end time.Time) {
	p.end = end
}

// Symbols returns the symbols the provider can generate.
func (p *SimulatedMarketDataProvider) Symbols() []string {
	return slices.Clone(p.symbols)
}

// MarketOverview returns a simulated 24h volume and price per symbol, keeping those with volume >= minVolume.
func (p *SimulatedMarketDataProvider) MarketOverview(_ context.Context, minVolume float64) []SymbolQuote {
	rng := p.rng("overview", strconv.FormatFloat(minVolume, 'g', -1, 64))
	quotes := make([]SymbolQuote, 0, len(p.symbols))

	for _, symbol := range p.symbols {
		quote := SymbolQuote{
			Symbol: symbol,
			Volume: minVolume + rng.Float64()*9*math.Abs(minVolume),
			Price:  10 + rng.Float64()*90,
		}
		if quote.Volume >= minVolume {
			quotes = append(quotes, quote)
		}
	}

	return quotes
}

// GetActiveSymbols returns the symbols whose simulated volume is at least minVolume, sorted.
func (p *SimulatedMarketDataProvider) GetActiveSymbols(ctx context.Context, minVolume float64) ([]string, error) {
	quotes := p.MarketOverview(ctx, minVolume)
	active := make([]string, 0, len(quotes))

	for _, q := range quotes {
		active = append(active, q.Symbol)
	}

	slices.Sort(active)

	return active, nil
}

// FetchHistoricalData generates limit bars ending at the provider's end time.
func (p *SimulatedMarketDataProvider) FetchHistoricalData(_ context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]types.Bar, error) {
	if err := validateFetch(symbol, timeframe, limit); err != nil {
		return nil, err
	}

	if !slices.Contains(p.symbols, symbol) {
		return nil, errors.Newf(errors.ErrCodeUnsupportedSymbol, "symbol %s is not supported by the simulated market", symbol)
	}

	rng := p.rng(symbol, string(timeframe), strconv.Itoa(limit))
	closes := p.generateCloses(rng, limit)
	scale := p.scale(symbol)
	step := timeframe.Duration()
	bars := make([]types.Bar, limit)

	for i, closePrice := range closes {
		open := closePrice
		if i > 0 {
			open = closes[i-1]
		}

		high := max(closePrice+0.5+rng.Float64(), open)
		low := min(closePrice-0.5-rng.Float64(), open)
		low = max(low, DefaultMinimumPrice)
		volume := 100 + rng.Float64()*900
		noise := rng.NormFloat64() * 0.02

		bar := types.Bar{
			Time:   p.end.Add(-time.Duration(limit-1-i) * step),
			Symbol: symbol,
			Open:   open * scale,
			High:   high * scale,
			Low:    low * scale,
			Close:  closePrice * scale,
			Volume: volume,
		}
		bar.Indicators = map[string]float64{
			ColumnVolatility:    (bar.High - bar.Low) / bar.Close,
			ColumnTrendStrength: rng.Float64(),
			ColumnNoise:         noise,
			ColumnAdjustedClose: bar.Close * (1 + noise),
		}
		bars[i] = bar
	}

	return bars, nil
}

// SimulateMarketConditions scales the prices of every symbol in later fetches:
// bullish by 1.05, bearish by 0.95, sideways by 1.
func (p *SimulatedMarketDataProvider) SimulateMarketConditions(condition MarketCondition) error {
	factor, ok := conditionFactors[condition]
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown market condition: %s", condition)
	}

	p.market = factor

	for _, symbol := range p.symbols {
		p.conditions[symbol] = condition

		event := events.New(events.TypeMarketSimulated, events.LevelInfo, "simulated "+string(condition)+" market conditions")
		event.Symbol = symbol
		event.Fields = map[string]float64{"factor": factor}
		p.sink.Emit(event)
	}

	return nil
}

// SimulateExtremeConditions applies a crash (prices times 1-severity) or a bubble
// (prices times 1+severity) to symbol and returns its latest 100 hourly bars.
func (p *SimulatedMarketDataProvider) SimulateExtremeConditions(ctx context.Context, symbol string, condition ExtremeCondition, severity float64) ([]types.Bar, error) {
	if !slices.Contains(p.symbols, symbol) {
		return nil, errors.Newf(errors.ErrCodeUnsupportedSymbol, "symbol %s is not supported by the simulated market", symbol)
	}

	if math.IsNaN(severity) || severity < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "severity must be non-negative, got %v", severity)
	}

	var factor float64

	switch condition {
	case ExtremeCrash:
		if severity >= 1 {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "crash severity must be below 1, got %v", severity)
		}

		factor = 1 - severity
	case ExtremeBubble:
		factor = 1 + severity
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown extreme condition: %s", condition)
	}

	p.shocks[symbol] = factor

	event := events.New(events.TypeExtremeSimulated, events.LevelInfo, "simulated "+string(condition))
	event.Symbol = symbol
	event.Fields = map[string]float64{"severity": severity, "factor": factor}
	p.sink.Emit(event)

	return p.FetchHistoricalData(ctx, symbol, extremeTimeframe, extremeLimit)
}

// Condition returns the market condition last applied to symbol, if any.
func (p *SimulatedMarketDataProvider) Condition(symbol string) (MarketCondition, bool) {
	c, ok := p.conditions[symbol]

	return c, ok
}

// ClearConditions removes every market condition and shock.
func (p *SimulatedMarketDataProvider) ClearConditions() {
	p.market = 1.0
	clear(p.shocks)
	clear(p.conditions)
}

func (p *SimulatedMarketDataProvider) scale(symbol string) float64 {
	scale := p.market
	if shock, ok := p.shocks[symbol]; ok {
		scale *= shock
	}

	return scale
}

func (p *SimulatedMarketDataProvider) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, part := range parts {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}

	//nolint:gosec // simulation, not cryptography
	return rand.New(rand.NewSource(p.seed ^ int64(h.Sum64())))
}

func (p *SimulatedMarketDataProvider) generateCloses(rng *rand.Rand, limit int) []float64 {
	closes := make([]float64, limit)
	price := DefaultInitialPrice
	peak := price

	for i := range closes {
		var change float64

		switch p.pattern {
		case PatternIncreasing:
			change = price*DefaultTrendStrength + price*(DefaultVolatilityPercent/100.0)*(rng.Float64()-DefaultIncreasingNoiseBias)
		case PatternDecreasing:
			change = -price*DefaultTrendStrength + price*(DefaultVolatilityPercent/100.0)*(rng.Float64()-DefaultDecreasingNoiseBias)
		case PatternVolatile:
			change = volatileChange(rng, price, peak)
		default:
			change = rng.NormFloat64()
		}

		price = max(price+change, DefaultMinimumPrice)
		peak = max(peak, price)
		closes[i] = price
	}

	return closes
}

// volatileChange draws a move with a slight upward bias that never drops the price
// more than DefaultMaxDrawdownPercent below peak.
func volatileChange(rng *rand.Rand, price, peak float64) float64 {
	vol := DefaultVolatilityPercent / 100.0
	change := price * vol * (rng.Float64() - DefaultVolatileUpwardBias)

	floor := peak * (1 - DefaultMaxDrawdownPercent/100.0)
	if price+change < floor {
		change = floor + rng.Float64()*vol*price - price
	}

	return change
}
