// Package portfolio is the risk engine: it owns cash and holdings, decides whether a
// trade is permissible, applies slippage and fees, and adapts its limits over time.
package portfolio

import (
	"maps"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio/commission_fee"
)

// Portfolio is not safe for concurrent use. Each environment owns its own instance.
type Portfolio struct {
	config     Config
	commission commission_fee.CommissionFee
	sink       events.Sink
	rng        *rand.Rand

	balance       float64
	holdings      map[string]float64
	lastPrices    map[string]float64
	riskLimit     float64
	growthLimit   float64
	tradingActive bool
	previousValue float64
	peakValue     float64
	performance   float64
}

// NewPortfolio creates a portfolio in the Active state. A nil sink drops every event.
func NewPortfolio(config Config, sink events.Sink) (*Portfolio, error) {
	if config.Profile == "" {
		config.Profile = ProfileEnhanced
	}

	if config.Broker == "" {
		config.Broker = commission_fee.BrokerProportional
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if sink == nil {
		sink = events.NewNopSink()
	}

	p := &Portfolio{
		config:     config,
		commission: commission_fee.GetCommissionFeeHandler(config.Broker, config.FeeRate),
		sink:       sink,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.restore()

	return p, nil
}

func (p *Portfolio) restore() {
	p.balance = p.config.InitialBalance
	p.holdings = make(map[string]float64)
	p.lastPrices = make(map[string]float64)
	p.riskLimit = p.config.RiskLimit
	p.growthLimit = p.config.GrowthLimit
	p.tradingActive = true
	p.previousValue = p.config.InitialBalance
	p.peakValue = p.config.InitialBalance
	p.performance = 0
}

// Reset restores the initial balance and limits, clears holdings and reactivates trading.
func (p *Portfolio) Reset() {
	p.restore()

	event := events.New(events.TypePortfolioReset, events.LevelInfo, "portfolio state has been reset")
	event.Fields = map[string]float64{"balance": p.balance}
	p.sink.Emit(event)
}

// Seed reseeds the slippage generator so that replayed episodes are reproducible.
func (p *Portfolio) Seed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// StopTrading halts the portfolio. Only Reset reactivates it.
func (p *Portfolio) StopTrading() {
	if !p.tradingActive {
		return
	}

	p.tradingActive = false
	p.sink.Emit(events.New(events.TypeTradingHalted, events.LevelWarn, "trading has been stopped due to excessive drawdown or risk factors"))
}

// SetSink replaces the event sink. A nil sink drops every event.
func (p *Portfolio) SetSink(sink events.Sink) {
	if sink == nil {
		sink = events.NewNopSink()
	}

	p.sink = sink
}

func (p *Portfolio) Config() Config {
	return p.config
}

func (p *Portfolio) Profile() Profile {
	return p.config.Profile
}

func (p *Portfolio) Balance() float64 {
	return p.balance
}

// Holding returns the quantity held of symbol, zero when absent.
func (p *Portfolio) Holding(symbol string) float64 {
	return p.holdings[symbol]
}

// Holdings returns a copy of all non-zero positions.
func (p *Portfolio) Holdings() map[string]float64 {
	return maps.Clone(p.holdings)
}

// LastPrices returns a copy of the last known price per symbol.
func (p *Portfolio) LastPrices() map[string]float64 {
	return maps.Clone(p.lastPrices)
}

// UpdatePrices records the latest market prices. Non-positive prices are ignored.
func (p *Portfolio) UpdatePrices(prices map[string]float64) {
	for symbol, price := range prices {
		if price > 0 {
			p.lastPrices[symbol] = price
		}
	}
}

func (p *Portfolio) RiskLimit() float64 {
	return p.riskLimit
}

func (p *Portfolio) GrowthLimit() float64 {
	return p.growthLimit
}

func (p *Portfolio) TradingActive() bool {
	return p.tradingActive
}

// PreviousValue is the total value the next reward is measured against.
func (p *Portfolio) PreviousValue() float64 {
	return p.previousValue
}

func (p *Portfolio) SetPreviousValue(value float64) {
	p.previousValue = value
}

// Performance is the cumulative reward recorded so far.
func (p *Portfolio) Performance() float64 {
	return p.performance
}

// RecordPerformance adds a step reward to the cumulative performance.
func (p *Portfolio) RecordPerformance(reward float64) {
	p.performance += reward
}
