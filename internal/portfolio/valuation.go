package portfolio

import (
	"maps"
	"slices"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// TotalValue returns balance plus every holding marked at prices.
// A held symbol without a price fails with PriceUnavailable.
func (p *Portfolio) TotalValue(prices map[string]float64) (float64, error) {
	total := p.balance

	for _, symbol := range slices.Sorted(maps.Keys(p.holdings)) {
		price, ok := prices[symbol]
		if !ok {
			return 0, errors.Newf(errors.ErrCodePriceUnavailable, "no price available for held symbol %s", symbol)
		}

		total += p.holdings[symbol] * price
	}

	return total, nil
}

// UpdatePeak records value as the new peak when it exceeds the previous one and
// returns the current drawdown from the peak as a fraction in [0, 1].
func (p *Portfolio) UpdatePeak(value float64) float64 {
	if value > p.peakValue {
		p.peakValue = value
	}

	return p.Drawdown(value)
}

// Drawdown returns the decline of value from the recorded peak as a fraction.
func (p *Portfolio) Drawdown(value float64) float64 {
	if p.peakValue <= 0 || value >= p.peakValue {
		return 0
	}

	return (p.peakValue - value) / p.peakValue
}

func (p *Portfolio) PeakValue() float64 {
	return p.peakValue
}

// Summary is a point-in-time snapshot of the portfolio.
type Summary struct {
	Balance       float64            `yaml:"balance" json:"balance"`
	Holdings      map[string]float64 `yaml:"holdings" json:"holdings"`
	RiskLimit     float64            `yaml:"risk_limit" json:"risk_limit"`
	GrowthLimit   float64            `yaml:"growth_limit" json:"growth_limit"`
	TradingActive bool               `yaml:"trading_active" json:"trading_active"`
	Performance   float64            `yaml:"performance" json:"performance"`
	PeakValue     float64            `yaml:"peak_value" json:"peak_value"`
}

func (p *Portfolio) Summary() Summary {
	return Summary{
		Balance:       p.balance,
		Holdings:      p.Holdings(),
		RiskLimit:     p.riskLimit,
		GrowthLimit:   p.growthLimit,
		TradingActive: p.tradingActive,
		Performance:   p.performance,
		PeakValue:     p.peakValue,
	}
}

// LogSummary emits the summary as a portfolio_summary event.
func (p *Portfolio) LogSummary() {
	summary := p.Summary()

	event := events.New(events.TypePortfolioSummary, events.LevelInfo, "portfolio summary")
	event.Fields = map[string]float64{
		"balance":      summary.Balance,
		"risk_limit":   summary.RiskLimit,
		"growth_limit": summary.GrowthLimit,
		"performance":  summary.Performance,
		"peak_value":   summary.PeakValue,
	}

	for symbol, qty := range summary.Holdings {
		event.Fields["holding."+symbol] = qty
	}

	p.sink.Emit(event)
}
