package portfolio

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
)

// AdjustRiskLimit adapts the risk limit in two independently clamped steps:
// first on performance, then on volatility. The result is path dependent.
func (p *Portfolio) AdjustRiskLimit(performance, volatility float64) {
	before := p.riskLimit

	if performance > 0 {
		p.riskLimit = math.Min(MaxRiskLimit, p.riskLimit*1.1)
	} else {
		p.riskLimit = math.Max(MinRiskLimit, p.riskLimit*0.9)
	}

	if volatility > HighVolatility {
		p.riskLimit = math.Max(VolatileRiskFloor, p.riskLimit*0.9)
	} else {
		p.riskLimit = math.Min(MaxRiskLimit, p.riskLimit*1.05)
	}

	if p.riskLimit != before {
		event := events.New(events.TypeRiskLimitAdjusted, events.LevelDebug, "risk limit adjusted")
		event.Fields = map[string]float64{
			"previous":    before,
			"risk_limit":  p.riskLimit,
			"performance": performance,
			"volatility":  volatility,
		}
		p.sink.Emit(event)
	}
}

// AdjustGrowthLimit sets the growth limit from a trend strength expected in [0, 1].
// Inputs are not clamped: values outside that range produce limits outside [0.30, 0.80].
func (p *Portfolio) AdjustGrowthLimit(trendStrength float64) {
	before := p.growthLimit
	p.growthLimit = math.Min(MaxGrowthLimit, MinGrowthLimit+0.5*trendStrength)

	if p.growthLimit != before {
		event := events.New(events.TypeGrowthLimitAdjusted, events.LevelDebug, "growth limit adjusted")
		event.Fields = map[string]float64{
			"previous":       before,
			"growth_limit":   p.growthLimit,
			"trend_strength": trendStrength,
		}
		p.sink.Emit(event)
	}
}

// MarketCondition is the latest volatility and trend strength of one asset.
type MarketCondition struct {
	Volatility    float64 `yaml:"volatility" json:"volatility"`
	TrendStrength float64 `yaml:"trend_strength" json:"trend_strength"`
}

// Rebalance adapts both limits to the latest market conditions, asset by asset in
// symbol order, using the cumulative performance as the performance signal.
// Trend strengths are clamped to [0, 1]. Balances and holdings are not touched.
func (p *Portfolio) Rebalance(conditions map[string]MarketCondition) {
	symbols := make([]string, 0, len(conditions))
	for symbol := range conditions {
		symbols = append(symbols, symbol)
	}

	slices.Sort(symbols)

	for _, symbol := range symbols {
		condition := conditions[symbol]
		p.AdjustRiskLimit(p.performance, condition.Volatility)
		p.AdjustGrowthLimit(ClampUnit(condition.TrendStrength))
	}
}

// ClampUnit clamps v to [0, 1]. NaN becomes 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
