package environment

import (
	"math"

	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// reward values the portfolio at the current closes, returns the relative change since
// the previous value, and adapts the risk limit to it. On error nothing is updated.
func (e *Environment) reward() (reward float64, volatility float64, err error) {
	prices, err := e.closes()
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeRewardComputation, "failed to read close prices", err)
	}

	value, err := e.portfolio.TotalValue(prices)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeRewardComputation, "failed to value portfolio", err)
	}

	previous := e.portfolio.PreviousValue()
	reward = (value - previous) / math.Max(previous, rewardEpsilon)

	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return 0, 0, errors.Newf(errors.ErrCodeRewardComputation, "reward is not finite (value %v, previous %v)", value, previous)
	}

	volatility = e.volatility()

	e.portfolio.AdjustRiskLimit(reward, volatility)
	e.portfolio.SetPreviousValue(value)
	e.portfolio.RecordPerformance(reward)
	e.checkDrawdown(value)

	return reward, volatility, nil
}

// volatility is the mean over assets of the bar's volatility column, or of
// (high-low)/close when the column is absent. Non-finite readings are skipped.
func (e *Environment) volatility() float64 {
	sum, n := 0.0, 0

	for _, series := range e.data {
		bar, err := series.At(e.currentStep).Take()
		if err != nil {
			continue
		}

		v, err := bar.Value(VolatilityColumn).Take()
		if err != nil || math.IsNaN(v) {
			if bar.Close == 0 {
				continue
			}

			v = (bar.High - bar.Low) / bar.Close
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		sum += v
		n++
	}

	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

// checkDrawdown halts trading when value has fallen maxDrawdown below the peak.
// The portfolio emits the trading_halted event.
func (e *Environment) checkDrawdown(value float64) {
	drawdown := e.portfolio.UpdatePeak(value)
	if e.maxDrawdown <= 0 || drawdown < e.maxDrawdown || !e.portfolio.TradingActive() {
		return
	}

	e.portfolio.StopTrading()
}
