package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rxtech-lab/argo-trading-env/internal/portfolio"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// PolicyType names a built-in action policy of the simulate command.
type PolicyType string

const (
	PolicyRandom       PolicyType = "random"
	PolicyHold         PolicyType = "hold"
	PolicyMeanVariance PolicyType = "mean_variance"
)

// Policy picks the action for the step after step.
type Policy interface {
	Act(step int, obs types.Observation) types.Action
}

// NewPolicy creates a policy over the given series. scale bounds the absolute signal
// of every asset.
func NewPolicy(policyType PolicyType, series []types.Series, seed int64, scale float64) (Policy, error) {
	switch policyType {
	case PolicyRandom:
		return &randomPolicy{rng: rand.New(rand.NewSource(seed)), size: len(series), scale: scale}, nil
	case PolicyHold:
		return holdPolicy{size: len(series)}, nil
	case PolicyMeanVariance:
		return newMeanVariancePolicy(series, 24, scale), nil
	default:
		return nil, fmt.Errorf("unknown policy %q, expected one of %s, %s, %s", policyType, PolicyRandom, PolicyHold, PolicyMeanVariance)
	}
}

// randomPolicy draws every signal uniformly from [-scale, scale].
type randomPolicy struct {
	rng   *rand.Rand
	size  int
	scale float64
}

func (p *randomPolicy) Act(int, types.Observation) types.Action {
	action := make(types.Action, p.size)
	for i := range action {
		action[i] = (p.rng.Float64()*2 - 1) * p.scale
	}

	return action
}

type holdPolicy struct {
	size int
}

func (p holdPolicy) Act(int, types.Observation) types.Action {
	return make(types.Action, p.size)
}

// meanVariancePolicy rebalances every window steps towards mean-variance weights of
// the last window returns. Positive weights buy, negative weights sell, and the steps
// in between hold.
type meanVariancePolicy struct {
	symbols []string
	closes  [][]float64
	window  int
	scale   float64
}

func newMeanVariancePolicy(series []types.Series, window int, scale float64) *meanVariancePolicy {
	p := &meanVariancePolicy{window: window, scale: scale}

	for _, s := range series {
		p.symbols = append(p.symbols, s.Symbol)
		p.closes = append(p.closes, s.Closes())
	}

	return p
}

func (p *meanVariancePolicy) Act(step int, _ types.Observation) types.Action {
	action := make(types.Action, len(p.symbols))

	weights, ok := p.weights(step)
	if !ok {
		return action
	}

	for i, symbol := range p.symbols {
		w := weights[symbol]
		if w > 0 {
			action[i] = math.Min(w, 1) * p.scale
		} else {
			action[i] = math.Max(w, -1)
		}
	}

	return action
}

// weights uses the closes up to and including step, never the bar the action trades on.
func (p *meanVariancePolicy) weights(step int) (map[string]float64, bool) {
	if step < p.window || step%p.window != 0 {
		return nil, false
	}

	window := make([][]float64, len(p.closes))
	for i, closes := range p.closes {
		if step >= len(closes) {
			return nil, false
		}

		window[i] = closes[step-p.window : step+1]
	}

	returns, err := portfolio.Returns(window)
	if err != nil {
		return nil, false
	}

	cov, err := portfolio.CovarianceMatrix(returns)
	if err != nil {
		return nil, false
	}

	weights, err := portfolio.OptimizePortfolio(p.symbols, returns, cov)
	if err != nil {
		return nil, false
	}

	return weights, true
}
