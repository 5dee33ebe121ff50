package types

// Action holds one signal per asset in [-1, 1]: positive buys that fraction of the
// balance, negative sells that fraction of the holding, zero does nothing.
type Action []float64

// At returns the signal for asset i; missing entries are treated as zero.
func (a Action) At(i int) float64 {
	if i < 0 || i >= len(a) {
		return 0
	}

	return a[i]
}

// Observation is the concatenation of every asset's normalized feature vector.
type Observation []float32

// ObservationShape is the declared, fixed layout of observations for an environment.
type ObservationShape struct {
	NumAssets   int `yaml:"num_assets" json:"num_assets"`
	NumFeatures int `yaml:"num_features" json:"num_features"`
}

// Size returns the length of an observation vector.
func (s ObservationShape) Size() int {
	return s.NumAssets * s.NumFeatures
}

// Zeros returns an all-zero observation of the declared size.
func (s ObservationShape) Zeros() Observation {
	return make(Observation, s.Size())
}

// StepInfo carries diagnostics about a reset or step.
type StepInfo struct {
	Step           int            `yaml:"step" json:"step"`
	PortfolioValue float64        `yaml:"portfolio_value" json:"portfolio_value"`
	Balance        float64        `yaml:"balance" json:"balance"`
	RiskLimit      float64        `yaml:"risk_limit" json:"risk_limit"`
	GrowthLimit    float64        `yaml:"growth_limit" json:"growth_limit"`
	Volatility     float64        `yaml:"volatility" json:"volatility"`
	TradingActive  bool           `yaml:"trading_active" json:"trading_active"`
	Trades         []TradeRecord  `yaml:"trades,omitempty" json:"trades,omitempty"`
	Failures       []TradeFailure `yaml:"failures,omitempty" json:"failures,omitempty"`
	// RewardFallback is true when the reward could not be computed and -1 was returned.
	RewardFallback bool `yaml:"reward_fallback" json:"reward_fallback"`
	// ValueFallback is true when PortfolioValue is the last known value because the
	// portfolio could not be valued at this step.
	ValueFallback bool `yaml:"value_fallback" json:"value_fallback"`
	// ObservationFallback is true when the observation was replaced by zeros.
	ObservationFallback bool `yaml:"observation_fallback" json:"observation_fallback"`
}

// StepResult is what Step hands back to the caller.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	// Truncated is always false: time-limit truncation is not modeled.
	Truncated bool
	Info      StepInfo
}
