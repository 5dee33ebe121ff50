package portfolio

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// Profile selects how strictly trades are checked.
type Profile string

const (
	// ProfileEnhanced applies slippage and enforces the risk and growth limits.
	ProfileEnhanced Profile = "enhanced"
	// ProfileBasic executes at the requested price and only checks balance, holdings and the halt flag.
	ProfileBasic Profile = "basic"
)

// Bounds of the adaptive limits.
const (
	MinRiskLimit   = 0.01
	MaxRiskLimit   = 0.10
	MinGrowthLimit = 0.30
	MaxGrowthLimit = 0.80
	// HighVolatility is the volatility above which the risk limit is tightened.
	HighVolatility = 0.02
	// VolatileRiskFloor is the lowest risk limit a high-volatility adjustment can produce.
	VolatileRiskFloor = 0.05
)

// Config holds the construction parameters of a Portfolio.
type Config struct {
	InitialBalance float64               `yaml:"initial_balance" json:"initial_balance" validate:"gt=0"`
	FeeRate        float64               `yaml:"fee_rate" json:"fee_rate" validate:"gte=0,lt=1"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" validate:"omitempty,oneof=proportional interactive_broker zero_commission"`
	// RiskLimit is the initial maximum fraction of the balance a single trade may use.
	RiskLimit float64 `yaml:"risk_limit" json:"risk_limit" validate:"gt=0,lte=1"`
	// GrowthLimit is the initial maximum fraction of total value a single position may reach.
	GrowthLimit    float64 `yaml:"growth_limit" json:"growth_limit" validate:"gt=0,lte=1"`
	SlippageFactor float64 `yaml:"slippage_factor" json:"slippage_factor" validate:"gte=0,lt=1"`
	Profile        Profile `yaml:"profile" json:"profile" validate:"omitempty,oneof=enhanced basic"`
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		InitialBalance: 10000,
		FeeRate:        0.001,
		Broker:         commission_fee.BrokerProportional,
		RiskLimit:      0.05,
		GrowthLimit:    0.20,
		SlippageFactor: 0.01,
		Profile:        ProfileEnhanced,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid portfolio config", err)
	}

	return nil
}
