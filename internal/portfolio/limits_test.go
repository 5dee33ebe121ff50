package portfolio

import (
	"math/rand"
	"testing"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/stretchr/testify/suite"
)

type LimitsTestSuite struct {
	suite.Suite
	portfolio *Portfolio
	recorder  *events.Recorder
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsTestSuite))
}

func (suite *LimitsTestSuite) SetupTest() {
	suite.recorder = events.NewRecorder()

	p, err := NewPortfolio(DefaultConfig(), suite.recorder)
	suite.Require().NoError(err)
	suite.portfolio = p
}

func (suite *LimitsTestSuite) TestAdjustRiskLimit() {
	tests := []struct {
		name        string
		start       float64
		performance float64
		volatility  float64
		expected    float64
	}{
		// 0.05*1.1 = 0.055, then low volatility 0.055*1.05 = 0.05775
		{"positive performance low volatility", 0.05, 0.1, 0.01, 0.05775},
		// 0.05*0.9 = 0.045, then high volatility max(0.05, 0.0405) = 0.05
		{"negative performance high volatility", 0.05, -0.1, 0.03, 0.05},
		// zero performance counts as non-positive: 0.05*0.9 = 0.045, then 0.045*1.05 = 0.04725
		{"zero performance low volatility", 0.05, 0, 0.02, 0.04725},
		// min(0.10, 0.11) = 0.10, then min(0.10, 0.105) = 0.10
		{"capped at ten percent", 0.10, 1, 0, 0.10},
		// max(0.01, 0.009) = 0.01, then 0.0105
		{"floored at one percent", 0.01, -1, 0, 0.0105},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.portfolio.riskLimit = tc.start
			suite.portfolio.AdjustRiskLimit(tc.performance, tc.volatility)
			suite.InDelta(tc.expected, suite.portfolio.RiskLimit(), 1e-12)
		})
	}
}

func (suite *LimitsTestSuite) TestRiskLimitStaysInBounds() {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		performance := rng.Float64()*2 - 1
		volatility := rng.Float64() * 0.05
		suite.portfolio.AdjustRiskLimit(performance, volatility)

		suite.GreaterOrEqual(suite.portfolio.RiskLimit(), MinRiskLimit)
		suite.LessOrEqual(suite.portfolio.RiskLimit(), MaxRiskLimit)
	}
}

func (suite *LimitsTestSuite) TestAdjustGrowthLimit() {
	suite.portfolio.AdjustGrowthLimit(1.0)
	suite.InDelta(0.80, suite.portfolio.GrowthLimit(), 1e-12)

	suite.portfolio.AdjustGrowthLimit(0.0)
	suite.InDelta(0.30, suite.portfolio.GrowthLimit(), 1e-12)

	suite.portfolio.AdjustGrowthLimit(0.5)
	suite.InDelta(0.55, suite.portfolio.GrowthLimit(), 1e-12)
}

func (suite *LimitsTestSuite) TestAdjustGrowthLimitDoesNotClampInput() {
	suite.portfolio.AdjustGrowthLimit(-1)
	suite.InDelta(-0.20, suite.portfolio.GrowthLimit(), 1e-12)

	suite.portfolio.AdjustGrowthLimit(5)
	suite.InDelta(0.80, suite.portfolio.GrowthLimit(), 1e-12)
}

func (suite *LimitsTestSuite) TestGrowthLimitStaysInBoundsForUnitTrend() {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 1000; i++ {
		suite.portfolio.AdjustGrowthLimit(rng.Float64())
		suite.GreaterOrEqual(suite.portfolio.GrowthLimit(), MinGrowthLimit)
		suite.LessOrEqual(suite.portfolio.GrowthLimit(), MaxGrowthLimit)
	}
}

func (suite *LimitsTestSuite) TestAdjustmentsEmitEvents() {
	suite.portfolio.AdjustRiskLimit(1, 0)
	suite.portfolio.AdjustGrowthLimit(1)

	risk := suite.recorder.OfType(events.TypeRiskLimitAdjusted)
	suite.Require().Len(risk, 1)
	suite.InDelta(0.05, risk[0].Fields["previous"], 1e-12)
	suite.Len(suite.recorder.OfType(events.TypeGrowthLimitAdjusted), 1)
}

func (suite *LimitsTestSuite) TestRebalance() {
	suite.portfolio.RecordPerformance(0.2)
	suite.portfolio.Rebalance(map[string]MarketCondition{
		"ETH": {Volatility: 0.01, TrendStrength: 0.2},
		"BTC": {Volatility: 0.03, TrendStrength: 3},
	})

	// BTC first: 0.05*1.1 = 0.055 -> max(0.05, 0.0495) = 0.05; growth 0.80
	// ETH next: 0.05*1.1 = 0.055 -> 0.05775; growth 0.40
	suite.InDelta(0.05775, suite.portfolio.RiskLimit(), 1e-12)
	suite.InDelta(0.40, suite.portfolio.GrowthLimit(), 1e-12)
	suite.Equal(10000.0, suite.portfolio.Balance())
}

func (suite *LimitsTestSuite) TestClampUnit() {
	suite.Equal(0.0, ClampUnit(-0.5))
	suite.Equal(1.0, ClampUnit(2))
	suite.Equal(0.25, ClampUnit(0.25))
}
