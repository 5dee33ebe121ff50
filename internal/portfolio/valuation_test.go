package portfolio

import (
	"testing"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ValuationTestSuite struct {
	suite.Suite
	portfolio *Portfolio
	recorder  *events.Recorder
}

func TestValuationSuite(t *testing.T) {
	suite.Run(t, new(ValuationTestSuite))
}

func (suite *ValuationTestSuite) SetupTest() {
	suite.recorder = events.NewRecorder()

	config := DefaultConfig()
	config.Profile = ProfileBasic
	config.FeeRate = 0

	p, err := NewPortfolio(config, suite.recorder)
	suite.Require().NoError(err)
	suite.portfolio = p
}

func (suite *ValuationTestSuite) TestTotalValue() {
	_, err := suite.portfolio.Buy("BTC", 100, 10)
	suite.Require().NoError(err)

	value, err := suite.portfolio.TotalValue(map[string]float64{"BTC": 120, "ETH": 5})
	suite.Require().NoError(err)
	suite.InDelta(9000+1200, value, 1e-9)
}

func (suite *ValuationTestSuite) TestTotalValueWithoutHoldings() {
	value, err := suite.portfolio.TotalValue(nil)
	suite.Require().NoError(err)
	suite.Equal(10000.0, value)
}

func (suite *ValuationTestSuite) TestTotalValuePriceUnavailable() {
	_, err := suite.portfolio.Buy("BTC", 100, 10)
	suite.Require().NoError(err)

	_, err = suite.portfolio.TotalValue(map[string]float64{"ETH": 5})
	suite.True(errors.HasCode(err, errors.ErrCodePriceUnavailable))
}

func (suite *ValuationTestSuite) TestDrawdown() {
	suite.Equal(0.0, suite.portfolio.UpdatePeak(10000))
	suite.Equal(0.0, suite.portfolio.UpdatePeak(12000))
	suite.Equal(12000.0, suite.portfolio.PeakValue())
	suite.InDelta(0.25, suite.portfolio.UpdatePeak(9000), 1e-12)
	suite.Equal(12000.0, suite.portfolio.PeakValue())
	suite.Equal(0.0, suite.portfolio.Drawdown(13000))
}

func (suite *ValuationTestSuite) TestSummary() {
	_, err := suite.portfolio.Buy("BTC", 100, 10)
	suite.Require().NoError(err)

	summary := suite.portfolio.Summary()
	suite.Equal(9000.0, summary.Balance)
	suite.Equal(map[string]float64{"BTC": 10}, summary.Holdings)
	suite.True(summary.TradingActive)

	summary.Holdings["BTC"] = 0
	suite.Equal(10.0, suite.portfolio.Holding("BTC"))

	suite.portfolio.LogSummary()
	logged := suite.recorder.OfType(events.TypePortfolioSummary)
	suite.Require().Len(logged, 1)
	suite.Equal(10.0, logged[0].Fields["holding.BTC"])
	suite.Equal(9000.0, logged[0].Fields["balance"])
}
