package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/rxtech-lab/argo-trading-env/internal/types"
	argoErrors "github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) TestDefaultPipelineColumns() {
	pipeline := DefaultPipeline()
	suite.Equal([]string{
		"RSI", "ROC", "ADX", "EMA", "SMA", "MACD", "MACD_signal", "MACD_hist",
		"ATR", "BB_upper", "BB_middle", "BB_lower", "OBV",
	}, pipeline.Columns())
	suite.Equal(33, pipeline.Lookback())
}

func (suite *PipelineTestSuite) TestAddAllIndicators() {
	series := trendingSeries("BTC", 60)
	series.Indicators = []string{"volatility"}
	for i := range series.Bars {
		series.Bars[i].Indicators = map[string]float64{"volatility": 0.01}
	}

	out, err := DefaultPipeline().AddAllIndicators(series)
	suite.Require().NoError(err)

	suite.Equal("BTC", out.Symbol)
	suite.Equal(60, out.Len())
	suite.Equal("volatility", out.Indicators[0])
	suite.Len(out.Indicators, 14)
	suite.Len(out.Columns(), 19)

	// warm-up cells are NaN, later cells are finite
	suite.True(math.IsNaN(out.Bars[0].Indicators["ADX"]))
	suite.False(math.IsNaN(out.Bars[59].Indicators["ADX"]))
	suite.Equal(0.01, out.Bars[59].Indicators["volatility"])

	features, err := out.Features(59).Take()
	suite.Require().NoError(err)
	suite.Len(features, 19)

	// the input is left untouched
	suite.Equal([]string{"volatility"}, series.Indicators)
	suite.Len(series.Bars[0].Indicators, 1)
}

func (suite *PipelineTestSuite) TestSeriesTooShort() {
	_, err := DefaultPipeline().AddAllIndicators(trendingSeries("BTC", 20))
	suite.Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorsUnavailable))
}

func (suite *PipelineTestSuite) TestIndicatorFailure() {
	failing := newMockIndicator("broken")
	failing.compute = func(Input) ([][]float64, error) {
		return nil, errors.New("boom")
	}

	_, err := NewPipeline(failing).AddAllIndicators(trendingSeries("BTC", 5))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorCalculation))
	suite.Contains(err.Error(), "boom")
}

func (suite *PipelineTestSuite) TestIndicatorPanicIsRecovered() {
	panicking := newMockIndicator("panicky")
	panicking.compute = func(input Input) ([][]float64, error) {
		var empty []float64

		return [][]float64{{empty[input.Len()]}}, nil
	}

	_, err := NewPipeline(panicking).AddAllIndicators(trendingSeries("BTC", 5))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorCalculation))
}

func (suite *PipelineTestSuite) TestWrongColumnShape() {
	wide := newMockIndicator("wide")
	wide.columns = []string{"a", "b"}

	_, err := NewPipeline(wide).AddAllIndicators(trendingSeries("BTC", 5))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorCalculation))

	short := newMockIndicator("short")
	short.compute = func(Input) ([][]float64, error) {
		return [][]float64{{1}}, nil
	}

	_, err = NewPipeline(short).AddAllIndicators(trendingSeries("BTC", 5))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorCalculation))
}

func (suite *PipelineTestSuite) TestMockLookbackProducesNaN() {
	mock := newMockIndicator("ramp")
	mock.lookback = 2

	out, err := NewPipeline(mock).AddAllIndicators(trendingSeries("BTC", 5))
	suite.Require().NoError(err)
	suite.True(math.IsNaN(out.Bars[1].Indicators["ramp"]))
	suite.Equal(2.0, out.Bars[2].Indicators["ramp"])
}

func (suite *PipelineTestSuite) TestNewPipelineFromRegistry() {
	pipeline, err := NewPipelineFromRegistry(NewDefaultRegistry(), types.IndicatorTypeADX, types.IndicatorTypeRSI)
	suite.Require().NoError(err)
	suite.Equal([]string{"ADX", "RSI"}, pipeline.Columns())

	_, err = NewPipelineFromRegistry(NewIndicatorRegistry(), types.IndicatorTypeADX)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeIndicatorNotFound))
}

func (suite *PipelineTestSuite) TestPadIndicators() {
	series := trendingSeries("BTC", 3)
	series.Indicators = []string{"volatility"}

	padded := PadIndicators(series, []string{"volatility", "ADX", "RSI"})
	suite.Equal([]string{"volatility", "ADX", "RSI"}, padded.Indicators)

	features, err := padded.Features(0).Take()
	suite.Require().NoError(err)
	suite.Len(features, 8)
	suite.True(math.IsNaN(features[6]))
	suite.Equal([]string{"volatility"}, series.Indicators)
}
