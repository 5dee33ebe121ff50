package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// BollingerBands indicator implements Bollinger Bands technical indicator.
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		stdDev: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

func (bb *BollingerBands) Columns() []string {
	return []string{"BB_upper", "BB_middle", "BB_lower"}
}

func (bb *BollingerBands) Lookback() int {
	return bb.period - 1
}

// Config configures the Bollinger Bands indicator.
// Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	stdDev, err := floatParam(params, 1, "stdDev")
	if err != nil {
		return err
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

func (bb *BollingerBands) Compute(input Input) ([][]float64, error) {
	upper, middle, lower := talib.BBands(input.Close, bb.period, bb.stdDev, bb.stdDev, talib.SMA)

	return [][]float64{upper, middle, lower}, nil
}
