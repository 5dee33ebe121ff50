package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// MA represents the Simple Moving Average indicator.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

func (m *MA) Columns() []string {
	return []string{"SMA"}
}

func (m *MA) Lookback() int {
	return m.period - 1
}

// Config configures the MA indicator. Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

func (m *MA) Compute(input Input) ([][]float64, error) {
	return [][]float64{talib.Sma(input.Close, m.period)}, nil
}
