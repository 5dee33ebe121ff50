package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// ADXColumn is the column the environment reads trend strength from by default.
const ADXColumn = "ADX"

// ADX represents the Average Directional Index, a 0-100 measure of trend strength.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator with default configuration.
func NewADX() Indicator {
	return &ADX{
		period: 14, // Default period
	}
}

func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

func (a *ADX) Columns() []string {
	return []string{ADXColumn}
}

func (a *ADX) Lookback() int {
	return 2*a.period - 1
}

// Config configures the ADX indicator. Expected parameters: period (int).
func (a *ADX) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

func (a *ADX) Compute(input Input) ([][]float64, error) {
	return [][]float64{talib.Adx(input.High, input.Low, input.Close, a.period)}, nil
}
