package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// ROC is the percentage rate of change of the close over period bars.
type ROC struct {
	period int
}

func NewROC() Indicator {
	return &ROC{period: 10}
}

func (r *ROC) Name() types.IndicatorType {
	return types.IndicatorTypeROC
}

func (r *ROC) Columns() []string {
	return []string{"ROC"}
}

func (r *ROC) Lookback() int {
	return r.period
}

// Config configures the ROC indicator. Expected parameters: period (int).
func (r *ROC) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

func (r *ROC) Compute(input Input) ([][]float64, error) {
	return [][]float64{talib.Roc(input.Close, r.period)}, nil
}
