package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// OBV is the On-Balance Volume indicator.
type OBV struct{}

func NewOBV() Indicator {
	return &OBV{}
}

func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

func (o *OBV) Columns() []string {
	return []string{"OBV"}
}

func (o *OBV) Lookback() int {
	return 0
}

// Config accepts no parameters.
func (o *OBV) Config(params ...any) error {
	return nil
}

func (o *OBV) Compute(input Input) ([][]float64, error) {
	return [][]float64{talib.Obv(input.Close, input.Volume)}, nil
}
