package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

func (m *MACD) Columns() []string {
	return []string{"MACD", "MACD_signal", "MACD_hist"}
}

func (m *MACD) Lookback() int {
	return m.slowPeriod + m.signalPeriod - 2
}

// Config configures the MACD indicator.
// Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := intParam(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slow, err := intParam(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	signal, err := intParam(params, 2, "signalPeriod")
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be less than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

func (m *MACD) Compute(input Input) ([][]float64, error) {
	macd, signal, hist := talib.Macd(input.Close, m.fastPeriod, m.slowPeriod, m.signalPeriod)

	return [][]float64{macd, signal, hist}, nil
}
