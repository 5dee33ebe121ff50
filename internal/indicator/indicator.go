package indicator

import (
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// Input holds the price columns of a series as parallel slices.
type Input struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// NewInput extracts the price columns of series.
func NewInput(series types.Series) Input {
	n := series.Len()
	input := Input{
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}

	for i, bar := range series.Bars {
		input.Open[i] = bar.Open
		input.High[i] = bar.High
		input.Low[i] = bar.Low
		input.Close[i] = bar.Close
		input.Volume[i] = bar.Volume
	}

	return input
}

// Len returns the number of bars.
func (i Input) Len() int {
	return len(i.Close)
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Columns returns the names of the columns Compute produces, in order
	Columns() []string
	// Lookback returns the number of leading bars that have no valid value
	Lookback() int
	// Compute returns one slice per column, each as long as the input
	Compute(input Input) ([][]float64, error)
	Config(params ...any) error
}
