package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
)

// Column names of the raw price fields, in observation order.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// PriceColumns are the fields every bar carries before indicators are added.
var PriceColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// Bar is one time-indexed record of market data plus derived indicator columns.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time"`
	Symbol string    `yaml:"symbol" json:"symbol"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
	// Indicators holds the columns appended by the indicator pipeline, keyed by column name.
	Indicators map[string]float64 `yaml:"indicators,omitempty" json:"indicators,omitempty"`
}

// Value returns the named column of the bar. Price columns are always present;
// indicator columns are None when the pipeline did not produce them.
func (b Bar) Value(column string) optional.Option[float64] {
	switch column {
	case ColumnOpen:
		return optional.Some(b.Open)
	case ColumnHigh:
		return optional.Some(b.High)
	case ColumnLow:
		return optional.Some(b.Low)
	case ColumnClose:
		return optional.Some(b.Close)
	case ColumnVolume:
		return optional.Some(b.Volume)
	}

	v, ok := b.Indicators[column]
	if !ok {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

// Series is the ordered-by-time bar sequence of a single asset.
// Indicators lists the indicator column names in the order they appear in observations.
type Series struct {
	Symbol     string   `yaml:"symbol" json:"symbol"`
	Indicators []string `yaml:"indicators" json:"indicators"`
	Bars       []Bar    `yaml:"bars" json:"bars"`
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// Columns returns every non-identifier column: the price fields followed by the indicators.
func (s Series) Columns() []string {
	columns := make([]string, 0, len(PriceColumns)+len(s.Indicators))
	columns = append(columns, PriceColumns...)

	return append(columns, s.Indicators...)
}

// At returns the bar at index i, or None when i is outside the series.
func (s Series) At(i int) optional.Option[Bar] {
	if i < 0 || i >= len(s.Bars) {
		return optional.None[Bar]()
	}

	return optional.Some(s.Bars[i])
}

// Features returns the values of Columns for the bar at index i.
// Indicator cells the bar lacks are NaN.
func (s Series) Features(i int) optional.Option[[]float64] {
	bar, err := s.At(i).Take()
	if err != nil {
		return optional.None[[]float64]()
	}

	features := make([]float64, 0, len(PriceColumns)+len(s.Indicators))
	features = append(features, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)

	for _, name := range s.Indicators {
		features = append(features, bar.Value(name).TakeOr(math.NaN()))
	}

	return optional.Some(features)
}

// Closes returns the close prices of the whole series.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}
