package marketdata

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// Timespan is a bar interval in exchange notation, e.g. "1h" or "1d".
// The string form is accepted as-is by the Binance klines API.
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

type timespanSpec struct {
	multiplier int
	unit       models.Timespan
	duration   time.Duration
}

var timespanSpecs = map[Timespan]timespanSpec{
	TimespanOneSecond:      {1, models.Second, time.Second},
	TimespanOneMinute:      {1, models.Minute, time.Minute},
	TimespanThreeMinutes:   {3, models.Minute, 3 * time.Minute},
	TimespanFiveMinutes:    {5, models.Minute, 5 * time.Minute},
	TimespanFifteenMinutes: {15, models.Minute, 15 * time.Minute},
	TimespanThirtyMinutes:  {30, models.Minute, 30 * time.Minute},
	TimespanOneHour:        {1, models.Hour, time.Hour},
	TimespanTwoHours:       {2, models.Hour, 2 * time.Hour},
	TimespanFourHours:      {4, models.Hour, 4 * time.Hour},
	TimespanSixHours:       {6, models.Hour, 6 * time.Hour},
	TimespanEightHours:     {8, models.Hour, 8 * time.Hour},
	TimespanTwelveHours:    {12, models.Hour, 12 * time.Hour},
	TimespanOneDay:         {1, models.Day, 24 * time.Hour},
	TimespanThreeDays:      {3, models.Day, 72 * time.Hour},
	TimespanOneWeek:        {1, models.Week, 7 * 24 * time.Hour},
	TimespanOneMonth:       {1, models.Month, 30 * 24 * time.Hour},
}

// AllTimespans lists every supported interval from shortest to longest.
var AllTimespans = []Timespan{
	TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
	TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneHour, TimespanTwoHours,
	TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours,
	TimespanOneDay, TimespanThreeDays, TimespanOneWeek, TimespanOneMonth,
}

// Validate fails with InvalidTimespan for unknown intervals.
func (t Timespan) Validate() error {
	if _, ok := timespanSpecs[t]; !ok {
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe %q", string(t))
	}

	return nil
}

// Multiplier is the number of Timespan() units in one bar. Unknown intervals return 1.
func (t Timespan) Multiplier() int {
	if spec, ok := timespanSpecs[t]; ok {
		return spec.multiplier
	}

	return 1
}

// Timespan is the polygon aggregate unit of the interval. Unknown intervals return models.Day.
func (t Timespan) Timespan() models.Timespan {
	if spec, ok := timespanSpecs[t]; ok {
		return spec.unit
	}

	return models.Day
}

// Duration is the wall-clock length of one bar; a month counts as 30 days.
// Unknown intervals return one day.
func (t Timespan) Duration() time.Duration {
	if spec, ok := timespanSpecs[t]; ok {
		return spec.duration
	}

	return 24 * time.Hour
}
