package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// trendingSeries builds n bars whose close rises by one each bar, with a high/low band of one.
func trendingSeries(symbol string, n int) types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)

	for i := range bars {
		closePrice := 100 + float64(i)
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Symbol: symbol,
			Open:   closePrice - 0.5,
			High:   closePrice + 1,
			Low:    closePrice - 1,
			Close:  closePrice,
			Volume: 1000 + float64(i),
		}
	}

	return types.Series{Symbol: symbol, Bars: bars}
}

// flatSeries builds n identical bars.
func flatSeries(symbol string, n int) types.Series {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{Symbol: symbol, Open: 50, High: 51, Low: 49, Close: 50, Volume: 10}
	}

	return types.Series{Symbol: symbol, Bars: bars}
}
