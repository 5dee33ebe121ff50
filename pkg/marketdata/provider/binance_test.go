package provider

import (
	"context"
	"errors"
	"strconv"
	"testing"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	argoErrors "github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/stretchr/testify/suite"
)

type klinesRequest struct {
	symbol   string
	interval string
	limit    int
	end      int64
}

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klines    []*binance.Kline
	klinesErr error
	// For pagination testing - returns different results on subsequent calls
	callCount     int
	klinesPerCall [][]*binance.Kline
	requests      []klinesRequest

	stats    []*binance.PriceChangeStats
	statsErr error
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

func (m *mockBinanceAPIClient) NewListPriceChangeStatsService() BinancePriceChangeStatsService {
	return &mockBinanceStatsService{client: m}
}

type mockBinanceKlinesService struct {
	client  *mockBinanceAPIClient
	request klinesRequest
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.request.symbol = symbol
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.request.interval = interval
	return m
}

func (m *mockBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	m.request.limit = limit
	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.request.end = endTime
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	m.client.requests = append(m.client.requests, m.request)

	if len(m.client.klinesPerCall) > 0 {
		idx := m.client.callCount
		m.client.callCount++
		if idx < len(m.client.klinesPerCall) {
			return m.client.klinesPerCall[idx], nil
		}
		return nil, nil
	}

	return m.client.klines, m.client.klinesErr
}

type mockBinanceStatsService struct {
	client *mockBinanceAPIClient
}

func (m *mockBinanceStatsService) Do(_ context.Context) ([]*binance.PriceChangeStats, error) {
	return m.client.stats, m.client.statsErr
}

// makeKlines returns n hourly klines starting at startMillis with close = base + i.
func makeKlines(n int, startMillis int64, base float64) []*binance.Kline {
	klines := make([]*binance.Kline, n)
	for i := range klines {
		price := strconv.FormatFloat(base+float64(i), 'f', 2, 64)
		klines[i] = &binance.Kline{
			OpenTime:  startMillis + int64(i)*3_600_000,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    "10.5",
			CloseTime: startMillis + int64(i+1)*3_600_000 - 1,
		}
	}
	return klines
}

type BinanceProviderTestSuite struct {
	suite.Suite
}

func TestBinanceProviderSuite(t *testing.T) {
	suite.Run(t, new(BinanceProviderTestSuite))
}

func (suite *BinanceProviderTestSuite) TestNewLiveMarketDataProvider() {
	provider := NewLiveMarketDataProvider("", "", nil)
	suite.NotNil(provider)
	suite.NotNil(provider.apiClient)
}

func (suite *BinanceProviderTestSuite) TestFetchHistoricalDataSinglePage() {
	mockAPI := &mockBinanceAPIClient{klines: makeKlines(3, 1_700_000_000_000, 100)}
	provider := NewLiveMarketDataProviderWithAPI(mockAPI, nil)

	bars, err := provider.FetchHistoricalData(context.Background(), "BTC/USDT", marketdata.TimespanOneHour, 3)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	suite.Equal("BTC/USDT", bars[0].Symbol)
	suite.Equal(100.0, bars[0].Close)
	suite.Equal(102.0, bars[2].Close)
	suite.Equal(10.5, bars[1].Volume)
	suite.Equal(int64(1_700_000_000_000), bars[0].Time.UnixMilli())

	suite.Require().Len(mockAPI.requests, 1)
	suite.Equal("BTCUSDT", mockAPI.requests[0].symbol)
	suite.Equal("1h", mockAPI.requests[0].interval)
	suite.Equal(3, mockAPI.requests[0].limit)
	suite.Equal(int64(0), mockAPI.requests[0].end)
}

func (suite *BinanceProviderTestSuite) TestFetchHistoricalDataPaginatesBackwards() {
	newer := makeKlines(1000, 1_700_000_000_000, 1000)
	older := makeKlines(500, 1_700_000_000_000-500*3_600_000, 500)
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{newer, older}}
	provider := NewLiveMarketDataProviderWithAPI(mockAPI, nil)

	bars, err := provider.FetchHistoricalData(context.Background(), "BTCUSDT", marketdata.TimespanOneHour, 1500)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1500)

	// Oldest page first
	suite.Equal(500.0, bars[0].Close)
	suite.Equal(999.0, bars[499].Close)
	suite.Equal(1000.0, bars[500].Close)
	for i := 1; i < len(bars); i++ {
		suite.True(bars[i].Time.After(bars[i-1].Time))
	}

	suite.Require().Len(mockAPI.requests, 2)
	suite.Equal(1000, mockAPI.requests[0].limit)
	suite.Equal(500, mockAPI.requests[1].limit)
	suite.Equal(newer[0].OpenTime-1, mockAPI.requests[1].end)
}

func (suite *BinanceProviderTestSuite) TestFetchHistoricalDataStopsOnShortPage() {
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{makeKlines(200, 1_700_000_000_000, 1)}}
	provider := NewLiveMarketDataProviderWithAPI(mockAPI, nil)

	bars, err := provider.FetchHistoricalData(context.Background(), "ETHUSDT", marketdata.TimespanOneDay, 1200)
	suite.Require().NoError(err)
	suite.Len(bars, 200)
	suite.Len(mockAPI.requests, 1)
}

func (suite *BinanceProviderTestSuite) TestFetchHistoricalDataErrors() {
	tests := []struct {
		name      string
		api       *mockBinanceAPIClient
		symbol    string
		timeframe marketdata.Timespan
		limit     int
		code      argoErrors.ErrorCode
	}{
		{
			name:      "invalid symbol API error",
			api:       &mockBinanceAPIClient{klinesErr: &common.APIError{Code: -1121, Message: "Invalid symbol."}},
			symbol:    "NOPE/USDT",
			timeframe: marketdata.TimespanOneHour,
			limit:     10,
			code:      argoErrors.ErrCodeUnsupportedSymbol,
		},
		{
			name:      "network error",
			api:       &mockBinanceAPIClient{klinesErr: errors.New("connection reset")},
			symbol:    "BTC/USDT",
			timeframe: marketdata.TimespanOneHour,
			limit:     10,
			code:      argoErrors.ErrCodeMarketDataFetchFailed,
		},
		{
			name:      "empty result",
			api:       &mockBinanceAPIClient{klines: []*binance.Kline{}},
			symbol:    "BTC/USDT",
			timeframe: marketdata.TimespanOneHour,
			limit:     10,
			code:      argoErrors.ErrCodeUnsupportedSymbol,
		},
		{
			name:      "unparsable price",
			api:       &mockBinanceAPIClient{klines: []*binance.Kline{{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1"}}},
			symbol:    "BTC/USDT",
			timeframe: marketdata.TimespanOneHour,
			limit:     1,
			code:      argoErrors.ErrCodeMarketDataParseFailed,
		},
		{
			name:      "invalid timeframe",
			api:       &mockBinanceAPIClient{},
			symbol:    "BTC/USDT",
			timeframe: marketdata.Timespan("7h"),
			limit:     10,
			code:      argoErrors.ErrCodeInvalidTimespan,
		},
		{
			name:      "non-positive limit",
			api:       &mockBinanceAPIClient{},
			symbol:    "BTC/USDT",
			timeframe: marketdata.TimespanOneHour,
			limit:     0,
			code:      argoErrors.ErrCodeInvalidParameter,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			provider := NewLiveMarketDataProviderWithAPI(tc.api, nil)
			_, err := provider.FetchHistoricalData(context.Background(), tc.symbol, tc.timeframe, tc.limit)
			suite.Error(err)
			suite.True(argoErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *BinanceProviderTestSuite) TestGetActiveSymbols() {
	stats := []*binance.PriceChangeStats{
		{Symbol: "LTCUSDT", QuoteVolume: "5000"},
		{Symbol: "BTCUSDT", QuoteVolume: "1000000"},
		{Symbol: "ETHUSDT", QuoteVolume: "250000"},
		{Symbol: "DOGEUSDT", QuoteVolume: "not-a-number"},
		nil,
	}

	suite.Run("no watchlist", func() {
		provider := NewLiveMarketDataProviderWithAPI(&mockBinanceAPIClient{stats: stats}, nil)
		symbols, err := provider.GetActiveSymbols(context.Background(), 10000)
		suite.Require().NoError(err)
		suite.Equal([]string{"BTCUSDT", "ETHUSDT"}, symbols)
	})

	suite.Run("watchlist keeps its spelling", func() {
		provider := NewLiveMarketDataProviderWithAPI(&mockBinanceAPIClient{stats: stats}, []string{"ETH/USDT", "LTC/USDT", "XRP/USDT"})
		symbols, err := provider.GetActiveSymbols(context.Background(), 1000)
		suite.Require().NoError(err)
		suite.Equal([]string{"ETH/USDT", "LTC/USDT"}, symbols)
	})

	suite.Run("api failure", func() {
		provider := NewLiveMarketDataProviderWithAPI(&mockBinanceAPIClient{statsErr: errors.New("rate limited")}, nil)
		_, err := provider.GetActiveSymbols(context.Background(), 0)
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
	})
}

func (suite *BinanceProviderTestSuite) TestBinanceSymbol() {
	suite.Equal("BTCUSDT", binanceSymbol("btc/usdt"))
	suite.Equal("ETHBTC", binanceSymbol("ETHBTC"))
}
