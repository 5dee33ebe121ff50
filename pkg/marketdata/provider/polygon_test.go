package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	argoErrors "github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
// Iterators are keyed by ticker; params records every request.
type mockPolygonAPIClient struct {
	aggs   map[string][]models.Agg
	err    error
	params []models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = append(m.params, *params)
	return &mockPolygonIterator{aggs: m.aggs[params.Ticker], err: m.err}
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.err != nil {
		return false
	}
	if m.index < len(m.aggs) {
		m.index++
		return true
	}
	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}
	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

// newestFirst returns n daily aggs ending at end, newest first, with close = n - i.
func newestFirst(n int, end time.Time, volume float64) []models.Agg {
	aggs := make([]models.Agg, n)
	for i := range aggs {
		price := float64(n - i)
		aggs[i] = models.Agg{
			Open:      price,
			High:      price + 1,
			Low:       price - 0.5,
			Close:     price,
			Volume:    volume,
			Timestamp: models.Millis(end.Add(-time.Duration(i) * 24 * time.Hour)),
		}
	}
	return aggs
}

type PolygonProviderTestSuite struct {
	suite.Suite
	end time.Time
}

func TestPolygonProviderSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	suite.end = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonProviderTestSuite) newProvider(api *mockPolygonAPIClient, watchlist []string) *PolygonMarketDataProvider {
	provider, err := NewPolygonMarketDataProviderWithAPI(api, watchlist)
	suite.Require().NoError(err)
	provider.now = func() time.Time { return suite.end }
	return provider
}

func (suite *PolygonProviderTestSuite) TestNewPolygonMarketDataProvider() {
	provider, err := NewPolygonMarketDataProvider("test-api-key", []string{"AAPL"})
	suite.NoError(err)
	suite.NotNil(provider.apiClient)

	_, err = NewPolygonMarketDataProvider("", []string{"AAPL"})
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMissingCredentials))

	_, err = NewPolygonMarketDataProvider("test-api-key", nil)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidParameter))
}

func (suite *PolygonProviderTestSuite) TestFetchHistoricalDataOrdersOldestFirst() {
	api := &mockPolygonAPIClient{aggs: map[string][]models.Agg{"AAPL": newestFirst(5, suite.end, 1000)}}
	provider := suite.newProvider(api, []string{"AAPL"})

	bars, err := provider.FetchHistoricalData(context.Background(), "AAPL", marketdata.TimespanOneDay, 3)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	suite.Equal(3.0, bars[0].Close)
	suite.Equal(5.0, bars[2].Close)
	suite.Equal(suite.end, bars[2].Time)
	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal(6.0, bars[2].High)

	suite.Require().Len(api.params, 1)
	params := api.params[0]
	suite.Equal(1, params.Multiplier)
	suite.Equal(models.Day, params.Timespan)
	suite.Equal(suite.end, time.Time(params.To))
	suite.Equal(suite.end.Add(-6*24*time.Hour-7*24*time.Hour), time.Time(params.From))
}

func (suite *PolygonProviderTestSuite) TestFetchHistoricalDataErrors() {
	suite.Run("no aggregates", func() {
		provider := suite.newProvider(&mockPolygonAPIClient{}, []string{"AAPL"})
		_, err := provider.FetchHistoricalData(context.Background(), "NOPE", marketdata.TimespanOneDay, 3)
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeUnsupportedSymbol))
	})

	suite.Run("iterator error", func() {
		provider := suite.newProvider(&mockPolygonAPIClient{err: errors.New("boom")}, []string{"AAPL"})
		_, err := provider.FetchHistoricalData(context.Background(), "AAPL", marketdata.TimespanOneDay, 3)
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
	})

	suite.Run("invalid timeframe", func() {
		provider := suite.newProvider(&mockPolygonAPIClient{}, []string{"AAPL"})
		_, err := provider.FetchHistoricalData(context.Background(), "AAPL", marketdata.Timespan("1y"), 3)
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidTimespan))
	})
}

func (suite *PolygonProviderTestSuite) TestGetActiveSymbols() {
	api := &mockPolygonAPIClient{aggs: map[string][]models.Agg{
		"MSFT": newestFirst(2, suite.end, 5_000_000),
		"AAPL": newestFirst(2, suite.end, 9_000_000),
		"TINY": newestFirst(2, suite.end, 10),
	}}
	provider := suite.newProvider(api, []string{"MSFT", "TINY", "AAPL", "GONE"})

	symbols, err := provider.GetActiveSymbols(context.Background(), 1_000_000)
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, symbols)
	suite.Len(api.params, 4)
}

func (suite *PolygonProviderTestSuite) TestGetActiveSymbolsError() {
	provider := suite.newProvider(&mockPolygonAPIClient{err: errors.New("unauthorized")}, []string{"AAPL"})
	_, err := provider.GetActiveSymbols(context.Background(), 0)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
}
