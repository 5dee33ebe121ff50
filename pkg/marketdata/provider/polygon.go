package provider

import (
	"context"
	"slices"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
)

// PolygonAPIClient is the subset of the polygon REST client the provider calls.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

// PolygonAggsIterator iterates over aggregate bars.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

type polygonClientAdapter struct {
	client *polygon.Client
}

func (a *polygonClientAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonMarketDataProvider reads aggregate bars from polygon.io.
// Polygon has no volume screener for arbitrary tickers, so the watchlist is mandatory.
type PolygonMarketDataProvider struct {
	apiClient PolygonAPIClient
	watchlist []string
	now       func() time.Time
}

// NewPolygonMarketDataProvider creates a provider for the given API key and watchlist.
func NewPolygonMarketDataProvider(apiKey string, watchlist []string) (*PolygonMarketDataProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "polygon provider requires an API key")
	}

	return NewPolygonMarketDataProviderWithAPI(&polygonClientAdapter{client: polygon.New(apiKey)}, watchlist)
}

// NewPolygonMarketDataProviderWithAPI creates a provider over the given API client.
func NewPolygonMarketDataProviderWithAPI(apiClient PolygonAPIClient, watchlist []string) (*PolygonMarketDataProvider, error) {
	if len(watchlist) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "polygon provider requires market.symbols")
	}

	return &PolygonMarketDataProvider{
		apiClient: apiClient,
		watchlist: watchlist,
		now:       time.Now,
	}, nil
}

// GetActiveSymbols returns the watchlist symbols whose latest daily volume is at least minVolume, sorted.
func (p *PolygonMarketDataProvider) GetActiveSymbols(ctx context.Context, minVolume float64) ([]string, error) {
	active := make([]string, 0, len(p.watchlist))

	for _, symbol := range p.watchlist {
		aggs, err := p.latestAggs(ctx, symbol, marketdata.TimespanOneDay, 1)
		if err != nil {
			return nil, err
		}

		if len(aggs) == 0 {
			continue
		}

		if aggs[0].Volume >= minVolume {
			active = append(active, symbol)
		}
	}

	slices.Sort(active)

	return active, nil
}

// FetchHistoricalData returns the latest limit aggregates of symbol, oldest first.
func (p *PolygonMarketDataProvider) FetchHistoricalData(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]types.Bar, error) {
	if err := validateFetch(symbol, timeframe, limit); err != nil {
		return nil, err
	}

	aggs, err := p.latestAggs(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}

	if len(aggs) == 0 {
		return nil, errors.Newf(errors.ErrCodeUnsupportedSymbol, "no aggregates returned for %s", symbol)
	}

	bars := make([]types.Bar, len(aggs))

	// aggs are newest first
	for i, agg := range aggs {
		bars[len(aggs)-1-i] = types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Symbol: symbol,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}
	}

	return bars, nil
}

// latestAggs returns at most limit aggregates, newest first. The query window is twice
// the requested span plus a week so that weekends and holidays do not shorten the result.
func (p *PolygonMarketDataProvider) latestAggs(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]models.Agg, error) {
	to := p.now()
	from := to.Add(-2*time.Duration(limit)*timeframe.Duration() - 7*24*time.Hour)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: timeframe.Multiplier(),
		Timespan:   timeframe.Timespan(),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Desc).WithLimit(min(limit, 50000))

	iter := p.apiClient.ListAggs(ctx, params)

	aggs := make([]models.Agg, 0, limit)
	for len(aggs) < limit && iter.Next() {
		aggs = append(aggs, iter.Item())
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch aggregates for %s from polygon", symbol)
	}

	return aggs, nil
}
