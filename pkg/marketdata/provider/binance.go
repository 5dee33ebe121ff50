package provider

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
)

// binanceMaxKlines is the largest page the klines endpoint returns.
const binanceMaxKlines = 1000

// binanceInvalidSymbol is the API error code for an unknown symbol.
const binanceInvalidSymbol = -1121

// BinanceAPIClient is the subset of the Binance REST client the provider calls.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
	NewListPriceChangeStatsService() BinancePriceChangeStatsService
}

// BinanceKlinesService builds and runs a klines request.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinancePriceChangeStatsService lists the 24h ticker statistics of every symbol.
type BinancePriceChangeStatsService interface {
	Do(ctx context.Context) ([]*binance.PriceChangeStats, error)
}

type binanceClientAdapter struct {
	client *binance.Client
}

func (a *binanceClientAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

func (a *binanceClientAdapter) NewListPriceChangeStatsService() BinancePriceChangeStatsService {
	return &binanceStatsAdapter{service: a.client.NewListPriceChangeStatsService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.service = a.service.Symbol(symbol)

	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.service = a.service.Interval(interval)

	return a
}

func (a *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	a.service = a.service.Limit(limit)

	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.service = a.service.EndTime(endTime)

	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.service.Do(ctx)
}

type binanceStatsAdapter struct {
	service *binance.ListPriceChangeStatsService
}

func (a *binanceStatsAdapter) Do(ctx context.Context) ([]*binance.PriceChangeStats, error) {
	return a.service.Do(ctx)
}

// LiveMarketDataProvider reads spot market data from the Binance REST API.
type LiveMarketDataProvider struct {
	apiClient BinanceAPIClient
	watchlist []string
}

// NewLiveMarketDataProvider creates a provider backed by the Binance REST API.
// Symbols may be written either as "BTC/USDT" or "BTCUSDT".
func NewLiveMarketDataProvider(apiKey, apiSecret string, watchlist []string) *LiveMarketDataProvider {
	return NewLiveMarketDataProviderWithAPI(&binanceClientAdapter{client: binance.NewClient(apiKey, apiSecret)}, watchlist)
}

// NewLiveMarketDataProviderWithAPI creates a provider over the given API client.
func NewLiveMarketDataProviderWithAPI(apiClient BinanceAPIClient, watchlist []string) *LiveMarketDataProvider {
	return &LiveMarketDataProvider{
		apiClient: apiClient,
		watchlist: watchlist,
	}
}

// GetActiveSymbols returns the symbols whose 24h quote volume is at least minVolume, sorted.
// With a watchlist, only watchlist symbols are returned, in their watchlist spelling.
func (p *LiveMarketDataProvider) GetActiveSymbols(ctx context.Context, minVolume float64) ([]string, error) {
	stats, err := p.apiClient.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch ticker statistics from Binance", err)
	}

	names := make(map[string]string, len(p.watchlist))
	for _, s := range p.watchlist {
		names[binanceSymbol(s)] = s
	}

	active := make([]string, 0)

	for _, stat := range stats {
		if stat == nil {
			continue
		}

		volume, err := strconv.ParseFloat(stat.QuoteVolume, 64)
		if err != nil || volume < minVolume {
			continue
		}

		if len(names) == 0 {
			active = append(active, stat.Symbol)

			continue
		}

		if name, ok := names[stat.Symbol]; ok {
			active = append(active, name)
		}
	}

	slices.Sort(active)

	return active, nil
}

// FetchHistoricalData returns the latest limit klines of symbol, paging backwards
// through the API when limit exceeds one page.
func (p *LiveMarketDataProvider) FetchHistoricalData(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]types.Bar, error) {
	if err := validateFetch(symbol, timeframe, limit); err != nil {
		return nil, err
	}

	var pages [][]*binance.Kline

	remaining := limit
	endTime := int64(0)

	for remaining > 0 {
		size := min(remaining, binanceMaxKlines)

		service := p.apiClient.NewKlinesService().
			Symbol(binanceSymbol(symbol)).
			Interval(string(timeframe)).
			Limit(size)
		if endTime > 0 {
			service = service.EndTime(endTime)
		}

		klines, err := service.Do(ctx)
		if err != nil {
			return nil, binanceError(symbol, err)
		}

		if len(klines) == 0 {
			break
		}

		pages = append(pages, klines)
		remaining -= len(klines)
		endTime = klines[0].OpenTime - 1

		if len(klines) < size {
			break
		}
	}

	if len(pages) == 0 {
		return nil, errors.Newf(errors.ErrCodeUnsupportedSymbol, "no klines returned for %s", symbol)
	}

	bars := make([]types.Bar, 0, limit-remaining)

	for i := len(pages) - 1; i >= 0; i-- {
		for _, k := range pages[i] {
			bar, err := klineToBar(symbol, k)
			if err != nil {
				return nil, err
			}

			bars = append(bars, bar)
		}
	}

	return bars, nil
}

func klineToBar(symbol string, k *binance.Kline) (types.Bar, error) {
	raw := []string{k.Open, k.High, k.Low, k.Close, k.Volume}
	values := make([]float64, len(raw))

	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", s, symbol)
		}

		values[i] = v
	}

	return types.Bar{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Symbol: symbol,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func binanceError(symbol string, err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == binanceInvalidSymbol {
		return errors.Wrapf(errors.ErrCodeUnsupportedSymbol, err, "symbol %s is not supported by Binance", symbol)
	}

	return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", symbol)
}

// binanceSymbol converts "btc/usdt" to the exchange spelling "BTCUSDT".
func binanceSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
