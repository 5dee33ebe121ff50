package provider

import (
	"context"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
)

// ProviderType selects the market data backend.
type ProviderType string

const (
	ProviderLive      ProviderType = "live"
	ProviderPolygon   ProviderType = "polygon"
	ProviderSimulated ProviderType = "simulated"
	ProviderFile      ProviderType = "file"
)

// MarketDataProvider is the capability the environment session needs from a data source.
type MarketDataProvider interface {
	// GetActiveSymbols returns the tradable symbols whose recent volume is at least minVolume.
	GetActiveSymbols(ctx context.Context, minVolume float64) ([]string, error)
	// FetchHistoricalData returns up to limit bars ordered by time, oldest first.
	// Unknown symbols fail with ErrCodeUnsupportedSymbol.
	FetchHistoricalData(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) ([]types.Bar, error)
}

// Config carries the settings any provider may need. Providers ignore fields they do not use.
type Config struct {
	// APIKey and APISecret are the Binance credentials. Public market data works without them.
	APIKey    string
	APISecret string
	// PolygonAPIKey is required by the polygon provider.
	PolygonAPIKey string
	// Symbols restricts GetActiveSymbols to a watchlist. Required by the polygon provider.
	Symbols []string
	// Seed makes the simulated provider reproducible.
	Seed int64
	// Sink receives simulation events. Nil discards them.
	Sink events.Sink
	// DataPath is the Parquet file read by the file provider.
	DataPath string
}

// NewMarketDataProvider creates a market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config Config) (MarketDataProvider, error) {
	switch providerType {
	case ProviderLive:
		return NewLiveMarketDataProvider(config.APIKey, config.APISecret, config.Symbols), nil
	case ProviderPolygon:
		polygonProvider, err := NewPolygonMarketDataProvider(config.PolygonAPIKey, config.Symbols)
		if err != nil {
			return nil, err
		}

		return polygonProvider, nil
	case ProviderSimulated:
		return NewSimulatedMarketDataProvider(config.Seed, config.Symbols, config.Sink), nil
	case ProviderFile:
		fileProvider, err := NewParquetMarketDataProvider(config.DataPath, config.Symbols)
		if err != nil {
			return nil, err
		}

		return fileProvider, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func validateFetch(symbol string, timeframe marketdata.Timespan, limit int) error {
	if symbol == "" {
		return errors.New(errors.ErrCodeUnsupportedSymbol, "symbol is required")
	}

	if err := timeframe.Validate(); err != nil {
		return err
	}

	if limit <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	return nil
}
