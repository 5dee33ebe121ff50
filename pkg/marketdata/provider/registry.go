package provider

import (
	"slices"

	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	// RequiresSymbols is set when the provider cannot discover symbols without a watchlist.
	RequiresSymbols bool `json:"requiresSymbols"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderLive: {
		Name:            string(ProviderLive),
		DisplayName:     "Binance",
		Description:     "Cryptocurrency spot klines and 24h ticker volume from the Binance REST API",
		RequiresAuth:    false,
		RequiresSymbols: false,
	},
	ProviderPolygon: {
		Name:            string(ProviderPolygon),
		DisplayName:     "Polygon.io",
		Description:     "Aggregate bars for stocks and crypto tickers from polygon.io",
		RequiresAuth:    true,
		RequiresSymbols: true,
	},
	ProviderSimulated: {
		Name:            string(ProviderSimulated),
		DisplayName:     "Simulated market",
		Description:     "Seeded random-walk bars with volatility and trend columns for offline training",
		RequiresAuth:    false,
		RequiresSymbols: false,
	},
	ProviderFile: {
		Name:            string(ProviderFile),
		DisplayName:     "Parquet file",
		Description:     "Bars previously stored by the download command, resampled to the session timeframe",
		RequiresAuth:    false,
		RequiresSymbols: false,
	},
}

// GetSupportedProviders returns the names of all supported providers, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	slices.Sort(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}
