package swiftargo

import (
	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/internal/version"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

// GetEnvironmentConfigSchema returns the JSON schema of the environment configuration.
func GetEnvironmentConfigSchema() string {
	schema, err := config.SchemaJSON()
	if err != nil {
		return ""
	}

	return schema
}

// GetEnvironmentVersion returns the version of the environment library.
func GetEnvironmentVersion() string {
	return version.GetVersion()
}

// GetSupportedMarketDataProviders returns the provider names accepted by market.provider.
func GetSupportedMarketDataProviders() StringCollection {
	return &StringArray{items: provider.GetSupportedProviders()}
}

// GetSupportedIndicators returns the indicator names accepted by environment.indicators.
func GetSupportedIndicators() StringCollection {
	array := NewStringArray()
	for _, indicator := range types.AllIndicatorTypes {
		array.Add(string(indicator))
	}

	return array
}
