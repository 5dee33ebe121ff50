package config

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

// GenerateSchema returns the JSON schema of a configuration file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		Mapper:                     enumSchema,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "argo-trading-env-config"
	schema.Description = "Configuration of a trading environment session"

	return schema
}

// SchemaJSON returns GenerateSchema as indented JSON.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func enumSchema(t reflect.Type) *jsonschema.Schema {
	var values []any

	switch t {
	case reflect.TypeOf(marketdata.Timespan("")):
		for _, ts := range marketdata.AllTimespans {
			values = append(values, string(ts))
		}
	case reflect.TypeOf(commission_fee.Broker("")):
		values = commission_fee.AllBrokers
	case reflect.TypeOf(portfolio.Profile("")):
		values = []any{string(portfolio.ProfileEnhanced), string(portfolio.ProfileBasic)}
	case reflect.TypeOf(provider.ProviderType("")):
		values = []any{string(provider.ProviderLive), string(provider.ProviderPolygon), string(provider.ProviderSimulated), string(provider.ProviderFile)}
	case reflect.TypeOf(types.IndicatorType("")):
		for _, it := range types.AllIndicatorTypes {
			values = append(values, string(it))
		}
	default:
		return nil
	}

	return &jsonschema.Schema{
		Type: "string",
		Enum: values,
	}
}
