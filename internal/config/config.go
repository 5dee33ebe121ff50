// Package config loads the structured configuration of a simulation session.
//
// A configuration file has four required sections. Every required key must be
// present and the Binance credentials must be set in the environment (or in the
// dotenv file loaded first); otherwise Load returns a single *errors.ConfigError
// naming every missing or invalid field.
package config

import (
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

// Config is the whole configuration file plus the credentials read from the environment.
type Config struct {
	Binance     BinanceConfig     `yaml:"binance" json:"binance" jsonschema:"required,title=Binance,description=Exchange account used by the live provider"`
	Training    TrainingConfig    `yaml:"training" json:"training" jsonschema:"required,title=Training,description=Parameters handed to the learning algorithm"`
	Environment EnvironmentConfig `yaml:"environment" json:"environment" jsonschema:"required,title=Environment,description=Market data and portfolio parameters of the trading environment"`
	Market      MarketConfig      `yaml:"market" json:"market" jsonschema:"required,title=Market,description=Market data provider selection"`

	// Credentials are never read from or written to the configuration file.
	Credentials Credentials `yaml:"-" json:"-"`
	// Source is the file the configuration was loaded from.
	Source string `yaml:"-" json:"-"`
}

type BinanceConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key" jsonschema:"required,title=API Key,description=Binance API key"`
	APISecret string `yaml:"api_secret" json:"api_secret" jsonschema:"required,title=API Secret,description=Binance API secret key"`
}

// TrainingConfig is consumed by the learning algorithm, not by the environment.
type TrainingConfig struct {
	LearningRate       float64 `yaml:"learning_rate" json:"learning_rate" validate:"gt=0" jsonschema:"required,title=Learning Rate,exclusiveMinimum=0"`
	Gamma              float64 `yaml:"gamma" json:"gamma" validate:"gte=0,lte=1" jsonschema:"required,title=Discount Factor,minimum=0,maximum=1"`
	GAELambda          float64 `yaml:"gae_lambda" json:"gae_lambda" validate:"gte=0,lte=1" jsonschema:"required,title=GAE Lambda,minimum=0,maximum=1"`
	EntCoef            float64 `yaml:"ent_coef" json:"ent_coef" validate:"gte=0" jsonschema:"required,title=Entropy Coefficient,minimum=0"`
	TotalTimesteps     int     `yaml:"total_timesteps" json:"total_timesteps" validate:"gt=0" jsonschema:"required,title=Total Timesteps,exclusiveMinimum=0"`
	CheckpointInterval int     `yaml:"checkpoint_interval" json:"checkpoint_interval" validate:"gt=0" jsonschema:"required,title=Checkpoint Interval,exclusiveMinimum=0"`
	// NumEnvs is the number of independent environments run side by side.
	NumEnvs int `yaml:"num_envs" json:"num_envs" validate:"gte=1" jsonschema:"title=Parallel Environments,minimum=1,default=1"`
}

type EnvironmentConfig struct {
	MinVolume   float64             `yaml:"min_volume" json:"min_volume" validate:"gte=0" jsonschema:"required,title=Minimum Volume,description=Minimum 24h quote volume of a tradable symbol,minimum=0"`
	Fee         float64             `yaml:"fee" json:"fee" validate:"gte=0,lt=1" jsonschema:"required,title=Fee,description=Fee rate applied to the notional of every trade,minimum=0"`
	Timeframe   marketdata.Timespan `yaml:"timeframe" json:"timeframe" validate:"timespan" jsonschema:"required,title=Timeframe,description=Bar interval"`
	DataLimit   int                 `yaml:"data_limit" json:"data_limit" validate:"gte=2" jsonschema:"required,title=Data Limit,description=Number of bars fetched per symbol,minimum=2"`
	RiskLimit   float64             `yaml:"risk_limit" json:"risk_limit" validate:"gt=0,lte=1" jsonschema:"required,title=Risk Limit,description=Initial maximum fraction of the balance a single trade may use"`
	GrowthLimit float64             `yaml:"growth_limit" json:"growth_limit" validate:"gt=0,lte=1" jsonschema:"required,title=Growth Limit,description=Initial maximum fraction of total value a single position may reach"`

	InitialBalance float64               `yaml:"initial_balance" json:"initial_balance" validate:"gt=0" jsonschema:"title=Initial Balance,exclusiveMinimum=0,default=10000"`
	Slippage       float64               `yaml:"slippage" json:"slippage" validate:"gte=0,lt=1" jsonschema:"title=Slippage,description=Maximum relative deviation of the executed price,minimum=0,default=0.01"`
	MaxDrawdown    float64               `yaml:"max_drawdown" json:"max_drawdown" validate:"gte=0,lt=1" jsonschema:"title=Max Drawdown,description=Halt trading once value falls this far below its peak; 0 disables,minimum=0"`
	Profile        portfolio.Profile     `yaml:"profile" json:"profile" validate:"oneof=enhanced basic" jsonschema:"title=Profile,description=enhanced enforces slippage and limits; basic only checks balance and holdings"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" validate:"oneof=proportional interactive_broker zero_commission" jsonschema:"title=Broker,description=Fee model"`
	Indicators     []types.IndicatorType `yaml:"indicators" json:"indicators" validate:"dive,oneof=rsi roc macd bollinger_bands adx ema atr ma obv" jsonschema:"title=Indicators,description=Indicator columns appended to every series; empty uses all"`
}

type MarketConfig struct {
	MinVolume float64               `yaml:"min_volume" json:"min_volume" validate:"gte=0" jsonschema:"required,title=Minimum Volume,minimum=0"`
	Provider  provider.ProviderType `yaml:"provider" json:"provider" validate:"oneof=live polygon simulated file" jsonschema:"title=Provider,description=Market data source"`
	// Symbols restricts the tradable universe. Required by the polygon provider.
	Symbols []string `yaml:"symbols" json:"symbols" validate:"dive,required" jsonschema:"title=Symbols"`
	// Seed drives the simulated provider.
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed"`
	// DataPath is the Parquet file read by the file provider.
	DataPath string `yaml:"data_path,omitempty" json:"data_path,omitempty" validate:"required_if=Provider file" jsonschema:"title=Data Path,description=Parquet file written by the download command"`
}

// Credentials are read from the process environment and the dotenv file.
type Credentials struct {
	BinanceAPIKey    string
	BinanceSecretKey string
	PolygonAPIKey    string
}

// Default returns the values used for every optional key the file leaves out.
func Default() Config {
	defaults := portfolio.DefaultConfig()

	return Config{
		Training: TrainingConfig{
			NumEnvs: 1,
		},
		Environment: EnvironmentConfig{
			InitialBalance: defaults.InitialBalance,
			Slippage:       defaults.SlippageFactor,
			Profile:        defaults.Profile,
			Broker:         defaults.Broker,
		},
		Market: MarketConfig{
			Provider: provider.ProviderLive,
		},
	}
}

// PortfolioConfig returns the parameters of the session's portfolio.
func (c *Config) PortfolioConfig() portfolio.Config {
	return portfolio.Config{
		InitialBalance: c.Environment.InitialBalance,
		FeeRate:        c.Environment.Fee,
		Broker:         c.Environment.Broker,
		RiskLimit:      c.Environment.RiskLimit,
		GrowthLimit:    c.Environment.GrowthLimit,
		SlippageFactor: c.Environment.Slippage,
		Profile:        c.Environment.Profile,
	}
}

// ProviderConfig returns the parameters of the configured market data provider.
// Credentials from the environment take precedence over the file.
func (c *Config) ProviderConfig(sink events.Sink) provider.Config {
	apiKey := c.Credentials.BinanceAPIKey
	if apiKey == "" {
		apiKey = c.Binance.APIKey
	}

	apiSecret := c.Credentials.BinanceSecretKey
	if apiSecret == "" {
		apiSecret = c.Binance.APISecret
	}

	return provider.Config{
		APIKey:        apiKey,
		APISecret:     apiSecret,
		PolygonAPIKey: c.Credentials.PolygonAPIKey,
		Symbols:       c.Market.Symbols,
		Seed:          c.Market.Seed,
		Sink:          sink,
		DataPath:      c.Market.DataPath,
	}
}
