// Package download fetches bars from a market data provider and stores them as Parquet.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-trading-env/internal/indicator"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/writer"
)

// WriterType defines the type of bar writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// OnDownloadProgress is called after each symbol with the number of symbols done.
type OnDownloadProgress = func(current float64, total float64, message string)

// ClientConfig holds the configuration for the download client.
type ClientConfig struct {
	ProviderType   provider.ProviderType `validate:"required,oneof=live polygon simulated file"`
	WriterType     WriterType            `validate:"required,oneof=duckdb"`
	DataPath       string                `validate:"required"`
	ProviderConfig provider.Config       `validate:"-"`
}

// DownloadParams holds the parameters for a download request.
type DownloadParams struct {
	Symbols   []string            `validate:"required,min=1,dive,required"`
	Timeframe marketdata.Timespan `validate:"required"`
	Limit     int                 `validate:"required,min=1"`
	// WithIndicators runs the default indicator pipeline before writing.
	WithIndicators bool
}

// Client downloads bars from a provider and stores them using a writer.
type Client struct {
	provider   provider.MarketDataProvider
	config     ClientConfig
	validate   *validator.Validate
	onProgress OnDownloadProgress
}

// NewClient creates a download client with the provider selected by config.
func NewClient(config ClientConfig, onProgress OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.ProviderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", config.ProviderType, err)
	}

	return NewClientWithProvider(marketProvider, config, onProgress), nil
}

// NewClientWithProvider creates a download client over an existing provider.
func NewClientWithProvider(marketProvider provider.MarketDataProvider, config ClientConfig, onProgress OnDownloadProgress) *Client {
	if onProgress == nil {
		onProgress = func(float64, float64, string) {}
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
	}
}

// ActiveSymbols returns the symbols the provider trades above minVolume.
func (c *Client) ActiveSymbols(ctx context.Context, minVolume float64) ([]string, error) {
	return c.provider.GetActiveSymbols(ctx, minVolume)
}

// Download fetches every symbol and writes all bars into one Parquet file, returning its path.
func (c *Client) Download(ctx context.Context, params DownloadParams) (outputPath string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", fmt.Errorf("invalid download parameters: %w", err)
	}

	if err := params.Timeframe.Validate(); err != nil {
		return "", err
	}

	barWriter, err := c.setupWriter(params)
	if err != nil {
		return "", fmt.Errorf("failed to setup writer: %w", err)
	}

	return c.DownloadTo(ctx, params, barWriter)
}

// DownloadTo fetches every symbol into an initialized barWriter and finalizes it.
// barWriter is closed before returning.
func (c *Client) DownloadTo(ctx context.Context, params DownloadParams, barWriter writer.BarWriter) (outputPath string, err error) {
	defer func() {
		if cerr := barWriter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close writer: %w", cerr)
		}
	}()

	pipeline := indicator.DefaultPipeline()
	total := float64(len(params.Symbols))

	for i, symbol := range params.Symbols {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		bars, err := c.provider.FetchHistoricalData(ctx, symbol, params.Timeframe, params.Limit)
		if err != nil {
			return "", fmt.Errorf("failed to fetch %s: %w", symbol, err)
		}

		if params.WithIndicators {
			series, err := pipeline.AddAllIndicators(types.Series{Symbol: symbol, Indicators: nil, Bars: bars})
			if err != nil {
				return "", fmt.Errorf("failed to compute indicators for %s: %w", symbol, err)
			}

			bars = series.Bars
		}

		for _, bar := range bars {
			if err := barWriter.Write(bar); err != nil {
				return "", fmt.Errorf("failed to write %s: %w", symbol, err)
			}
		}

		c.onProgress(float64(i+1), total, fmt.Sprintf("Downloaded %d bars of %s", len(bars), symbol))
	}

	outputPath, err = barWriter.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// setupWriter initializes the writer configured for the client.
func (c *Client) setupWriter(params DownloadParams) (writer.BarWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data path %s: %w", c.config.DataPath, err)
		}

		outputPath := filepath.Join(c.config.DataPath, OutputFileName(params))
		duckdbWriter := writer.NewDuckDBWriter(outputPath)

		if err := duckdbWriter.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize DuckDB writer at %s: %w", outputPath, err)
		}

		return duckdbWriter, nil
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", c.config.WriterType)
	}
}

// OutputFileName builds SYMBOLS_TIMEFRAME_LIMIT.parquet, e.g. BTC-USDT+ETH-USDT_1h_500.parquet.
func OutputFileName(params DownloadParams) string {
	symbols := make([]string, len(params.Symbols))
	for i, s := range params.Symbols {
		symbols[i] = strings.ReplaceAll(s, "/", "-")
	}

	return fmt.Sprintf("%s_%s_%d.parquet", strings.Join(symbols, "+"), params.Timeframe, params.Limit)
}
