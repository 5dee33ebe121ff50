package swiftargo

import (
	"context"
	"sync"

	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/download"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

type MarketDownloader struct {
	helper     MarketDownloaderHelper
	provider   string
	writer     string
	dataFolder string
	apiKey     string
	apiSecret  string
	polygonKey string

	// Cancellation support
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

type MarketDownloaderHelper interface {
	OnDownloadProgress(current, total float64, message string)
}

// NewMarketDownloader creates a downloader. apiKey and apiSecret are the Binance
// credentials of the live provider, polygonKey the key of the polygon provider.
func NewMarketDownloader(helper MarketDownloaderHelper, provider, writer, dataFolder, apiKey, apiSecret, polygonKey string) *MarketDownloader {
	return &MarketDownloader{
		helper:     helper,
		provider:   provider,
		writer:     writer,
		dataFolder: dataFolder,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		polygonKey: polygonKey,
		mu:         sync.Mutex{},
		cancelFunc: nil,
	}
}

// Download fetches limit bars of every symbol and returns the Parquet file path.
// This method is blocking. Can be cancelled by calling Cancel() from another goroutine.
func (m *MarketDownloader) Download(symbols StringCollection, interval string, limit int, withIndicators bool) (string, error) {
	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())

	// Store cancel function with mutex protection
	m.mu.Lock()
	m.cancelFunc = cancel
	m.mu.Unlock()

	// Ensure we clean up the cancel function when done
	defer func() {
		m.mu.Lock()
		m.cancelFunc = nil
		m.mu.Unlock()
		cancel()
	}()

	tickers := make([]string, 0, symbols.Size())
	for i := 0; i < symbols.Size(); i++ {
		tickers = append(tickers, symbols.Get(i))
	}

	client, err := download.NewClient(download.ClientConfig{
		ProviderType: provider.ProviderType(m.provider),
		WriterType:   download.WriterType(m.writer),
		DataPath:     m.dataFolder,
		ProviderConfig: provider.Config{
			APIKey:        m.apiKey,
			APISecret:     m.apiSecret,
			PolygonAPIKey: m.polygonKey,
			Symbols:       tickers,
		},
	}, func(current, total float64, message string) {
		if m.helper != nil {
			m.helper.OnDownloadProgress(current, total, message)
		}
	})
	if err != nil {
		return "", err
	}

	return client.Download(ctx, download.DownloadParams{
		Symbols:        tickers,
		Timeframe:      marketdata.Timespan(interval),
		Limit:          limit,
		WithIndicators: withIndicators,
	})
}

// Cancel cancels any in-progress download.
// This method is safe to call from any goroutine (e.g., Swift's main thread).
// Returns true if a download was cancelled, false if no download was in progress.
func (m *MarketDownloader) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelFunc != nil {
		m.cancelFunc()
		m.cancelFunc = nil

		return true
	}

	return false
}
