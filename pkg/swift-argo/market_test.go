package swiftargo

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDownloaderHelper implements MarketDownloaderHelper for testing.
type mockDownloaderHelper struct {
	mu            sync.Mutex
	progressCalls []struct {
		current float64
		total   float64
		message string
	}
}

func (m *mockDownloaderHelper) OnDownloadProgress(current, total float64, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progressCalls = append(m.progressCalls, struct {
		current float64
		total   float64
		message string
	}{current, total, message})
}

func symbols(names ...string) StringCollection {
	array := NewStringArray()
	for _, name := range names {
		array.Add(name)
	}

	return array
}

func TestMarketDownloader_Cancel_NoDownloadInProgress(t *testing.T) {
	helper := &mockDownloaderHelper{}
	downloader := NewMarketDownloader(helper, "simulated", "duckdb", "/tmp", "", "", "")

	// Cancel with no download in progress should return false
	cancelled := downloader.Cancel()
	assert.False(t, cancelled)
}

func TestMarketDownloader_Cancel_ThreadSafety(t *testing.T) {
	helper := &mockDownloaderHelper{}
	downloader := NewMarketDownloader(helper, "simulated", "duckdb", "/tmp", "", "", "")

	// Simulate concurrent cancel calls - should not panic
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			downloader.Cancel()
		}()
	}

	wg.Wait()
}

func TestNewMarketDownloader(t *testing.T) {
	helper := &mockDownloaderHelper{}
	downloader := NewMarketDownloader(helper, "live", "duckdb", "/tmp/data", "key", "secret", "poly")

	assert.NotNil(t, downloader)
	assert.Equal(t, "live", downloader.provider)
	assert.Equal(t, "duckdb", downloader.writer)
	assert.Equal(t, "/tmp/data", downloader.dataFolder)
	assert.Equal(t, "key", downloader.apiKey)
	assert.Equal(t, "secret", downloader.apiSecret)
	assert.Equal(t, "poly", downloader.polygonKey)
}

func TestMarketDownloader_Download(t *testing.T) {
	helper := &mockDownloaderHelper{}
	dir := t.TempDir()
	downloader := NewMarketDownloader(helper, "simulated", "duckdb", dir, "", "", "")

	path, err := downloader.Download(symbols("BTC/USDT", "ETH/USDT"), "1h", 30, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "BTC-USDT+ETH-USDT_1h_30.parquet"), path)
	assert.FileExists(t, path)

	require.Len(t, helper.progressCalls, 2)
	assert.Equal(t, 2.0, helper.progressCalls[1].current)
	assert.Equal(t, 2.0, helper.progressCalls[1].total)

	assert.False(t, downloader.Cancel())
}

func TestMarketDownloader_Download_InvalidInterval(t *testing.T) {
	downloader := NewMarketDownloader(nil, "simulated", "duckdb", t.TempDir(), "", "", "")

	_, err := downloader.Download(symbols("BTC/USDT"), "7h", 30, false)
	assert.Error(t, err)
}

func TestMarketDownloader_Download_InvalidProvider(t *testing.T) {
	helper := &mockDownloaderHelper{}
	downloader := NewMarketDownloader(helper, "invalid-provider", "duckdb", t.TempDir(), "", "", "")

	// Invalid provider should return an error when trying to create client
	_, err := downloader.Download(symbols("AAPL"), "1d", 10, false)
	assert.Error(t, err)
}
