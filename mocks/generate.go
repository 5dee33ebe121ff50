package mocks

//go:generate mockgen -destination=./mock_market_data_provider.go -package=mocks github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider MarketDataProvider
//go:generate mockgen -destination=./mock_bar_writer.go -package=mocks github.com/rxtech-lab/argo-trading-env/pkg/marketdata/writer BarWriter
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-trading-env/internal/indicator Indicator
