package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/download"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// downloadAction fetches the requested symbols with the configured provider and stores
// them as one Parquet file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	timeframe := cfg.Environment.Timeframe
	if cmd.IsSet("timeframe") {
		timeframe = marketdata.Timespan(cmd.String("timeframe"))
	}

	limit := cfg.Environment.DataLimit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}

	providerType := cfg.Market.Provider
	if cmd.IsSet("provider") {
		providerType = provider.ProviderType(cmd.String("provider"))
	}

	symbols := cmd.StringSlice("symbols")
	if len(symbols) == 0 {
		symbols = cfg.Market.Symbols
	}

	var bar *progressbar.ProgressBar

	client, err := download.NewClient(download.ClientConfig{
		ProviderType:   providerType,
		WriterType:     download.WriterType(cmd.String("writer")),
		DataPath:       cmd.String("data"),
		ProviderConfig: cfg.ProviderConfig(events.NewLoggerSink(log)),
	}, func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetWriter(cmd.Root().ErrWriter),
				progressbar.OptionShowCount(),
			)
		}

		bar.Describe(message)
		_ = bar.Set(int(current))
	})
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	if len(symbols) == 0 {
		active, err := client.ActiveSymbols(ctx, cfg.Environment.MinVolume)
		if err != nil {
			return err
		}

		symbols = active
	}

	log.Info("starting download",
		zap.Strings("symbols", symbols),
		zap.String("timeframe", string(timeframe)),
		zap.Int("limit", limit),
		zap.String("provider", string(providerType)),
	)

	outputPath, err := client.Download(ctx, download.DownloadParams{
		Symbols:        symbols,
		Timeframe:      timeframe,
		Limit:          limit,
		WithIndicators: cmd.Bool("indicators"),
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Fprintln(cmd.Root().Writer, TitleStyle.Render("Downloaded data to ")+outputPath)

	return nil
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical bars into a Parquet file",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "symbols",
				Aliases: []string{"s"},
				Usage:   "Symbols to download, defaults to market.symbols or the active symbols",
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "Bar interval, defaults to environment.timeframe",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Bars per symbol, defaults to environment.data_limit",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage: fmt.Sprintf("Data provider (%s), defaults to market.provider",
					strings.Join(provider.GetSupportedProviders(), ", ")),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Data writer format (e.g., %s)", download.WriterDuckDB),
				Value:   string(download.WriterDuckDB),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.BoolFlag{
				Name:  "indicators",
				Usage: "Append the default indicator columns before writing",
			},
		},
		Action: downloadAction,
	}
}
