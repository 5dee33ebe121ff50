package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "symbols",
		Usage: "List the symbols the configured provider considers active",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "min-volume",
				Usage: "Override environment.min_volume",
				Value: -1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			marketProvider, err := provider.NewMarketDataProvider(cfg.Market.Provider, cfg.ProviderConfig(events.NewLoggerSink(log)))
			if err != nil {
				return err
			}

			if closer, ok := marketProvider.(io.Closer); ok {
				defer closer.Close()
			}

			minVolume := cfg.Environment.MinVolume
			if v := cmd.Float("min-volume"); v >= 0 {
				minVolume = v
			}

			symbols, err := marketProvider.GetActiveSymbols(ctx, minVolume)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, TitleStyle.Render(fmt.Sprintf("%d active symbols on %s (min volume %g)", len(symbols), cfg.Market.Provider, minVolume)))

			for _, symbol := range symbols {
				fmt.Fprintln(cmd.Root().Writer, symbol)
			}

			return nil
		},
	}
}
