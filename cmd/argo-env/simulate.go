package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/journal"
	"github.com/rxtech-lab/argo-trading-env/internal/logger"
	"github.com/rxtech-lab/argo-trading-env/internal/session"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// SimulateOptions controls a simulate run.
type SimulateOptions struct {
	Episodes int
	Seed     int64
	Policy   PolicyType
	// Scale bounds the buy signal of every asset.
	Scale float64
	// JournalPath stores the journal in a DuckDB file; empty keeps it in memory.
	JournalPath string
	// ExportDir receives the journal tables as Parquet files when set.
	ExportDir string
	// StatsPath receives the episode statistics as YAML when set.
	StatsPath string
	// Pattern and Condition shape the simulated market. Ignored by other providers.
	Pattern   provider.SimulationPattern
	Condition provider.MarketCondition
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run episodes with a built-in policy to check the environment end to end",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "episodes", Aliases: []string{"n"}, Usage: "Number of episodes", Value: 1},
			&cli.IntFlag{Name: "seed", Usage: "Seed of the first episode, defaults to market.seed"},
			&cli.StringFlag{
				Name:  "policy",
				Usage: fmt.Sprintf("Action policy: %s, %s, %s", PolicyRandom, PolicyHold, PolicyMeanVariance),
				Value: string(PolicyRandom),
			},
			&cli.FloatFlag{Name: "scale", Usage: "Largest buy signal per asset", Value: 0.05},
			&cli.StringFlag{Name: "journal", Usage: "DuckDB `FILE` to keep the episode journal in"},
			&cli.StringFlag{Name: "export", Usage: "Export the journal as Parquet into `DIR`"},
			&cli.StringFlag{Name: "stats", Usage: "Write episode statistics as YAML to `FILE`"},
			&cli.StringFlag{Name: "pattern", Usage: "Simulated price pattern: random_walk, increasing, decreasing, volatile"},
			&cli.StringFlag{Name: "condition", Usage: "Simulated market condition: bullish, bearish, sideways"},
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

			opts := SimulateOptions{
				Episodes:    int(cmd.Int("episodes")),
				Seed:        cfg.Market.Seed,
				Policy:      PolicyType(cmd.String("policy")),
				Scale:       cmd.Float("scale"),
				JournalPath: cmd.String("journal"),
				ExportDir:   cmd.String("export"),
				StatsPath:   cmd.String("stats"),
				Pattern:     provider.SimulationPattern(cmd.String("pattern")),
				Condition:   provider.MarketCondition(cmd.String("condition")),
			}
			if cmd.IsSet("seed") {
				opts.Seed = int64(cmd.Int("seed"))
			}

			stats, err := RunSimulation(ctx, cfg, opts, log, cmd.Root().Writer)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, RenderSummary(stats))

			return nil
		},
	}
}

// RunSimulation builds one session from cfg and runs opts.Episodes episodes on it.
// Episode i is reset with opts.Seed + i. Progress is drawn on out.
func RunSimulation(ctx context.Context, cfg *config.Config, opts SimulateOptions, log *logger.Logger, out io.Writer) ([]types.EpisodeStats, error) {
	if opts.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", opts.Episodes)
	}

	j, err := journal.New(opts.JournalPath, log)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	sink := events.NewMultiSink(events.NewLoggerSink(log), j)

	sessionOpts := []session.Option{session.WithSink(sink)}

	simulated, err := simulatedProvider(cfg, opts, sink)
	if err != nil {
		return nil, err
	}

	if simulated != nil {
		sessionOpts = append(sessionOpts, session.WithProvider(simulated))
	}

	s, err := session.New(ctx, cfg, sessionOpts...)
	if err != nil {
		return nil, err
	}

	policy, err := NewPolicy(opts.Policy, s.Dataset.Series, opts.Seed, opts.Scale)
	if err != nil {
		return nil, err
	}

	all := make([]types.EpisodeStats, 0, opts.Episodes)

	for i := 0; i < opts.Episodes; i++ {
		stats, err := runEpisode(ctx, s, policy, opts.Seed+int64(i), out)
		if err != nil {
			return nil, err
		}

		log.Info("episode finished",
			zap.String("episode_id", stats.ID),
			zap.Int("steps", stats.Steps),
			zap.Float64("total_reward", stats.TotalReward),
			zap.Float64("final_value", stats.FinalValue),
		)

		all = append(all, stats)
	}

	if err := j.Err(); err != nil {
		return nil, err
	}

	if opts.ExportDir != "" {
		paths, err := j.Export(opts.ExportDir)
		if err != nil {
			return nil, err
		}

		for i := range all {
			all[i].JournalPath = opts.ExportDir
		}

		log.Info("journal exported", zap.Strings("files", paths))
	}

	if opts.StatsPath != "" {
		if err := types.WriteEpisodeStats(opts.StatsPath, all); err != nil {
			return nil, err
		}
	}

	return all, nil
}

func runEpisode(ctx context.Context, s *session.Session, policy Policy, seed int64, out io.Writer) (types.EpisodeStats, error) {
	env := s.Environment

	obs, info := env.Reset(optional.Some(seed))
	stats := types.EpisodeStats{
		ID:           env.EpisodeID(),
		Timestamp:    time.Now(),
		Seed:         seed,
		Symbols:      env.Assets(),
		InitialValue: info.PortfolioValue,
		FinalValue:   info.PortfolioValue,
	}

	bar := progressbar.NewOptions(env.Len()-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(fmt.Sprintf("episode seed=%d", seed)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for !env.Done() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result := env.Step(policy.Act(env.CurrentStep(), obs))
		stats.Record(result)
		obs = result.Observation

		_ = bar.Add(1)
	}

	_ = bar.Finish()
	s.Portfolio.LogSummary()

	return stats, nil
}

// simulatedProvider returns a simulated provider shaped by opts, or nil when the
// configured provider is used unchanged.
func simulatedProvider(cfg *config.Config, opts SimulateOptions, sink events.Sink) (*provider.SimulatedMarketDataProvider, error) {
	if opts.Pattern == "" && opts.Condition == "" {
		return nil, nil
	}

	if cfg.Market.Provider != provider.ProviderSimulated {
		return nil, fmt.Errorf("--pattern and --condition need market.provider %q, got %q", provider.ProviderSimulated, cfg.Market.Provider)
	}

	p := provider.NewSimulatedMarketDataProvider(cfg.Market.Seed, cfg.Market.Symbols, sink)

	if opts.Pattern != "" {
		if err := p.SetPattern(opts.Pattern); err != nil {
			return nil, err
		}
	}

	if opts.Condition != "" {
		if err := p.SimulateMarketConditions(opts.Condition); err != nil {
			return nil, err
		}
	}

	return p, nil
}
