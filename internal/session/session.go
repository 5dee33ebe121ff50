// Package session builds ready-to-step environments from a configuration: it picks
// the market data provider, selects and fetches the symbols, appends indicators and
// creates the portfolio and environment.
package session

import (
	"context"
	"io"

	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/environment"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/indicator"
	"github.com/rxtech-lab/argo-trading-env/internal/portfolio"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
)

// Session is one portfolio stepping through one environment.
type Session struct {
	Portfolio   *portfolio.Portfolio
	Environment *environment.Environment
	Dataset     *Dataset
}

// Dataset is the market data shared by every session built from it. The series are
// read-only once prepared.
type Dataset struct {
	Symbols []string
	Series  []types.Series
	// Degraded lists the symbols whose indicators could not be computed.
	Degraded []string
	// TrendColumn overrides the column the environment reads trend strength from.
	TrendColumn string
	TrendScale  float64
}

type options struct {
	provider provider.MarketDataProvider
	pipeline *indicator.Pipeline
	sink     events.Sink
	envOpts  []environment.Option
	// ownsProvider is set when the provider was built from the configuration.
	ownsProvider bool
}

// Option configures how a session is built.
type Option func(*options)

// WithProvider replaces the provider the configuration selects.
func WithProvider(p provider.MarketDataProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithPipeline replaces the indicator pipeline the configuration selects.
func WithPipeline(p *indicator.Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithSink routes every provider, portfolio and environment event to sink.
func WithSink(sink events.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithEnvironmentOptions passes extra options to environment.New.
func WithEnvironmentOptions(opts ...environment.Option) Option {
	return func(o *options) {
		o.envOpts = append(o.envOpts, opts...)
	}
}

func resolve(cfg *config.Config, opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.sink == nil {
		o.sink = events.NewNopSink()
	}

	if o.provider == nil {
		p, err := provider.NewMarketDataProvider(cfg.Market.Provider, cfg.ProviderConfig(o.sink))
		if err != nil {
			return nil, err
		}

		o.provider = p
		o.ownsProvider = true
	}

	if o.pipeline == nil {
		p, err := indicator.NewPipelineFromRegistry(indicator.NewDefaultRegistry(), cfg.Environment.Indicators...)
		if err != nil {
			return nil, err
		}

		o.pipeline = p
	}

	return o, nil
}

// release closes a provider the session built once the dataset no longer needs it.
func (o *options) release() {
	if !o.ownsProvider {
		return
	}

	if closer, ok := o.provider.(io.Closer); ok {
		_ = closer.Close()
	}
}

// New prepares the dataset and builds a single session.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	sessions, err := NewVectorized(ctx, cfg, 1, opts...)
	if err != nil {
		return nil, err
	}

	return sessions[0], nil
}

// NewVectorized prepares the dataset once and builds n independent sessions over it.
// n <= 0 uses training.num_envs. Session i seeds its slippage with market.seed + i.
func NewVectorized(ctx context.Context, cfg *config.Config, n int, opts ...Option) ([]*Session, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeMissingConfiguration, "configuration is required")
	}

	if n <= 0 {
		n = max(cfg.Training.NumEnvs, 1)
	}

	o, err := resolve(cfg, opts)
	if err != nil {
		return nil, err
	}

	dataset, err := prepare(ctx, cfg, o)
	o.release()

	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, n)

	for i := 0; i < n; i++ {
		s, err := build(cfg, dataset, o, cfg.Market.Seed+int64(i))
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, s)
	}

	return sessions, nil
}

// Build creates a session over an already prepared dataset.
func Build(cfg *config.Config, dataset *Dataset, seed int64, opts ...Option) (*Session, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.sink == nil {
		o.sink = events.NewNopSink()
	}

	return build(cfg, dataset, o, seed)
}

func build(cfg *config.Config, dataset *Dataset, o *options, seed int64) (*Session, error) {
	p, err := portfolio.NewPortfolio(cfg.PortfolioConfig(), o.sink)
	if err != nil {
		return nil, err
	}

	p.Seed(seed)

	envOpts := []environment.Option{
		environment.WithSink(o.sink),
		environment.WithMaxDrawdown(cfg.Environment.MaxDrawdown),
	}
	if dataset.TrendColumn != "" {
		envOpts = append(envOpts, environment.WithTrendColumn(dataset.TrendColumn, dataset.TrendScale))
	}

	envOpts = append(envOpts, o.envOpts...)

	env, err := environment.New(p, dataset.Series, envOpts...)
	if err != nil {
		return nil, err
	}

	return &Session{
		Portfolio:   p,
		Environment: env,
		Dataset:     dataset,
	}, nil
}
