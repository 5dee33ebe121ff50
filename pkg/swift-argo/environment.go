package swiftargo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/session"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// EnvironmentHelper is the callback interface for environment events.
// Swift consumers implement this interface to follow an episode.
type EnvironmentHelper interface {
	// OnEpisodeReset is called after every Reset with the new episode id.
	OnEpisodeReset(episodeID string)

	// OnTradeExecuted is called for every executed trade.
	// tradeJSON is the JSON representation of the TradeRecord.
	OnTradeExecuted(symbol string, tradeJSON string)

	// OnTradeRejected is called when an action could not be executed for symbol.
	OnTradeRejected(symbol string, code int, message string)

	// OnTradingHalted is called when the drawdown limit stops trading.
	OnTradingHalted(message string)
}

// StepOutcome is the result of one Step.
type StepOutcome struct {
	Observation *FloatArray
	Reward      float64
	Done        bool
	// InfoJSON is the JSON representation of the StepInfo.
	InfoJSON string
}

// Environment wraps a trading environment session for Swift consumers.
type Environment struct {
	helper EnvironmentHelper

	// Cancellation support
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	session    *session.Session

	stepMu sync.Mutex
}

// NewEnvironment creates an uninitialized environment.
// The helper can be nil if no callbacks are needed.
func NewEnvironment(helper EnvironmentHelper) *Environment {
	return &Environment{
		helper:     helper,
		mu:         sync.Mutex{},
		cancelFunc: nil,
		session:    nil,
	}
}

// Initialize loads the configuration of configDir (config.json or config_<CONFIG_MODE>.json
// and Nycklar.env), then fetches the market data. This method is blocking.
// Can be cancelled by calling Cancel() from another goroutine.
func (e *Environment) Initialize(configDir string) error {
	cfg, err := config.NewLoader(configDir).Load()
	if err != nil {
		return err
	}

	return e.initialize(cfg)
}

// InitializeWithConfig parses a configuration document in format "json" or "yaml".
// Credentials are read from the process environment and the Binance ones are required.
func (e *Environment) InitializeWithConfig(document string, format string) error {
	cfg, err := config.Parse([]byte(document), config.Format(format), "inline")
	if err != nil {
		return err
	}

	env := map[string]string{
		config.EnvBinanceAPIKey:    os.Getenv(config.EnvBinanceAPIKey),
		config.EnvBinanceSecretKey: os.Getenv(config.EnvBinanceSecretKey),
		config.EnvPolygonAPIKey:    os.Getenv(config.EnvPolygonAPIKey),
	}

	if err := cfg.RequireCredentials(env, "inline"); err != nil {
		return err
	}

	return e.initialize(cfg)
}

func (e *Environment) initialize(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.cancelFunc = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.cancelFunc = nil
		e.mu.Unlock()
		cancel()
	}()

	s, err := session.New(ctx, cfg, session.WithSink(events.SinkFunc(e.emit)))
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.session = s
	e.mu.Unlock()

	return nil
}

// Cancel aborts an in-progress Initialize.
// Returns true if an initialization was cancelled.
func (e *Environment) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelFunc != nil {
		e.cancelFunc()
		e.cancelFunc = nil

		return true
	}

	return false
}

func (e *Environment) current() (*session.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, fmt.Errorf("environment is not initialized")
	}

	return e.session, nil
}

// Reset starts a new episode and returns the initial observation.
// The slippage generator is reseeded only when useSeed is true.
func (e *Environment) Reset(seed int64, useSeed bool) (*FloatArray, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}

	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	opt := optional.None[int64]()
	if useSeed {
		opt = optional.Some(seed)
	}

	obs, _ := s.Environment.Reset(opt)

	return toFloatArray(obs), nil
}

// Step executes one signal per asset. Missing signals count as 0.
func (e *Environment) Step(action FloatCollection) (*StepOutcome, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}

	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	signals := make(types.Action, 0, s.Environment.ActionSize())
	if action != nil {
		for i := 0; i < action.Size(); i++ {
			signals = append(signals, action.Get(i))
		}
	}

	result := s.Environment.Step(signals)

	info, err := json.Marshal(result.Info)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step info: %w", err)
	}

	return &StepOutcome{
		Observation: toFloatArray(result.Observation),
		Reward:      result.Reward,
		Done:        result.Done,
		InfoJSON:    string(info),
	}, nil
}

// ObservationSize is the length of every observation; 0 before Initialize.
func (e *Environment) ObservationSize() int {
	s, err := e.current()
	if err != nil {
		return 0
	}

	return s.Environment.ObservationShape().Size()
}

// ActionSize is the number of signals Step expects; 0 before Initialize.
func (e *Environment) ActionSize() int {
	s, err := e.current()
	if err != nil {
		return 0
	}

	return s.Environment.ActionSize()
}

// Assets returns the traded symbols in action order.
func (e *Environment) Assets() StringCollection {
	s, err := e.current()
	if err != nil {
		return NewStringArray()
	}

	return &StringArray{items: s.Environment.Assets()}
}

// PortfolioSummaryJSON returns the JSON representation of the portfolio summary.
func (e *Environment) PortfolioSummaryJSON() (string, error) {
	s, err := e.current()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(s.Portfolio.Summary())
	if err != nil {
		return "", fmt.Errorf("failed to marshal portfolio summary: %w", err)
	}

	return string(data), nil
}

func (e *Environment) emit(event events.Event) {
	if e.helper == nil {
		return
	}

	switch event.Type {
	case events.TypeEpisodeReset:
		e.helper.OnEpisodeReset(event.EpisodeID)
	case events.TypeTradeExecuted:
		trade, err := event.Trade.Take()
		if err != nil {
			return
		}

		data, err := json.Marshal(trade)
		if err != nil {
			return
		}

		e.helper.OnTradeExecuted(event.Symbol, string(data))
	case events.TypeTradeRejected:
		failure, err := event.Failure.Take()
		if err != nil {
			return
		}

		e.helper.OnTradeRejected(failure.Symbol, int(failure.Code), failure.Message)
	case events.TypeTradingHalted:
		e.helper.OnTradingHalted(event.Message)
	}
}

func toFloatArray(obs types.Observation) *FloatArray {
	items := make([]float64, len(obs))
	for i, v := range obs {
		items[i] = float64(v)
	}

	return &FloatArray{items: items}
}
