// Package events is the single observability channel of the simulation core.
// The portfolio and the environment never log directly; they emit Events to an
// injected Sink, and the Sink decides whether to log, persist or drop them.
package events

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// Type identifies what happened.
type Type string

const (
	TypeEpisodeReset          Type = "episode_reset"
	TypeStepCompleted         Type = "step_completed"
	TypeTradeExecuted         Type = "trade_executed"
	TypeTradeRejected         Type = "trade_rejected"
	TypeObservationFallback   Type = "observation_fallback"
	TypeRewardFallback        Type = "reward_fallback"
	TypeTradingHalted         Type = "trading_halted"
	TypePortfolioReset        Type = "portfolio_reset"
	TypeRiskLimitAdjusted     Type = "risk_limit_adjusted"
	TypeGrowthLimitAdjusted   Type = "growth_limit_adjusted"
	TypePortfolioSummary      Type = "portfolio_summary"
	TypeIndicatorsUnavailable Type = "indicators_unavailable"
	TypeEnvironmentCreated    Type = "environment_created"
	TypeMarketSimulated       Type = "market_condition_simulated"
	TypeExtremeSimulated      Type = "extreme_condition_simulated"
	TypeSymbolSkipped         Type = "symbol_skipped"
)

// Level is the severity of an event.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is a single structured record.
type Event struct {
	// Type is what happened.
	Type Type
	// Level is the severity of the event.
	Level Level
	// Time is the wall-clock time the event was created.
	Time time.Time
	// EpisodeID identifies the episode, empty for portfolio-only events.
	EpisodeID string
	// Step is the environment step the event belongs to.
	Step int
	// Symbol is the asset the event is about, if any.
	Symbol string
	// Message is a human-readable description.
	Message string
	// Reward is set on step_completed events.
	Reward float64
	// Trade is set on trade_executed events.
	Trade optional.Option[types.TradeRecord]
	// Failure is set on trade_rejected events.
	Failure optional.Option[types.TradeFailure]
	// Info is set on episode_reset and step_completed events.
	Info optional.Option[types.StepInfo]
	// Fields contains optional numeric key-value data (limits, values, drawdown).
	Fields map[string]float64
	// Err is the error behind warn/error events.
	Err error
}

// New creates an event stamped with the current time.
func New(eventType Type, level Level, message string) Event {
	return Event{
		Type:    eventType,
		Level:   level,
		Time:    time.Now(),
		Message: message,
		Trade:   optional.None[types.TradeRecord](),
		Failure: optional.None[types.TradeFailure](),
		Info:    optional.None[types.StepInfo](),
	}
}

// Sink receives events.
type Sink interface {
	// Emit delivers an event. Sinks must not panic and must not block the step loop.
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// Emit implements Sink.
func (f SinkFunc) Emit(event Event) {
	f(event)
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// NewNopSink returns a sink that drops every event.
func NewNopSink() Sink {
	return nopSink{}
}

type multiSink struct {
	sinks []Sink
}

// NewMultiSink fans every event out to each of sinks in order. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}

	return &multiSink{sinks: filtered}
}

func (m *multiSink) Emit(event Event) {
	for _, s := range m.sinks {
		s.Emit(event)
	}
}
