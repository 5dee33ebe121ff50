package events

import (
	"github.com/rxtech-lab/argo-trading-env/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerSink renders events as zap log lines.
type LoggerSink struct {
	logger *logger.Logger
}

// NewLoggerSink creates a sink writing to the given logger.
func NewLoggerSink(logger *logger.Logger) Sink {
	return &LoggerSink{logger: logger}
}

// Emit implements Sink.
func (s *LoggerSink) Emit(event Event) {
	if s.logger == nil || s.logger.Logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event", string(event.Type)),
		zap.Int("step", event.Step),
	}

	if event.EpisodeID != "" {
		fields = append(fields, zap.String("episode_id", event.EpisodeID))
	}

	if event.Symbol != "" {
		fields = append(fields, zap.String("symbol", event.Symbol))
	}

	if event.Type == TypeStepCompleted || event.Type == TypeRewardFallback {
		fields = append(fields, zap.Float64("reward", event.Reward))
	}

	if event.Trade.IsSome() {
		trade := event.Trade.Unwrap()
		fields = append(fields,
			zap.String("side", string(trade.Side)),
			zap.Float64("quantity", trade.Quantity),
			zap.Float64("executed_price", trade.ExecutedPrice),
			zap.Float64("fee", trade.Fee),
		)
	}

	if event.Failure.IsSome() {
		failure := event.Failure.Unwrap()
		fields = append(fields,
			zap.String("side", string(failure.Side)),
			zap.Int("code", int(failure.Code)),
			zap.Float64("quantity", failure.Quantity),
		)
	}

	if event.Info.IsSome() {
		info := event.Info.Unwrap()
		fields = append(fields,
			zap.Float64("portfolio_value", info.PortfolioValue),
			zap.Float64("balance", info.Balance),
			zap.Float64("risk_limit", info.RiskLimit),
			zap.Float64("growth_limit", info.GrowthLimit),
		)
	}

	for k, v := range event.Fields {
		fields = append(fields, zap.Float64(k, v))
	}

	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
	}

	s.logger.Log(toZapLevel(event.Level), event.Message, fields...)
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
