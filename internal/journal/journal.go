// Package journal persists episodes to DuckDB. A Journal is an events.Sink: attach it
// to an environment and every reset and step becomes a row in the steps table, every
// executed trade a row in trades and every rejected trade a row in rejections.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/logger"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/internal/version"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"go.uber.org/zap"
)

// Tables written by the journal, in export order.
var Tables = []string{"steps", "trades", "rejections"}

const metaVersionKey = "version"

// StepRow is one persisted reset or step.
type StepRow struct {
	EpisodeID      string
	Step           int
	Reward         float64
	PortfolioValue float64
	Balance        float64
	RiskLimit      float64
	GrowthLimit    float64
	Volatility     float64
	TradingActive  bool
	RewardFallback bool
	RecordedAt     time.Time
}

// TradeRow is one persisted trade.
type TradeRow struct {
	EpisodeID string
	Step      int
	types.TradeRecord
}

// RejectionRow is one persisted per-asset failure.
type RejectionRow struct {
	EpisodeID string
	Step      int
	types.TradeFailure
}

// EpisodeSummary aggregates the steps of one episode.
type EpisodeSummary struct {
	EpisodeID   string
	Steps       int
	TotalReward float64
	FinalValue  float64
	Trades      int
}

// Journal is a DuckDB backed events.Sink.
type Journal struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
	mu     sync.Mutex
	err    error
}

// New opens a journal. An empty path keeps the database in memory.
func New(path string, log *logger.Logger) (*Journal, error) {
	dsn := ""

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to create journal directory", err)
		}

		dsn = path
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to open journal database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to connect to journal database", err)
	}

	j := &Journal{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
	}

	if err := j.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return j, nil
}

func (j *Journal) initialize() error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS journal_seq START 1`,
		`CREATE TABLE IF NOT EXISTS steps (
			seq BIGINT DEFAULT nextval('journal_seq'),
			episode_id TEXT,
			step INTEGER,
			reward DOUBLE,
			portfolio_value DOUBLE,
			balance DOUBLE,
			risk_limit DOUBLE,
			growth_limit DOUBLE,
			volatility DOUBLE,
			trading_active BOOLEAN,
			reward_fallback BOOLEAN,
			recorded_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			seq BIGINT DEFAULT nextval('journal_seq'),
			id TEXT,
			episode_id TEXT,
			step INTEGER,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			requested_price DOUBLE,
			executed_price DOUBLE,
			notional DOUBLE,
			fee DOUBLE,
			balance_after DOUBLE,
			executed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rejections (
			seq BIGINT DEFAULT nextval('journal_seq'),
			episode_id TEXT,
			step INTEGER,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			code INTEGER,
			message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to create journal tables", err)
		}
	}

	return j.stampVersion()
}

// stampVersion records the writing version in a new journal and refuses a journal
// written by an incompatible one.
func (j *Journal) stampVersion() error {
	var written string

	err := j.sq.Select("value").From("meta").Where(squirrel.Eq{"key": metaVersionKey}).
		RunWith(j.db).QueryRow().Scan(&written)

	switch {
	case err == sql.ErrNoRows:
		_, err = j.sq.Insert("meta").Columns("key", "value").Values(metaVersionKey, version.GetVersion()).
			RunWith(j.db).Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to record journal version", err)
		}

		return nil
	case err != nil:
		return errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read journal version", err)
	}

	return version.CheckJournalCompatibility(version.GetVersion(), written)
}

// Version returns the version of the build that created the journal.
func (j *Journal) Version() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return "", errors.New(errors.ErrCodeJournalQueryFailed, "journal is closed")
	}

	var written string
	if err := j.sq.Select("value").From("meta").Where(squirrel.Eq{"key": metaVersionKey}).
		RunWith(j.db).QueryRow().Scan(&written); err != nil {
		return "", errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read journal version", err)
	}

	return written, nil
}

// Emit implements events.Sink. Write failures never reach the caller; the first one is
// kept for Err and every one is logged.
func (j *Journal) Emit(event events.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return
	}

	var err error

	switch event.Type {
	case events.TypeEpisodeReset, events.TypeStepCompleted:
		err = j.insertStep(event)
	case events.TypeTradeExecuted:
		err = j.insertTrade(event)
	case events.TypeTradeRejected:
		err = j.insertRejection(event)
	default:
		return
	}

	if err == nil {
		return
	}

	if j.err == nil {
		j.err = err
	}

	if j.logger != nil {
		j.logger.Warn("Failed to journal event",
			zap.String("event", string(event.Type)),
			zap.String("episode_id", event.EpisodeID),
			zap.Int("step", event.Step),
			zap.Error(err),
		)
	}
}

func (j *Journal) insertStep(event events.Event) error {
	info, err := event.Info.Take()
	if err != nil {
		return errors.Newf(errors.ErrCodeJournalWriteFailed, "%s event carries no step info", event.Type)
	}

	_, err = j.sq.
		Insert("steps").
		Columns("episode_id", "step", "reward", "portfolio_value", "balance", "risk_limit",
			"growth_limit", "volatility", "trading_active", "reward_fallback", "recorded_at").
		Values(event.EpisodeID, info.Step, event.Reward, info.PortfolioValue, info.Balance, info.RiskLimit,
			info.GrowthLimit, info.Volatility, info.TradingActive, info.RewardFallback, event.Time).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to insert step", err)
	}

	return nil
}

func (j *Journal) insertTrade(event events.Event) error {
	trade, err := event.Trade.Take()
	if err != nil {
		return errors.New(errors.ErrCodeJournalWriteFailed, "trade event carries no trade")
	}

	_, err = j.sq.
		Insert("trades").
		Columns("id", "episode_id", "step", "symbol", "side", "quantity", "requested_price",
			"executed_price", "notional", "fee", "balance_after", "executed_at").
		Values(trade.ID, event.EpisodeID, event.Step, trade.Symbol, string(trade.Side), trade.Quantity,
			trade.RequestedPrice, trade.ExecutedPrice, trade.Notional, trade.Fee, trade.BalanceAfter, trade.ExecutedAt).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to insert trade", err)
	}

	return nil
}

func (j *Journal) insertRejection(event events.Event) error {
	failure, err := event.Failure.Take()
	if err != nil {
		return errors.New(errors.ErrCodeJournalWriteFailed, "rejection event carries no failure")
	}

	_, err = j.sq.
		Insert("rejections").
		Columns("episode_id", "step", "symbol", "side", "quantity", "code", "message").
		Values(event.EpisodeID, event.Step, failure.Symbol, string(failure.Side), failure.Quantity,
			int(failure.Code), failure.Message).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to insert rejection", err)
	}

	return nil
}

// Err returns the first write failure, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.err
}

// Steps returns the rows of an episode in the order they were written. An empty episodeID returns every episode.
func (j *Journal) Steps(episodeID string) ([]StepRow, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, errors.New(errors.ErrCodeJournalQueryFailed, "journal is closed")
	}

	query := j.sq.
		Select("episode_id", "step", "reward", "portfolio_value", "balance", "risk_limit",
			"growth_limit", "volatility", "trading_active", "reward_fallback", "recorded_at").
		From("steps").
		OrderBy("seq ASC")
	if episodeID != "" {
		query = query.Where(squirrel.Eq{"episode_id": episodeID})
	}

	rows, err := query.RunWith(j.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query steps", err)
	}
	defer rows.Close()

	var out []StepRow

	for rows.Next() {
		var row StepRow

		err := rows.Scan(&row.EpisodeID, &row.Step, &row.Reward, &row.PortfolioValue, &row.Balance,
			&row.RiskLimit, &row.GrowthLimit, &row.Volatility, &row.TradingActive, &row.RewardFallback,
			&row.RecordedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan step", err)
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read steps", err)
	}

	return out, nil
}

// Trades returns the trades of an episode in execution order. An empty episodeID returns every episode.
func (j *Journal) Trades(episodeID string) ([]TradeRow, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, errors.New(errors.ErrCodeJournalQueryFailed, "journal is closed")
	}

	query := j.sq.
		Select("id", "episode_id", "step", "symbol", "side", "quantity", "requested_price",
			"executed_price", "notional", "fee", "balance_after", "executed_at").
		From("trades").
		OrderBy("seq ASC")
	if episodeID != "" {
		query = query.Where(squirrel.Eq{"episode_id": episodeID})
	}

	rows, err := query.RunWith(j.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var out []TradeRow

	for rows.Next() {
		var (
			row  TradeRow
			side string
		)

		err := rows.Scan(&row.ID, &row.EpisodeID, &row.Step, &row.Symbol, &side, &row.Quantity,
			&row.RequestedPrice, &row.ExecutedPrice, &row.Notional, &row.Fee, &row.BalanceAfter, &row.ExecutedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan trade", err)
		}

		row.Side = types.PurchaseType(side)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read trades", err)
	}

	return out, nil
}

// Rejections returns the failed trades of an episode in the order they were written.
func (j *Journal) Rejections(episodeID string) ([]RejectionRow, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, errors.New(errors.ErrCodeJournalQueryFailed, "journal is closed")
	}

	query := j.sq.
		Select("episode_id", "step", "symbol", "side", "quantity", "code", "message").
		From("rejections").
		OrderBy("seq ASC")
	if episodeID != "" {
		query = query.Where(squirrel.Eq{"episode_id": episodeID})
	}

	rows, err := query.RunWith(j.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query rejections", err)
	}
	defer rows.Close()

	var out []RejectionRow

	for rows.Next() {
		var (
			row  RejectionRow
			side string
			code int
		)

		err := rows.Scan(&row.EpisodeID, &row.Step, &row.Symbol, &side, &row.Quantity, &code, &row.Message)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan rejection", err)
		}

		row.Side = types.PurchaseType(side)
		row.Code = errors.ErrorCode(code)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read rejections", err)
	}

	return out, nil
}

// Episodes summarizes every journaled episode in the order they started.
func (j *Journal) Episodes() ([]EpisodeSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, errors.New(errors.ErrCodeJournalQueryFailed, "journal is closed")
	}

	trades := j.sq.
		Select("COUNT(*)").
		From("trades t").
		Where("t.episode_id = s.episode_id")

	tradesSQL, _, err := trades.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to build trade count", err)
	}

	rows, err := j.sq.
		Select(
			"s.episode_id",
			"COUNT(*) - 1",
			"SUM(s.reward)",
			"arg_max(s.portfolio_value, s.seq)",
			"("+tradesSQL+")",
		).
		From("steps s").
		GroupBy("s.episode_id").
		OrderBy("MIN(s.seq) ASC").
		RunWith(j.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query episodes", err)
	}
	defer rows.Close()

	var out []EpisodeSummary

	for rows.Next() {
		var summary EpisodeSummary

		if err := rows.Scan(&summary.EpisodeID, &summary.Steps, &summary.TotalReward, &summary.FinalValue, &summary.Trades); err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan episode", err)
		}

		out = append(out, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to read episodes", err)
	}

	return out, nil
}

// Export writes every table to <dir>/<table>.parquet and returns the paths.
func (j *Journal) Export(dir string) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, errors.New(errors.ErrCodeJournalWriteFailed, "journal is closed")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to create export directory", err)
	}

	paths := make([]string, 0, len(Tables))

	for _, table := range Tables {
		path := filepath.Join(dir, table+".parquet")

		stmt := fmt.Sprintf("COPY (SELECT * FROM %s ORDER BY seq) TO '%s' (FORMAT PARQUET)",
			table, strings.ReplaceAll(path, "'", "''"))
		if _, err := j.db.Exec(stmt); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to export %s", table)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Close releases the database. Emit is a no-op afterwards.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}

	err := j.db.Close()
	j.db = nil

	if err != nil {
		return fmt.Errorf("failed to close journal database: %w", err)
	}

	return nil
}
