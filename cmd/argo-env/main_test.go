package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/journal"
	"github.com/rxtech-lab/argo-trading-env/internal/logger"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/mocks"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

const simulatedConfig = `{
	"binance": {"api_key": "k", "api_secret": "s"},
	"training": {"learning_rate": 0.0003, "gamma": 0.99, "gae_lambda": 0.95, "ent_coef": 0, "total_timesteps": 1000, "checkpoint_interval": 100},
	"environment": {"min_volume": 0, "fee": 0.001, "timeframe": "1h", "data_limit": 60, "risk_limit": 0.05, "growth_limit": 0.2},
	"market": {"min_volume": 0, "provider": "simulated", "seed": 5}
}`

type CLITestSuite struct {
	suite.Suite
	dir string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.T().Setenv(config.EnvBinanceAPIKey, "key")
	suite.T().Setenv(config.EnvBinanceSecretKey, "secret")
	suite.T().Setenv(config.ModeEnv, "")
}

func (suite *CLITestSuite) config() *config.Config {
	cfg := config.Default()
	cfg.Environment.MinVolume = 0
	cfg.Environment.Fee = 0.001
	cfg.Environment.Timeframe = marketdata.TimespanOneHour
	cfg.Environment.DataLimit = 60
	cfg.Environment.RiskLimit = 0.05
	cfg.Environment.GrowthLimit = 0.2
	cfg.Market.Provider = provider.ProviderSimulated
	cfg.Market.Seed = 5

	return &cfg
}

func (suite *CLITestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(context.Background(), append([]string{"argo-env", "--config-dir", suite.dir}, args...))

	return out.String(), err
}

func (suite *CLITestSuite) TestRandomPolicy() {
	series := mocks.NewDataGenerator(1).GenerateMultiSymbol([]string{"A", "B"}, mocks.DefaultConfig())

	first, err := NewPolicy(PolicyRandom, series, 9, 0.1)
	suite.Require().NoError(err)
	second, err := NewPolicy(PolicyRandom, series, 9, 0.1)
	suite.Require().NoError(err)

	for step := 0; step < 20; step++ {
		action := first.Act(step, nil)
		suite.Len(action, 2)
		suite.Equal(action, second.Act(step, nil))

		for _, signal := range action {
			suite.LessOrEqual(signal, 0.1)
			suite.GreaterOrEqual(signal, -0.1)
		}
	}
}

func (suite *CLITestSuite) TestHoldPolicy() {
	policy, err := NewPolicy(PolicyHold, make([]types.Series, 3), 0, 1)
	suite.Require().NoError(err)
	suite.Equal(types.Action{0, 0, 0}, policy.Act(4, nil))
}

func (suite *CLITestSuite) TestMeanVariancePolicy() {
	series := mocks.NewDataGenerator(2).GenerateMultiSymbol([]string{"A", "B", "C"}, mocks.DefaultConfig())

	policy, err := NewPolicy(PolicyMeanVariance, series, 0, 0.5)
	suite.Require().NoError(err)

	suite.Equal(types.Action{0, 0, 0}, policy.Act(10, nil))
	suite.Equal(types.Action{0, 0, 0}, policy.Act(25, nil))

	action := policy.Act(24, nil)
	suite.Len(action, 3)
	suite.NotEqual(types.Action{0, 0, 0}, action)

	for _, signal := range action {
		suite.LessOrEqual(signal, 0.5)
		suite.GreaterOrEqual(signal, -1.0)
	}

	// past the end of the data it holds
	suite.Equal(types.Action{0, 0, 0}, policy.Act(2400, nil))
}

func (suite *CLITestSuite) TestUnknownPolicy() {
	_, err := NewPolicy("greedy", nil, 0, 1)
	suite.Error(err)
}

func (suite *CLITestSuite) TestFormatChange() {
	suite.Equal("-", FormatChange(0, 10))
	suite.Equal("+10.00% ▲", FormatChange(100, 110))
	suite.Equal("-5.00% ▼", FormatChange(100, 95))
	suite.Equal("+0.00%", FormatChange(100, 100))
}

func (suite *CLITestSuite) TestRenderSummary() {
	out := RenderSummary([]types.EpisodeStats{
		{Seed: 3, Steps: 59, TotalReward: 0.25, InitialValue: 10000, FinalValue: 10100, NumberOfTrades: 12, Symbols: []string{"BTC/USDT", "ETH/USDT"}},
		{Seed: 4, Steps: 59, InitialValue: 10000, FinalValue: 9000, Halted: true},
	})

	suite.Contains(out, "seed=3")
	suite.Contains(out, "10100.00")
	suite.Contains(out, "+1.00% ▲")
	suite.Contains(out, "halted")
	suite.Contains(out, "BTC/USDT, ETH/USDT")
}

func (suite *CLITestSuite) TestRunSimulation() {
	exportDir := filepath.Join(suite.dir, "journal")
	statsPath := filepath.Join(suite.dir, "stats.yaml")

	stats, err := RunSimulation(context.Background(), suite.config(), SimulateOptions{
		Episodes:  2,
		Seed:      11,
		Policy:    PolicyRandom,
		Scale:     0.05,
		ExportDir: exportDir,
		StatsPath: statsPath,
	}, logger.NewNopLogger(), io.Discard)
	suite.Require().NoError(err)
	suite.Require().Len(stats, 2)

	for i, s := range stats {
		suite.Equal(59, s.Steps)
		suite.Equal(int64(11+i), s.Seed)
		suite.Equal(10000.0, s.InitialValue)
		suite.Equal(provider.DefaultSimulatedSymbols, s.Symbols)
		suite.Equal(exportDir, s.JournalPath)
	}

	suite.NotEqual(stats[0].ID, stats[1].ID)

	for _, table := range []string{"steps", "trades", "rejections"} {
		suite.FileExists(filepath.Join(exportDir, table+".parquet"))
	}

	data, err := os.ReadFile(statsPath)
	suite.Require().NoError(err)

	var written []types.EpisodeStats
	suite.Require().NoError(yaml.Unmarshal(data, &written))
	suite.Len(written, 2)
	suite.Equal(stats[1].ID, written[1].ID)
}

func (suite *CLITestSuite) TestRunSimulationWithCondition() {
	stats, err := RunSimulation(context.Background(), suite.config(), SimulateOptions{
		Episodes:  1,
		Policy:    PolicyHold,
		Pattern:   provider.PatternIncreasing,
		Condition: provider.ConditionBullish,
	}, logger.NewNopLogger(), io.Discard)
	suite.Require().NoError(err)

	// holding cash only, the value never moves
	suite.Equal(stats[0].InitialValue, stats[0].FinalValue)
	suite.Zero(stats[0].NumberOfTrades)
}

func (suite *CLITestSuite) TestRunSimulationRejectsBadOptions() {
	_, err := RunSimulation(context.Background(), suite.config(), SimulateOptions{Episodes: 0, Policy: PolicyHold}, logger.NewNopLogger(), io.Discard)
	suite.Error(err)

	_, err = RunSimulation(context.Background(), suite.config(), SimulateOptions{Episodes: 1, Policy: PolicyHold, Condition: "euphoric"}, logger.NewNopLogger(), io.Discard)
	suite.Error(err)

	cfg := suite.config()
	cfg.Market.Provider = provider.ProviderLive

	_, err = RunSimulation(context.Background(), cfg, SimulateOptions{Episodes: 1, Policy: PolicyHold, Pattern: provider.PatternVolatile}, logger.NewNopLogger(), io.Discard)
	suite.Error(err)
}

func (suite *CLITestSuite) TestJournalBrowserReadsSimulation() {
	path := filepath.Join(suite.dir, "journal.duckdb")

	stats, err := RunSimulation(context.Background(), suite.config(), SimulateOptions{
		Episodes:    1,
		Seed:        3,
		Policy:      PolicyRandom,
		Scale:       0.05,
		JournalPath: path,
	}, logger.NewNopLogger(), io.Discard)
	suite.Require().NoError(err)

	j, err := journal.New(path, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer j.Close()

	msg, ok := NewJournalModel(j).Init()().(episodesLoadedMsg)
	suite.Require().True(ok)
	suite.Require().Len(msg.episodes, 1)
	suite.Equal(stats[0].ID, msg.episodes[0].EpisodeID)
	suite.Equal(stats[0].Steps, msg.episodes[0].Steps)
}

func (suite *CLITestSuite) TestSchemaCommand() {
	out, err := suite.run("schema")
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(out), &schema))
	suite.Equal("argo-trading-env-config", schema["title"])

	target := filepath.Join(suite.dir, "schema.json")
	_, err = suite.run("schema", "--output", target)
	suite.Require().NoError(err)
	suite.FileExists(target)
}

func (suite *CLITestSuite) TestValidateCommand() {
	_, err := suite.run("validate")
	suite.Require().Error(err)

	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, "config.json"), []byte(simulatedConfig), 0644))

	out, err := suite.run("validate")
	suite.Require().NoError(err)
	suite.Contains(out, "configuration ok")
	suite.Contains(out, "provider: simulated")
}

func (suite *CLITestSuite) TestSymbolsCommand() {
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, "config.json"), []byte(simulatedConfig), 0644))

	out, err := suite.run("symbols")
	suite.Require().NoError(err)

	for _, symbol := range provider.DefaultSimulatedSymbols {
		suite.Contains(out, symbol)
	}
}

func (suite *CLITestSuite) TestDownloadCommand() {
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, "config.json"), []byte(simulatedConfig), 0644))
	dataDir := filepath.Join(suite.dir, "data")

	out, err := suite.run("download", "--symbols", "BTC/USDT", "--limit", "20", "--data", dataDir)
	suite.Require().NoError(err)
	suite.Contains(out, "Downloaded data to")
	suite.FileExists(filepath.Join(dataDir, "BTC-USDT_1h_20.parquet"))
}
