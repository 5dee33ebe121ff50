package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/rxtech-lab/argo-trading-env/internal/journal"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournalReader struct {
	episodes []journal.EpisodeSummary
	steps    map[string][]journal.StepRow
	trades   map[string][]journal.TradeRow
	err      error
}

func (f *fakeJournalReader) Episodes() ([]journal.EpisodeSummary, error) {
	return f.episodes, f.err
}

func (f *fakeJournalReader) Steps(episodeID string) ([]journal.StepRow, error) {
	return f.steps[episodeID], f.err
}

func (f *fakeJournalReader) Trades(episodeID string) ([]journal.TradeRow, error) {
	return f.trades[episodeID], f.err
}

func newFakeJournalReader() *fakeJournalReader {
	steps := make([]journal.StepRow, 0, 6)
	for i := 0; i < 6; i++ {
		steps = append(steps, journal.StepRow{
			EpisodeID:      "ep-1",
			Step:           i,
			Reward:         0.001 * float64(i),
			PortfolioValue: 10000 + float64(i),
			Balance:        9000,
			RiskLimit:      0.05,
			GrowthLimit:    0.2,
			TradingActive:  true,
		})
	}

	return &fakeJournalReader{
		episodes: []journal.EpisodeSummary{
			{EpisodeID: "ep-1", Steps: 5, TotalReward: 0.015, FinalValue: 10005, Trades: 1},
			{EpisodeID: "ep-2", Steps: 3, TotalReward: -0.01, FinalValue: 9950},
		},
		steps: map[string][]journal.StepRow{"ep-1": steps},
		trades: map[string][]journal.TradeRow{
			"ep-1": {{
				EpisodeID: "ep-1",
				Step:      2,
				TradeRecord: types.TradeRecord{
					Symbol:        "BTC/USDT",
					Side:          types.PurchaseTypeBuy,
					Quantity:      0.01,
					ExecutedPrice: 100000,
					Fee:           1,
					BalanceAfter:  8999,
				},
			}},
		},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m JournalModel, msg tea.Msg) JournalModel {
	t.Helper()

	model, _ := m.Update(msg)
	next, ok := model.(JournalModel)
	require.True(t, ok)

	return next
}

func TestNewJournalModel(t *testing.T) {
	m := NewJournalModel(newFakeJournalReader())

	assert.Equal(t, StateEpisodeSelect, m.state)
	assert.Empty(t, m.steps)
	assert.NoError(t, m.err)
}

func TestJournalBrowse(t *testing.T) {
	m := NewJournalModel(newFakeJournalReader())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("ep-1")) && bytes.Contains(bts, []byte("ep-2"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Episode ep-1 - steps"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyRunes("t"))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("BTC/USDT"))
	}, teatest.WithDuration(2*time.Second))

	require.NoError(t, tm.Quit())

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(JournalModel)
	require.True(t, ok)
	assert.Equal(t, StateTradeDisplay, final.state)
	assert.Equal(t, "ep-1", final.episode.EpisodeID)
}

func TestJournalStepJump(t *testing.T) {
	reader := newFakeJournalReader()
	m := NewJournalModel(reader)

	m = update(t, m, episodeLoadedMsg{
		summary: reader.episodes[0],
		steps:   reader.steps["ep-1"],
		trades:  reader.trades["ep-1"],
	})
	assert.Equal(t, StateStepDisplay, m.state)
	assert.Equal(t, 0, m.stepTable.Cursor())

	m = update(t, m, keyRunes("/"))
	assert.Equal(t, StateStepJump, m.state)

	m = update(t, m, keyRunes("3"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateStepDisplay, m.state)
	assert.Equal(t, 3, m.stepTable.Cursor())
	assert.NoError(t, m.err)

	m = update(t, m, keyRunes("/"))
	m = update(t, m, keyRunes("99"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.ErrorContains(t, m.err, "not in episode ep-1")
	assert.Equal(t, 3, m.stepTable.Cursor())

	m = update(t, m, keyRunes("/"))
	m = update(t, m, keyRunes("x"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.ErrorContains(t, m.err, "invalid step")
}

func TestJournalEsc(t *testing.T) {
	reader := newFakeJournalReader()
	m := NewJournalModel(reader)
	m = update(t, m, episodeLoadedMsg{summary: reader.episodes[1]})

	m = update(t, m, keyRunes("t"))
	assert.Equal(t, StateTradeDisplay, m.state)
	assert.Contains(t, m.View(), "No trades in this episode.")

	m = update(t, m, keyRunes("s"))
	assert.Equal(t, StateStepDisplay, m.state)

	m = update(t, m, keyRunes("/"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateStepDisplay, m.state)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateEpisodeSelect, m.state)
}

func TestJournalQueryError(t *testing.T) {
	m := NewJournalModel(&fakeJournalReader{err: fmt.Errorf("boom")})

	m = update(t, m, m.Init()())
	assert.ErrorContains(t, m.err, "boom")
	assert.Contains(t, m.View(), "Error: boom")
}

func TestStepRows(t *testing.T) {
	rows := StepRows([]journal.StepRow{
		{Step: 1, Reward: 0.5, PortfolioValue: 10100, Balance: 5000, RiskLimit: 0.05, GrowthLimit: 0.2, Volatility: 0.01, TradingActive: true},
		{Step: 2, TradingActive: false},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "0.500000", rows[0][1])
	assert.Equal(t, "10100.00", rows[0][2])
	assert.Equal(t, "yes", rows[0][7])
	assert.Equal(t, "halted", rows[1][7])
}

func TestTradeRows(t *testing.T) {
	rows := TradeRows(newFakeJournalReader().trades["ep-1"])

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2", "BTC/USDT", "BUY", "0.010000", "100000.0000", "1.0000", "8999.00"}, []string(rows[0]))
}
