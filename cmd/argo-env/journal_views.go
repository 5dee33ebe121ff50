package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-trading-env/internal/journal"
)

// episodeItem implements list.Item for the episode list.
type episodeItem struct {
	summary journal.EpisodeSummary
}

func (i episodeItem) Title() string { return i.summary.EpisodeID }
func (i episodeItem) Description() string {
	return fmt.Sprintf("steps=%d reward=%.4f value=%.2f trades=%d",
		i.summary.Steps, i.summary.TotalReward, i.summary.FinalValue, i.summary.Trades)
}
func (i episodeItem) FilterValue() string { return i.summary.EpisodeID }

// NewEpisodeList creates the list of journaled episodes.
func NewEpisodeList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Episodes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// EpisodeItems converts journal summaries into list items.
func EpisodeItems(episodes []journal.EpisodeSummary) []list.Item {
	items := make([]list.Item, 0, len(episodes))
	for _, e := range episodes {
		items = append(items, episodeItem{summary: e})
	}

	return items
}

// NewStepJumpInput creates the input used to jump to a step number.
func NewStepJumpInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "42"
	ti.CharLimit = 10
	ti.Width = 20
	ti.Prompt = "step> "

	return ti
}

// NewStepTable creates the table of persisted steps.
func NewStepTable() table.Model {
	return newTable([]table.Column{
		{Title: "Step", Width: 6},
		{Title: "Reward", Width: 12},
		{Title: "Value", Width: 14},
		{Title: "Balance", Width: 14},
		{Title: "Risk", Width: 8},
		{Title: "Growth", Width: 8},
		{Title: "Vol", Width: 8},
		{Title: "Trading", Width: 8},
	})
}

// NewTradeTable creates the table of persisted trades.
func NewTradeTable() table.Model {
	return newTable([]table.Column{
		{Title: "Step", Width: 6},
		{Title: "Symbol", Width: 12},
		{Title: "Side", Width: 5},
		{Title: "Quantity", Width: 14},
		{Title: "Price", Width: 14},
		{Title: "Fee", Width: 10},
		{Title: "Balance", Width: 14},
	})
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// StepRows formats journal steps as table rows.
func StepRows(steps []journal.StepRow) []table.Row {
	rows := make([]table.Row, 0, len(steps))

	for _, s := range steps {
		trading := "yes"
		if !s.TradingActive {
			trading = "halted"
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", s.Step),
			fmt.Sprintf("%.6f", s.Reward),
			fmt.Sprintf("%.2f", s.PortfolioValue),
			fmt.Sprintf("%.2f", s.Balance),
			fmt.Sprintf("%.4f", s.RiskLimit),
			fmt.Sprintf("%.4f", s.GrowthLimit),
			fmt.Sprintf("%.4f", s.Volatility),
			trading,
		})
	}

	return rows
}

// TradeRows formats journal trades as table rows.
func TradeRows(trades []journal.TradeRow) []table.Row {
	rows := make([]table.Row, 0, len(trades))

	for _, t := range trades {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.Step),
			t.Symbol,
			string(t.Side),
			fmt.Sprintf("%.6f", t.Quantity),
			fmt.Sprintf("%.4f", t.ExecutedPrice),
			fmt.Sprintf("%.4f", t.Fee),
			fmt.Sprintf("%.2f", t.BalanceAfter),
		})
	}

	return rows
}
