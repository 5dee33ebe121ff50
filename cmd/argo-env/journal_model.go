package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-trading-env/internal/journal"
	"github.com/urfave/cli/v3"
)

// Journal browser states.
const (
	StateEpisodeSelect = iota
	StateStepDisplay
	StateTradeDisplay
	StateStepJump
)

// JournalReader is the part of the journal the browser reads.
type JournalReader interface {
	Episodes() ([]journal.EpisodeSummary, error)
	Steps(episodeID string) ([]journal.StepRow, error)
	Trades(episodeID string) ([]journal.TradeRow, error)
}

// episodesLoadedMsg carries the episode summaries.
type episodesLoadedMsg struct {
	episodes []journal.EpisodeSummary
}

// episodeLoadedMsg carries the rows of the selected episode.
type episodeLoadedMsg struct {
	summary journal.EpisodeSummary
	steps   []journal.StepRow
	trades  []journal.TradeRow
}

// journalErrorMsg reports a failed journal query.
type journalErrorMsg struct {
	err error
}

// JournalModel is the Bubble Tea model of the journal browser.
type JournalModel struct {
	state       int
	reader      JournalReader
	episodeList list.Model
	stepTable   table.Model
	tradeTable  table.Model
	jumpInput   textinput.Model
	episode     journal.EpisodeSummary
	steps       []journal.StepRow
	trades      int
	err         error
	width       int
	height      int
}

// NewJournalModel creates a browser over reader.
func NewJournalModel(reader JournalReader) JournalModel {
	return JournalModel{
		state:       StateEpisodeSelect,
		reader:      reader,
		episodeList: NewEpisodeList(),
		stepTable:   NewStepTable(),
		tradeTable:  NewTradeTable(),
		jumpInput:   NewStepJumpInput(),
	}
}

// Init implements tea.Model.
func (m JournalModel) Init() tea.Cmd {
	return m.loadEpisodes()
}

func (m JournalModel) loadEpisodes() tea.Cmd {
	reader := m.reader

	return func() tea.Msg {
		episodes, err := reader.Episodes()
		if err != nil {
			return journalErrorMsg{err: err}
		}

		return episodesLoadedMsg{episodes: episodes}
	}
}

func (m JournalModel) loadEpisode(summary journal.EpisodeSummary) tea.Cmd {
	reader := m.reader

	return func() tea.Msg {
		steps, err := reader.Steps(summary.EpisodeID)
		if err != nil {
			return journalErrorMsg{err: err}
		}

		trades, err := reader.Trades(summary.EpisodeID)
		if err != nil {
			return journalErrorMsg{err: err}
		}

		return episodeLoadedMsg{summary: summary, steps: steps, trades: trades}
	}
}

// Update implements tea.Model.
func (m JournalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateStepJump {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.episodeList.SetSize(msg.Width, msg.Height-4)
		m.stepTable.SetWidth(msg.Width)
		m.stepTable.SetHeight(msg.Height - 8)
		m.tradeTable.SetWidth(msg.Width)
		m.tradeTable.SetHeight(msg.Height - 8)

		return m, nil

	case episodesLoadedMsg:
		m.err = nil

		return m, m.episodeList.SetItems(EpisodeItems(msg.episodes))

	case episodeLoadedMsg:
		m.err = nil
		m.episode = msg.summary
		m.steps = msg.steps
		m.trades = len(msg.trades)
		m.stepTable.SetRows(StepRows(msg.steps))
		m.tradeTable.SetRows(TradeRows(msg.trades))

		if len(msg.steps) > 0 {
			m.stepTable.SetCursor(0)
		}

		if len(msg.trades) > 0 {
			m.tradeTable.SetCursor(0)
		}

		m.state = StateStepDisplay

		return m, nil

	case journalErrorMsg:
		m.err = msg.err

		return m, nil
	}

	switch m.state {
	case StateEpisodeSelect:
		return m.updateEpisodeSelect(msg)
	case StateStepDisplay:
		return m.updateStepDisplay(msg)
	case StateTradeDisplay:
		return m.updateTradeDisplay(msg)
	case StateStepJump:
		return m.updateStepJump(msg)
	}

	return m, nil
}

func (m JournalModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateStepDisplay, StateTradeDisplay:
		m.state = StateEpisodeSelect
		m.err = nil
	case StateStepJump:
		m.jumpInput.Blur()
		m.state = StateStepDisplay
	}

	return m, nil
}

func (m JournalModel) updateEpisodeSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.episodeList.SelectedItem().(episodeItem); ok {
			return m, m.loadEpisode(item.summary)
		}
	}

	var cmd tea.Cmd
	m.episodeList, cmd = m.episodeList.Update(msg)

	return m, cmd
}

func (m JournalModel) updateStepDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "t":
			m.state = StateTradeDisplay

			return m, nil
		case "/":
			m.state = StateStepJump
			m.jumpInput.Reset()
			m.jumpInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.stepTable, cmd = m.stepTable.Update(msg)

	return m, cmd
}

func (m JournalModel) updateTradeDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "s" {
		m.state = StateStepDisplay

		return m, nil
	}

	var cmd tea.Cmd
	m.tradeTable, cmd = m.tradeTable.Update(msg)

	return m, cmd
}

func (m JournalModel) updateStepJump(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		m.jumpInput.Blur()
		m.state = StateStepDisplay

		step, err := strconv.Atoi(strings.TrimSpace(m.jumpInput.Value()))
		if err != nil {
			m.err = fmt.Errorf("invalid step %q", m.jumpInput.Value())

			return m, nil
		}

		for i, row := range m.steps {
			if row.Step == step {
				m.err = nil
				m.stepTable.SetCursor(i)

				return m, nil
			}
		}

		m.err = fmt.Errorf("step %d is not in episode %s", step, m.episode.EpisodeID)

		return m, nil
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m JournalModel) View() string {
	var s strings.Builder

	switch m.state {
	case StateEpisodeSelect:
		s.WriteString(TitleStyle.Render("Argo Environment - Journal"))
		s.WriteString("\n\n")
		s.WriteString(m.errorView())
		s.WriteString(m.episodeList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to open an episode, q to quit"))

	case StateStepDisplay, StateStepJump:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Episode %s - steps", m.episode.EpisodeID)))
		s.WriteString("\n\n")
		s.WriteString(m.errorView())
		s.WriteString(m.stepTable.View())
		s.WriteString("\n")

		if m.state == StateStepJump {
			s.WriteString(m.jumpInput.View())
			s.WriteString("\n")
			s.WriteString(HelpStyle.Render("Enter to jump, Esc to cancel"))
		} else {
			s.WriteString(HelpStyle.Render(fmt.Sprintf("t: trades (%d) | /: jump to step | Esc: episodes | q: quit", m.trades)))
		}

	case StateTradeDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Episode %s - trades", m.episode.EpisodeID)))
		s.WriteString("\n\n")
		s.WriteString(m.errorView())

		if m.trades == 0 {
			s.WriteString("No trades in this episode.\n")
		} else {
			s.WriteString(m.tradeTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("s: steps | Esc: episodes | q: quit"))
	}

	return s.String()
}

func (m JournalModel) errorView() string {
	if m.err == nil {
		return ""
	}

	return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:      "journal",
		Usage:     "Browse the episodes of a DuckDB journal written by simulate --journal",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("journal file is required")
			}

			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			j, err := journal.New(path, log)
			if err != nil {
				return err
			}
			defer j.Close()

			p := tea.NewProgram(NewJournalModel(j),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.Root().Writer),
			)
			_, err = p.Run()

			return err
		},
	}
}
