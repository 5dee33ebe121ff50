package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	cellStyle  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	labelStyle = lipgloss.NewStyle().Width(14)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var summaryColumns = []string{"steps", "reward", "initial", "final", "return", "drawdown", "trades", "rejected", "fees"}

// FormatChange renders a relative change with an up or down marker.
func FormatChange(initial, final float64) string {
	if initial == 0 {
		return "-"
	}

	change := (final - initial) / initial * 100
	text := fmt.Sprintf("%+.2f%%", change)

	switch {
	case change > 0:
		return text + " ▲"
	case change < 0:
		return text + " ▼"
	default:
		return text
	}
}

// RenderSummary renders one row per episode inside a bordered box.
func RenderSummary(stats []types.EpisodeStats) string {
	var b strings.Builder

	header := []string{labelStyle.Render("episode")}
	for _, column := range summaryColumns {
		header = append(header, cellStyle.Render(column))
	}

	b.WriteString(TitleStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)))

	for i, s := range stats {
		row := []string{
			labelStyle.Render(fmt.Sprintf("#%d seed=%d", i+1, s.Seed)),
			cellStyle.Render(fmt.Sprintf("%d", s.Steps)),
			cellStyle.Render(fmt.Sprintf("%.4f", s.TotalReward)),
			cellStyle.Render(fmt.Sprintf("%.2f", s.InitialValue)),
			cellStyle.Render(fmt.Sprintf("%.2f", s.FinalValue)),
			cellStyle.Render(FormatChange(s.InitialValue, s.FinalValue)),
			cellStyle.Render(fmt.Sprintf("%.2f%%", s.MaxDrawdown*100)),
			cellStyle.Render(fmt.Sprintf("%d", s.NumberOfTrades)),
			cellStyle.Render(fmt.Sprintf("%d", s.NumberOfRejections)),
			cellStyle.Render(fmt.Sprintf("%.2f", s.TotalFees)),
		}

		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))

		if s.Halted {
			b.WriteString(HelpStyle.Render("  halted"))
		}
	}

	if len(stats) > 0 {
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("assets: " + strings.Join(stats[0].Symbols, ", ")))
	}

	return boxStyle.Render(b.String())
}
