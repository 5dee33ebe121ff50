package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EpisodeStats summarizes one episode run.
type EpisodeStats struct {
	// ID is the unique identifier for this episode.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the episode was started.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Seed is the seed the episode was reset with.
	Seed int64 `yaml:"seed" json:"seed"`
	// Symbols of the traded assets, in environment order.
	Symbols []string `yaml:"symbols" json:"symbols"`
	// Steps is the number of steps taken.
	Steps int `yaml:"steps" json:"steps"`
	// TotalReward is the sum of all step rewards.
	TotalReward float64 `yaml:"total_reward" json:"total_reward"`
	// InitialValue and FinalValue are portfolio values at reset and at the last step.
	InitialValue float64 `yaml:"initial_value" json:"initial_value"`
	FinalValue   float64 `yaml:"final_value" json:"final_value"`
	// MaxDrawdown is the largest peak-to-trough decline observed, as a fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// NumberOfTrades counts executed trades; NumberOfRejections counts skipped ones.
	NumberOfTrades     int `yaml:"number_of_trades" json:"number_of_trades"`
	NumberOfRejections int `yaml:"number_of_rejections" json:"number_of_rejections"`
	// TotalFees paid across all trades.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// Halted is true when trading was stopped during the episode.
	Halted bool `yaml:"halted" json:"halted"`
	// JournalPath is the path of the exported episode journal, if any.
	JournalPath string `yaml:"journal_path,omitempty" json:"journal_path,omitempty"`

	peak float64
}

// Record folds a step result into the statistics.
func (s *EpisodeStats) Record(result StepResult) {
	s.Steps++
	s.TotalReward += result.Reward
	s.FinalValue = result.Info.PortfolioValue

	if s.peak < s.InitialValue {
		s.peak = s.InitialValue
	}

	if s.FinalValue > s.peak {
		s.peak = s.FinalValue
	}

	if s.peak > 0 {
		if dd := (s.peak - s.FinalValue) / s.peak; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}
	s.NumberOfTrades += len(result.Info.Trades)
	s.NumberOfRejections += len(result.Info.Failures)

	for _, trade := range result.Info.Trades {
		s.TotalFees += trade.Fee
	}

	if !result.Info.TradingActive {
		s.Halted = true
	}
}

func WriteEpisodeStats(path string, stats []EpisodeStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal episode stats to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write episode stats to file: %w", err)
	}

	return nil
}
