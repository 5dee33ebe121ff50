package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	series := gen.Generate(config)

	if series.Len() != 100 {
		t.Errorf("expected 100 bars, got %d", series.Len())
	}

	if series.Symbol != config.Symbol {
		t.Errorf("expected series symbol %s, got %s", config.Symbol, series.Symbol)
	}

	for i, bar := range series.Bars {
		if bar.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, bar.Symbol)
		}

		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, bar.Open, bar.High, bar.Low, bar.Close)
		}

		if bar.High < bar.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, bar.High, bar.Low)
		}

		if bar.Indicators != nil {
			t.Errorf("unexpected indicators at index %d", i)
		}
	}

	for i := 1; i < series.Len(); i++ {
		interval := series.Bars[i].Time.Sub(series.Bars[i-1].Time)
		if interval != config.Interval {
			t.Errorf("unexpected interval at index %d: expected %v, got %v", i, config.Interval, interval)
		}
	}
}

func TestDataGenerator_VolatilityColumn(t *testing.T) {
	config := DefaultConfig()
	config.Count = 20
	config.VolatilityColumn = true

	series := NewDataGenerator(1).Generate(config)

	if len(series.Indicators) != 1 || series.Indicators[0] != "volatility" {
		t.Fatalf("expected volatility column, got %v", series.Indicators)
	}

	for i, bar := range series.Bars {
		v, ok := bar.Indicators["volatility"]
		if !ok || v < 0 {
			t.Errorf("invalid volatility at index %d: %v", i, v)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	a := NewDataGenerator(42).Generate(config)
	b := NewDataGenerator(42).Generate(config)

	for i := range a.Bars {
		if a.Bars[i].Close != b.Bars[i].Close {
			t.Errorf("data not reproducible at index %d: got %f and %f", i, a.Bars[i].Close, b.Bars[i].Close)
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	a := NewDataGenerator(42).Generate(config)
	b := NewDataGenerator(123).Generate(config)

	same := 0
	for i := range a.Bars {
		if a.Bars[i].Close == b.Bars[i].Close {
			same++
		}
	}

	if same == len(a.Bars) {
		t.Error("different seeds produced identical data")
	}
}

func TestGenerate10K(t *testing.T) {
	series := Generate10K("ETH/USDT")

	if series.Len() != 10000 {
		t.Errorf("expected 10000 bars, got %d", series.Len())
	}

	if series.Bars[0].Symbol != "ETH/USDT" {
		t.Errorf("expected symbol ETH/USDT, got %s", series.Bars[0].Symbol)
	}
}

func TestGenerateMultiSymbol(t *testing.T) {
	symbols := []string{"BTC/USDT", "ETH/USDT", "LTC/USDT"}
	config := DefaultConfig()
	config.Count = 100

	all := NewDataGenerator(42).GenerateMultiSymbol(symbols, config)

	if len(all) != len(symbols) {
		t.Fatalf("expected %d series, got %d", len(symbols), len(all))
	}

	for i, series := range all {
		if series.Symbol != symbols[i] {
			t.Errorf("expected %s at index %d, got %s", symbols[i], i, series.Symbol)
		}

		if series.Len() != config.Count {
			t.Errorf("expected %d bars for %s, got %d", config.Count, series.Symbol, series.Len())
		}

		if !series.Bars[0].Time.Equal(all[0].Bars[0].Time) {
			t.Errorf("series %s is not aligned", series.Symbol)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Count != 1000 {
		t.Errorf("expected default count 1000, got %d", config.Count)
	}

	if config.Interval != time.Hour {
		t.Errorf("expected default interval 1h, got %v", config.Interval)
	}

	if config.InitialPrice != 100.0 {
		t.Errorf("expected default initial price 100.0, got %f", config.InitialPrice)
	}
}
