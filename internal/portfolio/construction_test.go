package portfolio

import (
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

func insightAt(symbol string, dir core.Direction, at time.Time, period time.Duration) core.Insight {
	in := core.NewInsight(symbol, period, dir, 0)
	in.GeneratedAt = at
	return in
}

func modelInsightAt(model, symbol string, dir core.Direction, at time.Time, period time.Duration) core.Insight {
	in := insightAt(symbol, dir, at, period)
	in.Model = model
	return in
}

func TestEqualWeighting_SplitsEqually(t *testing.T) {
	m := NewEqualWeighting()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	targets := m.CreateTargets(now, []core.Insight{
		insightAt("AAPL", core.DirectionUp, now, time.Hour),
		insightAt("MSFT", core.DirectionUp, now, time.Hour),
		insightAt("TSLA", core.DirectionDown, now, time.Hour),
		insightAt("FLAT", core.DirectionFlat, now, time.Hour),
	})

	if len(targets) != 3 {
		t.Fatalf("expected 3 targets (flat excluded), got %d", len(targets))
	}

	byPercent := map[string]float64{}
	for _, tgt := range targets {
		byPercent[tgt.Symbol] = tgt.Percent
	}
	third := 1.0 / 3.0
	if byPercent["AAPL"] != third || byPercent["MSFT"] != third {
		t.Errorf("long percents = %v, want %f", byPercent, third)
	}
	if byPercent["TSLA"] != -third {
		t.Errorf("TSLA percent = %f, want %f", byPercent["TSLA"], -third)
	}
}

func TestEqualWeighting_ZeroTargetOnExpiry(t *testing.T) {
	m := NewEqualWeighting()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m.CreateTargets(now, []core.Insight{
		insightAt("AAPL", core.DirectionUp, now, time.Hour),
	})

	// Two hours later the insight has expired: the symbol gets one
	// explicit zero target to flatten the position.
	later := now.Add(2 * time.Hour)
	targets := m.CreateTargets(later, nil)

	if len(targets) != 1 {
		t.Fatalf("expected 1 zero target, got %d", len(targets))
	}
	if targets[0].Symbol != "AAPL" || targets[0].Percent != 0 {
		t.Errorf("target = %+v, want AAPL at 0", targets[0])
	}

	// No repeat zero target on the next tick.
	if targets := m.CreateTargets(later.Add(time.Hour), nil); len(targets) != 0 {
		t.Errorf("expected no targets, got %v", targets)
	}
}

func TestEqualWeighting_LatestInsightWins(t *testing.T) {
	m := NewEqualWeighting()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m.CreateTargets(now, []core.Insight{
		insightAt("AAPL", core.DirectionUp, now, 24*time.Hour),
	})
	targets := m.CreateTargets(now.Add(time.Hour), []core.Insight{
		insightAt("AAPL", core.DirectionDown, now.Add(time.Hour), 24*time.Hour),
	})

	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}
	if targets[0].Percent != -1 {
		t.Errorf("percent = %f, want -1 after reversal", targets[0].Percent)
	}
}

func TestEqualWeighting_RemoveSymbols(t *testing.T) {
	m := NewEqualWeighting()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m.CreateTargets(now, []core.Insight{
		insightAt("AAPL", core.DirectionUp, now, 24*time.Hour),
		insightAt("MSFT", core.DirectionUp, now, 24*time.Hour),
	})

	m.RemoveSymbols("AAPL")

	targets := m.CreateTargets(now.Add(time.Hour), nil)
	byPercent := map[string]float64{}
	for _, tgt := range targets {
		byPercent[tgt.Symbol] = tgt.Percent
	}
	// AAPL left the universe: its allocation zeroes, MSFT takes the full
	// weight.
	if byPercent["AAPL"] != 0 {
		t.Errorf("AAPL percent = %f, want 0", byPercent["AAPL"])
	}
	if byPercent["MSFT"] != 1 {
		t.Errorf("MSFT percent = %f, want 1", byPercent["MSFT"])
	}
}

func TestEqualWeighting_ModelsShareSymbol(t *testing.T) {
	m := NewEqualWeighting()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	targets := m.CreateTargets(now, []core.Insight{
		modelInsightAt("low_volatility", "SOXL", core.DirectionUp, now, time.Hour),
		modelInsightAt("etf_decay", "SOXL", core.DirectionDown, now, time.Hour),
		modelInsightAt("low_volatility", "TQQQ", core.DirectionUp, now, time.Hour),
	})

	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d: %v", len(targets), targets)
	}
	byPercent := map[string]float64{}
	for _, tgt := range targets {
		byPercent[tgt.Symbol] = tgt.Percent
	}
	// Three equal shares; the opposing SOXL insights net to zero while
	// TQQQ keeps its share.
	if byPercent["SOXL"] != 0 {
		t.Errorf("SOXL percent = %f, want 0", byPercent["SOXL"])
	}
	if third := 1.0 / 3.0; byPercent["TQQQ"] != third {
		t.Errorf("TQQQ percent = %f, want %f", byPercent["TQQQ"], third)
	}
}

func TestInsightCollection_PerModelSlots(t *testing.T) {
	c := NewInsightCollection()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c.Add(
		modelInsightAt("low_volatility", "SOXL", core.DirectionUp, now, time.Hour),
		modelInsightAt("etf_decay", "SOXL", core.DirectionDown, now, time.Hour),
	)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want one slot per model", c.Len())
	}

	active := c.ActiveAt(now)
	if len(active) != 2 {
		t.Errorf("active = %d, want both models' insights", len(active))
	}

	// Removing the symbol clears every model's slot.
	c.Remove("SOXL")
	if c.Len() != 0 {
		t.Errorf("Len = %d after Remove, want 0", c.Len())
	}
}

func TestInsightCollection_ActiveAt(t *testing.T) {
	c := NewInsightCollection()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c.Add(
		insightAt("AAPL", core.DirectionUp, now, time.Hour),
		insightAt("MSFT", core.DirectionUp, now, 3*time.Hour),
	)

	active := c.ActiveAt(now.Add(2 * time.Hour))
	if len(active) != 1 || active[0].Symbol != "MSFT" {
		t.Errorf("active = %v, want only MSFT", active)
	}

	expired := c.RemoveExpired(now.Add(2 * time.Hour))
	if len(expired) != 1 || expired[0].Symbol != "AAPL" {
		t.Errorf("expired = %v, want only AAPL", expired)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
