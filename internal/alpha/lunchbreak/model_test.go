package lunchbreak

import (
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
)

func noonContext(hour int, bars map[string]core.Bar) alpha.UpdateContext {
	var securities []core.Security
	for sym := range bars {
		securities = append(securities, core.Security{Symbol: sym, HasData: true})
	}
	return alpha.UpdateContext{
		Time:       time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC),
		Data:       core.Slice{Bars: bars},
		Securities: securities,
	}
}

func TestModel_OnlyActsAtNoon(t *testing.T) {
	m := New()
	bars := map[string]core.Bar{"AAPL": {Symbol: "AAPL", Open: 100, Close: 101}}

	insights, err := m.Update(noonContext(10, bars))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("expected no insights off the trigger hour, got %d", len(insights))
	}
}

func TestModel_ReversionDirections(t *testing.T) {
	m := New()
	bars := map[string]core.Bar{
		"UP":   {Symbol: "UP", Open: 100, Close: 102},
		"DOWN": {Symbol: "DOWN", Open: 100, Close: 98},
	}

	insights, err := m.Update(noonContext(12, bars))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected insights for every security, got %d", len(insights))
	}

	bydir := map[string]core.Direction{}
	for _, in := range insights {
		bydir[in.Symbol] = in.Direction
		if in.Period != time.Hour {
			t.Errorf("%s period = %v, want 1h", in.Symbol, in.Period)
		}
	}
	if bydir["UP"] != core.DirectionDown {
		t.Errorf("rallied stock direction = %v, want down", bydir["UP"])
	}
	if bydir["DOWN"] != core.DirectionUp {
		t.Errorf("fallen stock direction = %v, want up", bydir["DOWN"])
	}
}

func TestModel_SkipsZeroOpen(t *testing.T) {
	m := New()
	bars := map[string]core.Bar{"BAD": {Symbol: "BAD", Open: 0, Close: 10}}

	insights, err := m.Update(noonContext(12, bars))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("expected zero-open bar to be skipped, got %d insights", len(insights))
	}
}

func TestModel_ConfigurableTriggerHour(t *testing.T) {
	m := New()
	m.Init(alpha.Config{Params: map[string]any{"trigger_hour": 14}})

	bars := map[string]core.Bar{"AAPL": {Symbol: "AAPL", Open: 100, Close: 99}}

	insights, _ := m.Update(noonContext(12, bars))
	if len(insights) != 0 {
		t.Error("expected noon bar to be ignored with a 14:00 trigger")
	}
	insights, _ = m.Update(noonContext(14, bars))
	if len(insights) != 1 {
		t.Errorf("expected 1 insight at the configured hour, got %d", len(insights))
	}
}
