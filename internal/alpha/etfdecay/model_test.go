package etfdecay

import (
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
)

func TestModel_ShortsBothLegs(t *testing.T) {
	m := New([]Pair{{UltraLong: "SOXL", UltraShort: "SOXS"}})

	ctx := alpha.UpdateContext{Time: time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)}
	insights, err := m.Update(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	for _, in := range insights {
		if in.Direction != core.DirectionDown {
			t.Errorf("%s direction = %v, want down", in.Symbol, in.Direction)
		}
		if in.Period != 24*time.Hour {
			t.Errorf("%s period = %v, want 24h", in.Symbol, in.Period)
		}
	}
}

func TestModel_OncePerDay(t *testing.T) {
	m := New(DefaultPairs())

	morning := alpha.UpdateContext{Time: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	insights, _ := m.Update(morning)
	if len(insights) != 6 {
		t.Fatalf("expected 6 insights for 3 pairs, got %d", len(insights))
	}

	afternoon := alpha.UpdateContext{Time: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)}
	insights, _ = m.Update(afternoon)
	if len(insights) != 0 {
		t.Errorf("expected no repeat emission on the same day, got %d", len(insights))
	}

	nextDay := alpha.UpdateContext{Time: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)}
	insights, _ = m.Update(nextDay)
	if len(insights) != 6 {
		t.Errorf("expected fresh emission the next day, got %d", len(insights))
	}
}

func TestModel_Symbols(t *testing.T) {
	m := New([]Pair{{UltraLong: "UGLD", UltraShort: "DGLD"}})
	symbols := m.Symbols()
	if len(symbols) != 2 || symbols[0] != "UGLD" || symbols[1] != "DGLD" {
		t.Errorf("Symbols = %v", symbols)
	}
}
