// internal/storage/insight/memory_test.go
package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

var _ Store = (*MemoryStore)(nil)

func insightFor(symbol, model string, direction core.Direction, at time.Time) core.Insight {
	in := core.NewInsight(symbol, 24*time.Hour, direction, 0.01)
	in.Model = model
	in.GeneratedAt = at
	return in
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	in := insightFor("AAPL", "lowvol", core.DirectionUp, time.Now())
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Symbol != "AAPL" || got.Direction != core.DirectionUp {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, core.ErrInsightNotFound) {
		t.Errorf("expected ErrInsightNotFound, got %v", err)
	}
}

func TestMemoryStore_TrimsOldest(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	first := insightFor("A", "m", core.DirectionUp, time.Now())
	store.Save(ctx, first)
	store.Save(ctx, insightFor("B", "m", core.DirectionUp, time.Now()))
	store.Save(ctx, insightFor("C", "m", core.DirectionUp, time.Now()))

	count, err := store.Count(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if _, err := store.GetByID(ctx, first.ID); !errors.Is(err, core.ErrInsightNotFound) {
		t.Error("oldest insight should have been trimmed")
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	store.Save(ctx, insightFor("AAPL", "lowvol", core.DirectionUp, base))
	store.Save(ctx, insightFor("AAPL", "lunchbreak", core.DirectionDown, base.Add(time.Hour)))
	store.Save(ctx, insightFor("MSFT", "lowvol", core.DirectionUp, base.Add(2*time.Hour)))

	bySymbol, _ := store.List(ctx, ListFilter{Symbol: "AAPL"})
	if len(bySymbol) != 2 {
		t.Errorf("symbol filter: got %d, want 2", len(bySymbol))
	}

	byModel, _ := store.List(ctx, ListFilter{Model: "lowvol"})
	if len(byModel) != 2 {
		t.Errorf("model filter: got %d, want 2", len(byModel))
	}

	down := core.DirectionDown
	byDirection, _ := store.List(ctx, ListFilter{Direction: &down})
	if len(byDirection) != 1 || byDirection[0].Model != "lunchbreak" {
		t.Errorf("direction filter: got %+v", byDirection)
	}

	byTime, _ := store.List(ctx, ListFilter{From: base.Add(30 * time.Minute), To: base.Add(90 * time.Minute)})
	if len(byTime) != 1 || byTime[0].Direction != core.DirectionDown {
		t.Errorf("time filter: got %+v", byTime)
	}
}

func TestMemoryStore_Pagination(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Save(ctx, insightFor("AAPL", "m", core.DirectionUp, time.Now()))
	}

	page, _ := store.List(ctx, ListFilter{Limit: 2})
	if len(page) != 2 {
		t.Errorf("limit: got %d, want 2", len(page))
	}

	page, _ = store.List(ctx, ListFilter{Offset: 3})
	if len(page) != 2 {
		t.Errorf("offset: got %d, want 2", len(page))
	}

	page, _ = store.List(ctx, ListFilter{Offset: 10})
	if len(page) != 0 {
		t.Errorf("offset past end: got %d, want 0", len(page))
	}
}
