package portfolio

import (
	"sync"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// insightKey identifies the slot an insight occupies: each model holds at
// most one live insight per symbol.
type insightKey struct {
	model  string
	symbol string
}

// InsightCollection tracks emitted insights until they expire. The latest
// insight per (model, symbol) wins; construction models consult the
// active set.
type InsightCollection struct {
	mu    sync.RWMutex
	byKey map[insightKey]core.Insight
}

// NewInsightCollection creates an empty collection.
func NewInsightCollection() *InsightCollection {
	return &InsightCollection{
		byKey: make(map[insightKey]core.Insight),
	}
}

// Add stores insights, replacing any earlier insight the same model holds
// for the same symbol.
func (c *InsightCollection) Add(insights ...core.Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, in := range insights {
		c.byKey[insightKey{model: in.Model, symbol: in.Symbol}] = in
	}
}

// ActiveAt returns the insights still valid at t.
func (c *InsightCollection) ActiveAt(t time.Time) []core.Insight {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]core.Insight, 0, len(c.byKey))
	for _, in := range c.byKey {
		if in.IsActive(t) {
			result = append(result, in)
		}
	}
	return result
}

// RemoveExpired drops insights no longer valid at t and returns them.
func (c *InsightCollection) RemoveExpired(t time.Time) []core.Insight {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []core.Insight
	for key, in := range c.byKey {
		if !in.IsActive(t) {
			expired = append(expired, in)
			delete(c.byKey, key)
		}
	}
	return expired
}

// Remove drops every model's insight for the given symbols. Used when
// securities leave the universe.
func (c *InsightCollection) Remove(symbols ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sym := range symbols {
		for key := range c.byKey {
			if key.symbol == sym {
				delete(c.byKey, key)
			}
		}
	}
}

// Len returns the number of insights currently held.
func (c *InsightCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
