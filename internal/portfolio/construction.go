// Package portfolio turns directional insights into desired holdings.
package portfolio

import (
	"sort"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// ConstructionModel converts the stream of insights into portfolio targets.
type ConstructionModel interface {
	Name() string
	// CreateTargets folds new insights into the model state and returns
	// the desired allocation per symbol at time now. Symbols whose
	// insights all expired receive an explicit zero target once.
	CreateTargets(now time.Time, insights []core.Insight) []core.Target
}

// EqualWeighting allocates an equal fraction of the portfolio to every
// active insight, signed by the insight direction. Flat insights free the
// symbol's allocation.
type EqualWeighting struct {
	collection *InsightCollection
	targeted   map[string]struct{}
}

// NewEqualWeighting creates the construction model.
func NewEqualWeighting() *EqualWeighting {
	return &EqualWeighting{
		collection: NewInsightCollection(),
		targeted:   make(map[string]struct{}),
	}
}

func (m *EqualWeighting) Name() string { return "equal_weighting" }

// CreateTargets implements ConstructionModel.
func (m *EqualWeighting) CreateTargets(now time.Time, insights []core.Insight) []core.Target {
	m.collection.Add(insights...)
	m.collection.RemoveExpired(now)

	active := m.collection.ActiveAt(now)

	directional := make([]core.Insight, 0, len(active))
	for _, in := range active {
		if in.Direction != core.DirectionFlat {
			directional = append(directional, in)
		}
	}

	var targets []core.Target
	if len(directional) > 0 {
		// Each active directional insight gets an equal share; shares
		// for the same symbol net, so opposing models cancel.
		percent := 1.0 / float64(len(directional))
		weights := make(map[string]float64, len(directional))
		for _, in := range directional {
			weights[in.Symbol] += float64(in.Direction) * percent
		}
		for sym, w := range weights {
			targets = append(targets, core.Target{Symbol: sym, Percent: w})
		}
	}

	// Zero out symbols that were targeted before but are no longer active.
	current := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		current[t.Symbol] = struct{}{}
	}
	for sym := range m.targeted {
		if _, ok := current[sym]; !ok {
			targets = append(targets, core.Target{Symbol: sym, Percent: 0})
		}
	}

	m.targeted = current

	// Deterministic ordering for execution and tests.
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Symbol < targets[j].Symbol
	})
	return targets
}

// RemoveSymbols clears state for securities that left the universe so no
// stale target keeps a position open.
func (m *EqualWeighting) RemoveSymbols(symbols ...string) {
	m.collection.Remove(symbols...)
}
