// Package etfdecay shorts both legs of triple-leveraged ETF pairs to
// capture volatility decay: daily compounding erodes the value of a 3x
// bull fund and its 3x bear twin alike.
package etfdecay

import (
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
)

// Pair groups the bull and bear triple-leveraged ETFs over one underlying.
type Pair struct {
	// UltraLong is the 3x bull fund.
	UltraLong string
	// UltraShort is the 3x bear fund.
	UltraShort string
}

// DefaultPairs are the benchmark 3x pairs: gold, biotech and semiconductors.
func DefaultPairs() []Pair {
	return []Pair{
		{UltraLong: "UGLD", UltraShort: "DGLD"},
		{UltraLong: "LABU", UltraShort: "LABD"},
		{UltraLong: "SOXL", UltraShort: "SOXS"},
	}
}

// Model implements the volatility-decay alpha.
type Model struct {
	pairs    []Pair
	period   time.Duration
	lastDate time.Time
}

// New creates the model over the given ETF pairs.
func New(pairs []Pair) *Model {
	return &Model{
		pairs:  pairs,
		period: 24 * time.Hour,
	}
}

func (m *Model) Name() string { return "etf_volatility_decay" }

func (m *Model) Description() string {
	return "Short-biased rebalancing of 3x leveraged ETF pairs"
}

func (m *Model) Resolution() core.Resolution { return core.ResolutionDaily }

func (m *Model) Init(cfg alpha.Config) error {
	if raw, ok := cfg.Params["pairs"].([]Pair); ok && len(raw) > 0 {
		m.pairs = raw
	}
	return nil
}

// Symbols returns every leg of every configured pair.
func (m *Model) Symbols() []string {
	symbols := make([]string, 0, 2*len(m.pairs))
	for _, p := range m.pairs {
		symbols = append(symbols, p.UltraLong, p.UltraShort)
	}
	return symbols
}

// Update emits one Down insight per leg per calendar day, rebalancing the
// short book daily.
func (m *Model) Update(ctx alpha.UpdateContext) ([]core.Insight, error) {
	year, month, day := ctx.Time.Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, ctx.Time.Location())
	if date.Equal(m.lastDate) {
		return nil, nil
	}
	m.lastDate = date

	insights := make([]core.Insight, 0, 2*len(m.pairs))
	for _, pair := range m.pairs {
		insights = append(insights,
			core.NewInsight(pair.UltraLong, m.period, core.DirectionDown, 0),
			core.NewInsight(pair.UltraShort, m.period, core.DirectionDown, 0),
		)
	}
	return insights, nil
}

// OnSecuritiesChanged is a no-op; the pair list is manually curated.
func (m *Model) OnSecuritiesChanged(_ alpha.UpdateContext, _ core.SecurityChanges) error {
	return nil
}
