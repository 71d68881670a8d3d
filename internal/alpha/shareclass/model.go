// Package shareclass trades the spread between two share classes of the
// same company (GOOG/GOOGL by default). The classes track each other
// almost perfectly, so the long/short spread value mean-reverts around its
// moving average.
package shareclass

import (
	"fmt"
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/indicator"
)

// Model implements the share-class mean reversion alpha. It emits paired
// insights and drives holdings directly through the Targeter interface.
type Model struct {
	symbolA   string // leg held short when the spread is rich
	symbolB   string
	smaPeriod int
	legWeight float64
	period    time.Duration

	sma       *indicator.RollingSMA
	alphaQty  int64
	betaQty   int64
	sized     bool
	prevValue float64
	havePrev  bool

	targets []core.Target
}

// New creates the model over a pair of share-class symbols.
func New(symbolA, symbolB string) *Model {
	return &Model{
		symbolA:   symbolA,
		symbolB:   symbolB,
		smaPeriod: 20,
		legWeight: 0.5,
		period:    5 * time.Minute,
		sma:       indicator.NewRollingSMA(20),
	}
}

func (m *Model) Name() string { return "share_class_reversion" }

func (m *Model) Description() string {
	return fmt.Sprintf("Share-class mean reversion (%s/%s)", m.symbolA, m.symbolB)
}

func (m *Model) Resolution() core.Resolution { return core.ResolutionMinute }

func (m *Model) Init(cfg alpha.Config) error {
	if period, ok := cfg.Params["sma_period"].(int); ok && period > 1 {
		m.smaPeriod = period
		m.sma = indicator.NewRollingSMA(period)
	}
	return nil
}

// Symbols returns the traded pair.
func (m *Model) Symbols() []string {
	return []string{m.symbolA, m.symbolB}
}

// Update skips ticks where either leg lacks a bar, warms the spread SMA,
// then trades: enter the spread toward its mean when flat, exit when the
// spread crosses the mean. Targets persist between ticks so the pair stays
// on while the spread has not reverted.
func (m *Model) Update(ctx alpha.UpdateContext) ([]core.Insight, error) {
	if !ctx.Data.Contains(m.symbolA, m.symbolB) {
		return nil, nil
	}
	barA, _ := ctx.Data.Get(m.symbolA)
	barB, _ := ctx.Data.Get(m.symbolB)

	// Size both legs at half the portfolio on the first complete tick.
	if !m.sized {
		if barA.Close <= 0 || barB.Close <= 0 {
			return nil, nil
		}
		m.alphaQty = int64(ctx.Portfolio.TotalValue * m.legWeight / barA.Close)
		m.betaQty = int64(ctx.Portfolio.TotalValue * m.legWeight / barB.Close)
		m.sized = true
	}

	value := float64(m.alphaQty)*barA.Close - float64(m.betaQty)*barB.Close
	m.sma.Update(ctx.Time, value)

	if !m.sma.IsReady() {
		m.prevValue = value
		m.havePrev = true
		return nil, nil
	}

	mean := m.sma.Value()
	crossed := m.havePrev && ((value >= mean) != (m.prevValue >= mean))
	m.prevValue = value
	m.havePrev = true

	var insights []core.Insight

	switch {
	case !ctx.Portfolio.Invested:
		if value >= mean {
			// Spread rich: short A, long B, expect reversion down.
			insights = append(insights,
				core.NewInsight(m.symbolB, m.period, core.DirectionUp, 0),
				core.NewInsight(m.symbolA, m.period, core.DirectionDown, 0),
			)
			m.targets = []core.Target{
				{Symbol: m.symbolB, Percent: m.legWeight},
				{Symbol: m.symbolA, Percent: -m.legWeight},
			}
		} else {
			insights = append(insights,
				core.NewInsight(m.symbolB, m.period, core.DirectionDown, 0),
				core.NewInsight(m.symbolA, m.period, core.DirectionUp, 0),
			)
			m.targets = []core.Target{
				{Symbol: m.symbolB, Percent: -m.legWeight},
				{Symbol: m.symbolA, Percent: m.legWeight},
			}
		}
	case crossed:
		// Spread reverted: close both legs.
		m.targets = []core.Target{
			{Symbol: m.symbolA, Percent: 0},
			{Symbol: m.symbolB, Percent: 0},
		}
	}

	return insights, nil
}

// Targets implements alpha.Targeter: the holdings the model currently
// wants. Entry targets are held until the spread crosses its mean, so the
// short insight horizon never flattens the pair on its own.
func (m *Model) Targets() []core.Target {
	return m.targets
}

// OnSecuritiesChanged is a no-op; the pair is fixed at construction.
func (m *Model) OnSecuritiesChanged(_ alpha.UpdateContext, _ core.SecurityChanges) error {
	return nil
}
