// Package magicformula emits momentum insights for securities selected by
// the Magic Formula universe (see internal/universe). Each symbol carries a
// rolling rate-of-change indicator; an Up insight with the ROC as magnitude
// is emitted whenever the indicator is ready and has new samples.
package magicformula

import (
	"fmt"
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/indicator"
)

// symbolData holds the per-symbol indicator state.
type symbolData struct {
	symbol   string
	roc      *indicator.RollingROC
	previous int
}

// canEmit reports whether the indicator is ready and received new samples
// since the last emission.
func (d *symbolData) canEmit() bool {
	if d.previous == d.roc.Samples() {
		return false
	}
	d.previous = d.roc.Samples()
	return d.roc.IsReady()
}

// Model implements the Magic Formula alpha.
type Model struct {
	lookback   int
	resolution core.Resolution
	period     time.Duration
	data       map[string]*symbolData
}

// New creates the model with the given ROC lookback in bars.
func New(lookback int) *Model {
	if lookback < 1 {
		lookback = 1
	}
	m := &Model{
		lookback:   lookback,
		resolution: core.ResolutionDaily,
		data:       make(map[string]*symbolData),
	}
	m.period = m.resolution.Duration() * time.Duration(m.lookback)
	return m
}

func (m *Model) Name() string { return "magic_formula" }

func (m *Model) Description() string {
	return fmt.Sprintf("Magic Formula momentum (ROC %d)", m.lookback)
}

func (m *Model) Resolution() core.Resolution { return m.resolution }

func (m *Model) Init(cfg alpha.Config) error {
	if lookback, ok := cfg.Params["lookback"].(int); ok && lookback > 0 {
		m.lookback = lookback
	}
	if res, ok := cfg.Params["resolution"].(string); ok {
		m.resolution = core.Resolution(res)
	}
	m.period = m.resolution.Duration() * time.Duration(m.lookback)
	return nil
}

// Update feeds the tick's bars into the per-symbol indicators and emits an
// Up insight for every symbol whose indicator can emit.
func (m *Model) Update(ctx alpha.UpdateContext) ([]core.Insight, error) {
	for symbol, bar := range ctx.Data.Bars {
		if d, ok := m.data[symbol]; ok {
			d.roc.Update(bar.Time, bar.Close)
		}
	}

	var insights []core.Insight
	for symbol, d := range m.data {
		if d.canEmit() {
			insights = append(insights, core.NewInsight(symbol, m.period, core.DirectionUp, d.roc.Value()))
		}
	}
	return insights, nil
}

// OnSecuritiesChanged drops state for removed securities and warms a fresh
// indicator from history for each added one.
func (m *Model) OnSecuritiesChanged(ctx alpha.UpdateContext, changes core.SecurityChanges) error {
	for _, removed := range changes.Removed {
		delete(m.data, removed.Symbol)
	}

	if len(changes.Added) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(changes.Added))
	for _, added := range changes.Added {
		if _, ok := m.data[added.Symbol]; !ok {
			symbols = append(symbols, added.Symbol)
		}
	}
	if len(symbols) == 0 {
		return nil
	}

	history, err := ctx.History(symbols, m.lookback+1, m.resolution)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	for _, symbol := range symbols {
		d := &symbolData{
			symbol: symbol,
			roc:    indicator.NewRollingROC(m.lookback),
		}
		for _, bar := range history[symbol] {
			d.roc.Update(bar.Time, bar.Close)
		}
		m.data[symbol] = d
	}
	return nil
}
