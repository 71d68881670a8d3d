// Package lowvol ranks the active universe by the standard deviation of
// daily returns and emits Up insights for the least volatile names.
package lowvol

import (
	"fmt"
	"sort"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/indicator"
)

// Model implements the low-volatility stock selection alpha.
type Model struct {
	lookback   int
	stockCount int
	resolution core.Resolution
}

// New creates the model with default benchmark parameters.
func New() *Model {
	return &Model{
		lookback:   252,
		stockCount: 10,
		resolution: core.ResolutionDaily,
	}
}

func (m *Model) Name() string { return "low_volatility" }

func (m *Model) Description() string {
	return fmt.Sprintf("Low volatility selection (%d lowest over %d days)", m.stockCount, m.lookback)
}

func (m *Model) Resolution() core.Resolution { return m.resolution }

func (m *Model) Init(cfg alpha.Config) error {
	if lookback, ok := cfg.Params["lookback"].(int); ok && lookback > 1 {
		m.lookback = lookback
	}
	if n, ok := cfg.Params["number_of_stocks"].(int); ok && n > 0 {
		m.stockCount = n
	}
	return nil
}

// Update ranks active securities by return volatility and emits Up
// insights for the lowest-volatility subset.
func (m *Model) Update(ctx alpha.UpdateContext) ([]core.Insight, error) {
	var symbols []string
	for _, sec := range ctx.Securities {
		if sec.HasData {
			symbols = append(symbols, sec.Symbol)
		}
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	history, err := ctx.History(symbols, m.lookback, m.resolution)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, core.ErrNoData
	}

	type symbolVol struct {
		symbol string
		vol    float64
	}

	ranked := make([]symbolVol, 0, len(history))
	for symbol, bars := range history {
		if len(bars) < 2 {
			continue
		}
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		ranked = append(ranked, symbolVol{
			symbol: symbol,
			vol:    indicator.StdDev(indicator.Returns(closes)),
		})
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].vol == ranked[j].vol {
			return ranked[i].symbol < ranked[j].symbol
		}
		return ranked[i].vol < ranked[j].vol
	})

	count := m.stockCount
	if count > len(ranked) {
		count = len(ranked)
	}

	insights := make([]core.Insight, 0, count)
	for _, sv := range ranked[:count] {
		insights = append(insights, core.NewInsight(sv.symbol, m.resolution.Duration(), core.DirectionUp, 0))
	}
	return insights, nil
}

// OnSecuritiesChanged is a no-op; the model re-ranks from scratch each tick.
func (m *Model) OnSecuritiesChanged(_ alpha.UpdateContext, _ core.SecurityChanges) error {
	return nil
}
