// Package lunchbreak trades the intraday mean reversion around the
// low-volume lunch hour: stocks that rallied in the hour before noon are
// predicted to give it back, stocks that fell to recover.
package lunchbreak

import (
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/core"
)

// Model implements the lunch-break mean reversion alpha.
type Model struct {
	triggerHour int
	period      time.Duration
}

// New creates the model. Insights are valid for one hourly bar.
func New() *Model {
	return &Model{
		triggerHour: 12,
		period:      time.Hour,
	}
}

func (m *Model) Name() string { return "lunch_break_reversion" }

func (m *Model) Description() string {
	return "Mean reversion over the lunch-break hour"
}

func (m *Model) Resolution() core.Resolution { return core.ResolutionHour }

func (m *Model) Init(cfg alpha.Config) error {
	if hour, ok := cfg.Params["trigger_hour"].(int); ok && hour >= 0 && hour < 24 {
		m.triggerHour = hour
	}
	return nil
}

// Update only acts on the noon bar. For every security with data it emits
// a Down insight if the pre-lunch hour was up and an Up insight if it was
// down, expecting the move to revert over lunch.
func (m *Model) Update(ctx alpha.UpdateContext) ([]core.Insight, error) {
	if ctx.Time.Hour() != m.triggerHour {
		return nil, nil
	}

	var insights []core.Insight
	for _, sec := range ctx.Securities {
		if !sec.HasData {
			continue
		}
		bar, ok := ctx.Data.Get(sec.Symbol)
		if !ok || bar.Open == 0 {
			continue
		}

		hourReturn := bar.Close/bar.Open - 1
		direction := core.DirectionUp
		if hourReturn > 0 {
			direction = core.DirectionDown
		}
		insights = append(insights, core.NewInsight(sec.Symbol, m.period, direction, 0))
	}
	return insights, nil
}

// OnSecuritiesChanged is a no-op; the model is stateless between ticks.
func (m *Model) OnSecuritiesChanged(_ alpha.UpdateContext, _ core.SecurityChanges) error {
	return nil
}
