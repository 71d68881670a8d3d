// Package risk adjusts portfolio targets before execution.
package risk

import "github.com/quantarc/alphabench/internal/core"

// Model inspects the targets produced by portfolio construction and
// returns the set execution is allowed to act on.
type Model interface {
	Name() string
	Adjust(targets []core.Target) []core.Target
}

// Null passes targets through unchanged.
type Null struct{}

// NewNull creates the pass-through risk model.
func NewNull() *Null { return &Null{} }

func (n *Null) Name() string { return "null" }

// Adjust implements Model.
func (n *Null) Adjust(targets []core.Target) []core.Target {
	return targets
}

// MaxPositionPercent caps the absolute allocation of any single target.
type MaxPositionPercent struct {
	limit float64
}

// NewMaxPositionPercent creates the model. limit is a fraction of
// portfolio value, e.g. 0.1 for 10%.
func NewMaxPositionPercent(limit float64) *MaxPositionPercent {
	return &MaxPositionPercent{limit: limit}
}

func (m *MaxPositionPercent) Name() string { return "max_position_percent" }

// Adjust clamps each target to the configured limit.
func (m *MaxPositionPercent) Adjust(targets []core.Target) []core.Target {
	if m.limit <= 0 {
		return targets
	}

	out := make([]core.Target, len(targets))
	copy(out, targets)
	for i := range out {
		if out[i].Percent > m.limit {
			out[i].Percent = m.limit
		}
		if out[i].Percent < -m.limit {
			out[i].Percent = -m.limit
		}
	}
	return out
}
