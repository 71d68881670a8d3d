// Package universe provides the models that decide which securities the
// engine tracks. Selection runs on a cadence; the engine diffs consecutive
// selections into security additions and removals for the alpha models.
package universe

import (
	"context"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// Snapshot is the market and fundamental data a selection model ranks on.
type Snapshot struct {
	// Time is the engine clock when selection runs.
	Time time.Time
	// Coarse holds one row per candidate symbol with price/volume data.
	Coarse []core.CoarseFundamental
	// Fine holds fundamental data keyed by symbol for candidates that have it.
	Fine map[string]core.Fundamental
}

// SelectionModel chooses the set of tracked symbols from a snapshot.
type SelectionModel interface {
	Name() string
	Select(ctx context.Context, snap Snapshot) ([]string, error)
}
