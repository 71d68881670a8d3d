package alpha

import (
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// Config holds alpha model configuration
type Config struct {
	Enabled bool
	Params  map[string]any
}

// HistoryFunc retrieves the trailing bars for each requested symbol.
// Symbols with no available history are absent from the result map.
type HistoryFunc func(symbols []string, bars int, resolution core.Resolution) (map[string][]core.Bar, error)

// PortfolioView is a read-only snapshot of portfolio state given to models.
type PortfolioView struct {
	// Cash is the uninvested cash balance.
	Cash float64
	// TotalValue is cash plus the market value of all holdings.
	TotalValue float64
	// Invested reports whether any position is open.
	Invested bool
	// Quantities holds the signed share count per symbol.
	Quantities map[string]int64
}

// UpdateContext carries everything a model may inspect on one data tick.
type UpdateContext struct {
	// Time is the engine clock for this tick.
	Time time.Time
	// Data is the latest bar per subscribed symbol.
	Data core.Slice
	// Securities are the currently active universe members.
	Securities []core.Security
	// History fetches trailing bars on demand.
	History HistoryFunc
	// Portfolio is the current portfolio snapshot.
	Portfolio PortfolioView
}

// Model is an alpha model: it inspects market data on each tick and emits
// directional insights. Models are notified when universe membership changes
// so they can maintain per-symbol state.
type Model interface {
	Name() string
	Description() string
	Resolution() core.Resolution
	Init(cfg Config) error
	Update(ctx UpdateContext) ([]core.Insight, error)
	OnSecuritiesChanged(ctx UpdateContext, changes core.SecurityChanges) error
}

// Targeter is implemented by models that drive holdings directly in
// addition to emitting insights. Returned targets are desired portfolio
// percentages per symbol and replace construction output for those symbols.
type Targeter interface {
	Targets() []core.Target
}
