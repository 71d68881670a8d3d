package universe

import "context"

// Manual is a selection model with a fixed, manually curated symbol list.
type Manual struct {
	symbols []string
}

// NewManual creates a manual selection model over the given symbols.
func NewManual(symbols ...string) *Manual {
	out := make([]string, len(symbols))
	copy(out, symbols)
	return &Manual{symbols: out}
}

func (m *Manual) Name() string { return "manual" }

// Select always returns the configured symbols.
func (m *Manual) Select(_ context.Context, _ Snapshot) ([]string, error) {
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out, nil
}
