// internal/storage/insight/interface.go
package insight

import (
	"context"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// Store defines the interface for insight persistence.
type Store interface {
	// Save persists an insight.
	Save(ctx context.Context, in core.Insight) error

	// GetByID retrieves an insight by its ID.
	GetByID(ctx context.Context, id string) (*core.Insight, error)

	// List retrieves insights matching the filter.
	List(ctx context.Context, filter ListFilter) ([]core.Insight, error)

	// Count returns the number of insights matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing insights.
type ListFilter struct {
	Symbol    string
	Model     string
	Direction *core.Direction
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
