// internal/storage/insight/memory.go
package insight

import (
	"context"
	"sync"

	"github.com/quantarc/alphabench/internal/core"
)

// MemoryStore is an in-memory insight store.
type MemoryStore struct {
	insights []core.Insight
	maxSize  int
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		insights: make([]core.Insight, 0, maxSize),
		maxSize:  maxSize,
	}
}

// Save adds an insight to the store.
func (m *MemoryStore) Save(ctx context.Context, in core.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insights = append(m.insights, in)

	// Trim if over capacity (remove oldest)
	if len(m.insights) > m.maxSize {
		m.insights = m.insights[len(m.insights)-m.maxSize:]
	}

	return nil
}

// GetByID retrieves an insight by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.insights {
		if m.insights[i].ID == id {
			in := m.insights[i]
			return &in, nil
		}
	}
	return nil, core.ErrInsightNotFound
}

// List returns insights matching the filter.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Insight
	for _, in := range m.insights {
		if m.matches(in, filter) {
			result = append(result, in)
		}
	}

	// Apply offset and limit
	if filter.Offset > 0 && filter.Offset < len(result) {
		result = result[filter.Offset:]
	} else if filter.Offset >= len(result) {
		return []core.Insight{}, nil
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching insights.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, in := range m.insights {
		if m.matches(in, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) matches(in core.Insight, filter ListFilter) bool {
	if filter.Symbol != "" && in.Symbol != filter.Symbol {
		return false
	}
	if filter.Model != "" && in.Model != filter.Model {
		return false
	}
	if filter.Direction != nil && in.Direction != *filter.Direction {
		return false
	}
	if !filter.From.IsZero() && in.GeneratedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && in.GeneratedAt.After(filter.To) {
		return false
	}
	return true
}
