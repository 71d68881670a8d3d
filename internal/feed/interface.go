package feed

import (
	"sync"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// HistoryProvider serves historical bars for warm-up and backtesting.
type HistoryProvider interface {
	Name() string
	FetchHistory(symbol string, start, end time.Time, resolution core.Resolution) ([]core.Bar, error)
}

// FundamentalProvider serves the per-symbol data universe selection ranks on.
type FundamentalProvider interface {
	Name() string
	FetchCoarse(t time.Time) ([]core.CoarseFundamental, error)
	FetchFundamentals(symbols []string) (map[string]core.Fundamental, error)
}

// Registry manages history provider plugins
type Registry struct {
	mu        sync.RWMutex
	providers map[string]HistoryProvider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]HistoryProvider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(p HistoryProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (HistoryProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetAll returns all registered providers
func (r *Registry) GetAll() []HistoryProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]HistoryProvider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}
