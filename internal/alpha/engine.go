package alpha

import (
	"context"
	"sync"

	"github.com/quantarc/alphabench/internal/core"
	"go.uber.org/zap"
)

// Engine manages and runs alpha models
type Engine struct {
	mu     sync.RWMutex
	models map[string]Model
	logger *zap.Logger
}

// NewEngine creates a new alpha model engine
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		models: make(map[string]Model),
		logger: l,
	}
}

// Register adds a model to the engine
func (e *Engine) Register(m Model) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.models[m.Name()] = m
}

// Get retrieves a model by name
func (e *Engine) Get(name string) (Model, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.models[name]
	return m, ok
}

// GetAll returns all registered models
func (e *Engine) GetAll() []Model {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Model, 0, len(e.models))
	for _, m := range e.models {
		result = append(result, m)
	}
	return result
}

// Update runs every model against the tick and collects their insights.
// A model failure is logged and skipped so one model cannot starve the rest.
func (e *Engine) Update(ctx context.Context, updateCtx UpdateContext) ([]core.Insight, error) {
	e.mu.RLock()
	models := make([]Model, 0, len(e.models))
	for _, m := range e.models {
		models = append(models, m)
	}
	e.mu.RUnlock()

	var all []core.Insight

	for _, m := range models {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		insights, err := m.Update(updateCtx)
		if err != nil {
			e.logger.Warn("alpha model update failed",
				zap.String("model", m.Name()),
				zap.Error(err),
			)
			continue
		}

		for i := range insights {
			insights[i].Model = m.Name()
			if insights[i].GeneratedAt.IsZero() {
				insights[i].GeneratedAt = updateCtx.Time
			}
		}

		all = append(all, insights...)
	}

	return all, nil
}

// UpdateWithModels runs specific models by name.
func (e *Engine) UpdateWithModels(ctx context.Context, updateCtx UpdateContext, names []string) ([]core.Insight, error) {
	var all []core.Insight

	for _, name := range names {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		m, ok := e.Get(name)
		if !ok {
			continue
		}

		insights, err := m.Update(updateCtx)
		if err != nil {
			e.logger.Warn("alpha model update failed",
				zap.String("model", m.Name()),
				zap.Error(err),
			)
			continue
		}

		for i := range insights {
			insights[i].Model = m.Name()
			if insights[i].GeneratedAt.IsZero() {
				insights[i].GeneratedAt = updateCtx.Time
			}
		}

		all = append(all, insights...)
	}

	return all, nil
}

// NotifySecuritiesChanged fans universe membership changes out to all models.
func (e *Engine) NotifySecuritiesChanged(updateCtx UpdateContext, changes core.SecurityChanges) {
	if changes.IsEmpty() {
		return
	}

	for _, m := range e.GetAll() {
		if err := m.OnSecuritiesChanged(updateCtx, changes); err != nil {
			e.logger.Warn("securities-changed hook failed",
				zap.String("model", m.Name()),
				zap.Error(err),
			)
		}
	}
}
