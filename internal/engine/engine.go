// Package engine drives the algorithm loop: universe selection, alpha
// model updates, portfolio construction, risk adjustment and execution,
// once per data slice.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/broker/paper"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/execution"
	"github.com/quantarc/alphabench/internal/feed"
	"github.com/quantarc/alphabench/internal/metrics"
	"github.com/quantarc/alphabench/internal/portfolio"
	"github.com/quantarc/alphabench/internal/risk"
	"github.com/quantarc/alphabench/internal/storage/insight"
	"github.com/quantarc/alphabench/internal/universe"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures an Engine.
type Options struct {
	// Resolution is the bar interval the engine ticks at.
	Resolution core.Resolution
	// HistoryConcurrency bounds parallel history fetches during warm-up.
	HistoryConcurrency int
}

// DefaultOptions returns daily ticking with modest warm-up parallelism.
func DefaultOptions() Options {
	return Options{
		Resolution:         core.ResolutionDaily,
		HistoryConcurrency: 8,
	}
}

// Engine wires the framework components together and advances them one
// data slice at a time. Backtest and live loops both drive it through
// OnSlice.
type Engine struct {
	opts Options

	selection    universe.SelectionModel
	alphas       *alpha.Engine
	construction portfolio.ConstructionModel
	riskModel    risk.Model
	exec         execution.Model
	broker       *paper.Broker
	history      feed.HistoryProvider
	fundamentals feed.FundamentalProvider
	store        insight.Store
	metrics      *metrics.Registry
	logger       *zap.Logger

	mu         sync.Mutex
	securities map[string]*core.Security
	now        time.Time
}

// New assembles an engine. The fundamental provider, insight store and
// metrics registry are optional.
func New(
	opts Options,
	selection universe.SelectionModel,
	alphas *alpha.Engine,
	construction portfolio.ConstructionModel,
	riskModel risk.Model,
	exec execution.Model,
	b *paper.Broker,
	history feed.HistoryProvider,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opts:         opts,
		selection:    selection,
		alphas:       alphas,
		construction: construction,
		riskModel:    riskModel,
		exec:         exec,
		broker:       b,
		history:      history,
		logger:       logger,
		securities:   make(map[string]*core.Security),
	}
}

// SetFundamentals wires a fundamental provider for universe snapshots.
func (e *Engine) SetFundamentals(p feed.FundamentalProvider) { e.fundamentals = p }

// SetInsightStore wires a store that receives every emitted insight.
func (e *Engine) SetInsightStore(s insight.Store) { e.store = s }

// SetMetrics wires a metrics registry.
func (e *Engine) SetMetrics(m *metrics.Registry) { e.metrics = m }

// Securities returns the active universe members, sorted by symbol.
func (e *Engine) Securities() []core.Security {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.securitiesLocked()
}

func (e *Engine) securitiesLocked() []core.Security {
	result := make([]core.Security, 0, len(e.securities))
	for _, sec := range e.securities {
		result = append(result, *sec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })
	return result
}

// OnSlice advances the engine by one data slice: marks prices, refreshes
// the universe, updates alpha models, constructs targets and executes.
func (e *Engine) OnSlice(ctx context.Context, slice core.Slice) error {
	started := time.Now()

	e.mu.Lock()
	e.now = slice.Time
	for symbol, bar := range slice.Bars {
		e.broker.MarkPrice(symbol, bar.Close, slice.Time)
		if sec, ok := e.securities[symbol]; ok {
			sec.LastBar = bar
			sec.HasData = true
		}
	}
	e.mu.Unlock()

	if err := e.refreshUniverse(ctx, slice); err != nil {
		e.logger.Warn("universe refresh failed", zap.Error(err))
	}

	updateCtx, err := e.updateContext(ctx, slice)
	if err != nil {
		return err
	}

	insights, err := e.alphas.Update(ctx, updateCtx)
	if err != nil {
		return err
	}
	e.recordInsights(ctx, insights)

	targets := e.construction.CreateTargets(slice.Time, insights)
	targets = e.mergeModelTargets(targets)
	targets = e.riskModel.Adjust(targets)

	prices := make(map[string]float64, len(slice.Bars))
	for symbol, bar := range slice.Bars {
		prices[symbol] = bar.Close
	}

	orders, err := e.exec.Execute(ctx, targets, prices)
	if err != nil {
		return err
	}

	if e.metrics != nil {
		for _, order := range orders {
			e.metrics.OrderPlaced(string(order.Side), string(order.Status))
		}
		e.metrics.CycleCompleted(time.Since(started))
	}

	e.logger.Debug("slice processed",
		zap.Time("time", slice.Time),
		zap.Int("bars", len(slice.Bars)),
		zap.Int("insights", len(insights)),
		zap.Int("orders", len(orders)),
	)
	return nil
}

// refreshUniverse runs the selection model and applies membership changes.
// Cadence (e.g. monthly for fundamental selection) lives in the model.
func (e *Engine) refreshUniverse(ctx context.Context, slice core.Slice) error {
	snap := universe.Snapshot{Time: slice.Time}

	if e.fundamentals != nil {
		coarse, err := e.fundamentals.FetchCoarse(slice.Time)
		if err != nil {
			return err
		}
		snap.Coarse = coarse

		symbols := make([]string, 0, len(coarse))
		for _, c := range coarse {
			if c.HasFundamentalData {
				symbols = append(symbols, c.Symbol)
			}
		}
		fine, err := e.fundamentals.FetchFundamentals(symbols)
		if err != nil {
			return err
		}
		snap.Fine = fine
	}

	selected, err := e.selection.Select(ctx, snap)
	if err != nil {
		return err
	}

	e.mu.Lock()
	selectedSet := make(map[string]struct{}, len(selected))
	var changes core.SecurityChanges

	for _, symbol := range selected {
		selectedSet[symbol] = struct{}{}
		if _, ok := e.securities[symbol]; !ok {
			sec := &core.Security{Symbol: symbol}
			if bar, ok := slice.Bars[symbol]; ok {
				sec.LastBar = bar
				sec.HasData = true
			}
			e.securities[symbol] = sec
			changes.Added = append(changes.Added, *sec)
		}
	}
	for symbol, sec := range e.securities {
		if _, ok := selectedSet[symbol]; !ok {
			changes.Removed = append(changes.Removed, *sec)
			delete(e.securities, symbol)
		}
	}
	e.mu.Unlock()

	if changes.IsEmpty() {
		return nil
	}

	e.logger.Info("universe changed",
		zap.String("model", e.selection.Name()),
		zap.Int("added", len(changes.Added)),
		zap.Int("removed", len(changes.Removed)),
	)

	if remover, ok := e.construction.(interface{ RemoveSymbols(...string) }); ok {
		symbols := make([]string, 0, len(changes.Removed))
		for _, sec := range changes.Removed {
			symbols = append(symbols, sec.Symbol)
		}
		remover.RemoveSymbols(symbols...)
	}

	updateCtx, err := e.updateContext(ctx, slice)
	if err != nil {
		return err
	}
	e.alphas.NotifySecuritiesChanged(updateCtx, changes)
	return nil
}

// updateContext snapshots portfolio state and binds the history fetcher.
func (e *Engine) updateContext(ctx context.Context, slice core.Slice) (alpha.UpdateContext, error) {
	balance, err := e.broker.GetBalance(ctx)
	if err != nil {
		return alpha.UpdateContext{}, err
	}
	positions, err := e.broker.GetPositions(ctx)
	if err != nil {
		return alpha.UpdateContext{}, err
	}

	quantities := make(map[string]int64, len(positions))
	for _, pos := range positions {
		quantities[pos.Symbol] = pos.Quantity
	}

	return alpha.UpdateContext{
		Time:       slice.Time,
		Data:       slice,
		Securities: e.Securities(),
		History:    e.historyFunc(ctx, slice.Time),
		Portfolio: alpha.PortfolioView{
			Cash:       balance.Cash,
			TotalValue: balance.TotalValue,
			Invested:   len(positions) > 0,
			Quantities: quantities,
		},
	}, nil
}

// historyFunc fetches trailing bars for many symbols in parallel.
func (e *Engine) historyFunc(ctx context.Context, now time.Time) alpha.HistoryFunc {
	return func(symbols []string, bars int, resolution core.Resolution) (map[string][]core.Bar, error) {
		// History ends one bar before now; the current slice reaches
		// models through Update.
		end := now.Add(-resolution.Duration())
		start := end.Add(-time.Duration(bars+1) * resolution.Duration() * 2)

		var mu sync.Mutex
		result := make(map[string][]core.Bar, len(symbols))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.HistoryConcurrency)

		for _, symbol := range symbols {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				history, err := e.history.FetchHistory(symbol, start, end, resolution)
				if err != nil || len(history) == 0 {
					return nil // symbols without history are simply absent
				}
				if len(history) > bars {
					history = history[len(history)-bars:]
				}
				mu.Lock()
				result[symbol] = history
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// mergeModelTargets overlays holdings targets from Targeter models on top
// of construction output; model targets win per symbol.
func (e *Engine) mergeModelTargets(targets []core.Target) []core.Target {
	var modelTargets []core.Target
	for _, m := range e.alphas.GetAll() {
		if t, ok := m.(alpha.Targeter); ok {
			modelTargets = append(modelTargets, t.Targets()...)
		}
	}
	if len(modelTargets) == 0 {
		return targets
	}

	bySymbol := make(map[string]core.Target, len(targets)+len(modelTargets))
	for _, t := range targets {
		bySymbol[t.Symbol] = t
	}
	for _, t := range modelTargets {
		bySymbol[t.Symbol] = t
	}

	merged := make([]core.Target, 0, len(bySymbol))
	for _, t := range bySymbol {
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Symbol < merged[j].Symbol })
	return merged
}

func (e *Engine) recordInsights(ctx context.Context, insights []core.Insight) {
	for _, in := range insights {
		if e.metrics != nil {
			e.metrics.InsightGenerated(in.Model, in.Direction.String())
		}
		if e.store != nil {
			if err := e.store.Save(ctx, in); err != nil {
				e.logger.Warn("insight save failed",
					zap.String("model", in.Model),
					zap.Error(err),
				)
			}
		}
	}
}
