// Package backtest replays historical bars through the engine and scores
// the resulting equity curve.
package backtest

import (
	"context"
	"sort"
	"time"

	"github.com/quantarc/alphabench/internal/broker/paper"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/engine"
	"github.com/quantarc/alphabench/internal/feed"
	"github.com/quantarc/alphabench/internal/storage/results"
	"go.uber.org/zap"
)

// DataProvider supplies the symbols and bars a backtest replays.
type DataProvider interface {
	feed.HistoryProvider
	Symbols() []string
}

// Backtester replays bars through an engine against a paper broker.
type Backtester struct {
	engine     *engine.Engine
	broker     *paper.Broker
	provider   DataProvider
	resolution core.Resolution
	models     []string
	logger     *zap.Logger
}

// New creates a backtester. The engine must be wired to the same paper
// broker and to the provider as its history source.
func New(
	eng *engine.Engine,
	b *paper.Broker,
	provider DataProvider,
	resolution core.Resolution,
	models []string,
	logger *zap.Logger,
) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		engine:     eng,
		broker:     b,
		provider:   provider,
		resolution: resolution,
		models:     models,
		logger:     logger,
	}
}

// Run replays all provider bars between start and end through the engine
// and returns the scored result.
func (b *Backtester) Run(ctx context.Context, name string, start, end time.Time) (*Result, error) {
	slices, err := b.buildSlices(start, end)
	if err != nil {
		return nil, err
	}
	if len(slices) == 0 {
		return nil, core.ErrNoData
	}

	balance, err := b.broker.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	initialCash := balance.TotalValue

	b.logger.Info("backtest started",
		zap.String("run", name),
		zap.Int("slices", len(slices)),
		zap.Time("start", slices[0].Time),
		zap.Time("end", slices[len(slices)-1].Time),
	)

	equity := make([]EquityPoint, 0, len(slices))
	for _, slice := range slices {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := b.engine.OnSlice(ctx, slice); err != nil {
			b.logger.Warn("slice failed", zap.Time("time", slice.Time), zap.Error(err))
			continue
		}

		balance, err := b.broker.GetBalance(ctx)
		if err != nil {
			return nil, err
		}
		equity = append(equity, EquityPoint{Time: slice.Time, Value: balance.TotalValue})
	}

	fills := b.broker.Fills()
	stats := CalculateStats(initialCash, equity, b.resolution)
	stats.TotalOrders = len(fills)

	result := &Result{
		RunID:       results.NewRunID(name, time.Now()),
		Models:      b.models,
		StartDate:   slices[0].Time,
		EndDate:     slices[len(slices)-1].Time,
		InitialCash: initialCash,
		FinalValue:  equityFinal(equity, initialCash),
		Equity:      equity,
		Fills:       fills,
		Stats:       stats,
	}

	b.logger.Info("backtest finished",
		zap.String("run", result.RunID),
		zap.Float64("final_value", result.FinalValue),
		zap.Float64("total_return_pct", stats.TotalReturn),
		zap.Int("orders", stats.TotalOrders),
	)
	return result, nil
}

// buildSlices loads every symbol's bars and merges them into one
// time-ordered slice sequence.
func (b *Backtester) buildSlices(start, end time.Time) ([]core.Slice, error) {
	bySymbol := make(map[string][]core.Bar)
	for _, symbol := range b.provider.Symbols() {
		bars, err := b.provider.FetchHistory(symbol, start, end, b.resolution)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			bySymbol[symbol] = bars
		}
	}

	byTime := make(map[time.Time]map[string]core.Bar)
	for symbol, bars := range bySymbol {
		for _, bar := range bars {
			if byTime[bar.Time] == nil {
				byTime[bar.Time] = make(map[string]core.Bar)
			}
			byTime[bar.Time][symbol] = bar
		}
	}

	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	slices := make([]core.Slice, 0, len(times))
	for _, t := range times {
		slices = append(slices, core.Slice{Time: t, Bars: byTime[t]})
	}
	return slices, nil
}

func equityFinal(equity []EquityPoint, initialCash float64) float64 {
	if len(equity) == 0 {
		return initialCash
	}
	return equity[len(equity)-1].Value
}
