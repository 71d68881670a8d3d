package backtest

import (
	"math"

	"github.com/quantarc/alphabench/internal/core"
)

// periodsPerYear maps a bar resolution to its annualization factor.
func periodsPerYear(resolution core.Resolution) float64 {
	switch resolution {
	case core.ResolutionMinute:
		return 252 * 390
	case core.ResolutionHour:
		return 252 * 6.5
	default:
		return 252
	}
}

// CalculateStats computes performance statistics from the equity curve.
func CalculateStats(initialCash float64, equity []EquityPoint, resolution core.Resolution) Stats {
	stats := Stats{BarsProcessed: len(equity)}
	if len(equity) == 0 || initialCash <= 0 {
		return stats
	}

	final := equity[len(equity)-1].Value
	stats.TotalReturn = (final - initialCash) / initialCash * 100
	stats.MaxDrawdown = calculateMaxDrawdown(equity) * 100

	returns := periodReturns(equity)
	periods := periodsPerYear(resolution)
	stats.SharpeRatio = calculateSharpeRatio(returns, periods)
	stats.Volatility = stdDev(returns) * math.Sqrt(periods) * 100

	return stats
}

// periodReturns converts equity samples into per-period returns.
func periodReturns(equity []EquityPoint) []float64 {
	var returns []float64
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, equity[i].Value/prev-1)
	}
	return returns
}

// calculateMaxDrawdown finds the largest peak-to-trough decline.
func calculateMaxDrawdown(equity []EquityPoint) float64 {
	var maxDD float64
	var peak float64

	for _, point := range equity {
		if point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			dd := (peak - point.Value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio computes risk-adjusted return.
// Assumes risk-free rate of 0 for simplicity.
func calculateSharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}

	return (mean * periodsPerYear) / (sd * math.Sqrt(periodsPerYear))
}

func stdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	return math.Sqrt(variance / float64(len(returns)-1))
}
