package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

func equityCurve(values ...float64) []EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]EquityPoint, len(values))
	for i, v := range values {
		points[i] = EquityPoint{Time: base.AddDate(0, 0, i), Value: v}
	}
	return points
}

func TestCalculateStats_TotalReturn(t *testing.T) {
	equity := equityCurve(100000, 105000, 110000)
	stats := CalculateStats(100000, equity, core.ResolutionDaily)

	if stats.BarsProcessed != 3 {
		t.Errorf("BarsProcessed = %d, want 3", stats.BarsProcessed)
	}
	if math.Abs(stats.TotalReturn-10) > 1e-9 {
		t.Errorf("TotalReturn = %f, want 10", stats.TotalReturn)
	}
}

func TestCalculateStats_Empty(t *testing.T) {
	stats := CalculateStats(100000, nil, core.ResolutionDaily)
	if stats.BarsProcessed != 0 || stats.TotalReturn != 0 || stats.SharpeRatio != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestCalculateMaxDrawdown(t *testing.T) {
	// Peak 120, trough 90: drawdown 25%.
	equity := equityCurve(100, 120, 90, 110)
	dd := calculateMaxDrawdown(equity)
	if math.Abs(dd-0.25) > 1e-9 {
		t.Errorf("drawdown = %f, want 0.25", dd)
	}
}

func TestCalculateMaxDrawdown_MonotonicRise(t *testing.T) {
	equity := equityCurve(100, 110, 120)
	if dd := calculateMaxDrawdown(equity); dd != 0 {
		t.Errorf("drawdown = %f, want 0", dd)
	}
}

func TestPeriodReturns(t *testing.T) {
	equity := equityCurve(100, 110, 99)
	returns := periodReturns(equity)
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-0.10) > 1e-9 {
		t.Errorf("returns[0] = %f, want 0.10", returns[0])
	}
	if math.Abs(returns[1]-(-0.10)) > 1e-9 {
		t.Errorf("returns[1] = %f, want -0.10", returns[1])
	}
}

func TestCalculateSharpeRatio(t *testing.T) {
	if s := calculateSharpeRatio([]float64{0.01}, 252); s != 0 {
		t.Errorf("single return: sharpe = %f, want 0", s)
	}
	if s := calculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 252); s != 0 {
		t.Errorf("zero variance: sharpe = %f, want 0", s)
	}

	returns := []float64{0.01, -0.005, 0.02, 0.0}
	s := calculateSharpeRatio(returns, 252)
	if s <= 0 {
		t.Errorf("positive drift should give positive sharpe, got %f", s)
	}
}

func TestPeriodsPerYear(t *testing.T) {
	tests := []struct {
		resolution core.Resolution
		want       float64
	}{
		{core.ResolutionDaily, 252},
		{core.ResolutionHour, 252 * 6.5},
		{core.ResolutionMinute, 252 * 390},
	}
	for _, tt := range tests {
		if got := periodsPerYear(tt.resolution); got != tt.want {
			t.Errorf("periodsPerYear(%s) = %f, want %f", tt.resolution, got, tt.want)
		}
	}
}

func TestStdDev(t *testing.T) {
	got := stdDev([]float64{1, 2, 3, 4})
	want := math.Sqrt(5.0 / 3.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("stdDev = %f, want %f", got, want)
	}
	if stdDev([]float64{1}) != 0 {
		t.Error("expected 0 for single sample")
	}
}
