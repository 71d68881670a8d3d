package backtest

import (
	"time"

	"github.com/quantarc/alphabench/internal/broker"
)

// Result holds the complete backtest output.
type Result struct {
	RunID       string         `json:"run_id"`
	Models      []string       `json:"models"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	InitialCash float64        `json:"initial_cash"`
	FinalValue  float64        `json:"final_value"`
	Equity      []EquityPoint  `json:"equity"`
	Fills       []broker.Order `json:"fills"`
	Stats       Stats          `json:"stats"`
}

// EquityPoint is a portfolio value sample taken after each slice.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Stats holds performance statistics.
type Stats struct {
	BarsProcessed int     `json:"bars_processed"`
	TotalOrders   int     `json:"total_orders"`
	TotalReturn   float64 `json:"total_return"` // Net return percentage
	MaxDrawdown   float64 `json:"max_drawdown"` // Largest peak-to-trough decline, percent
	SharpeRatio   float64 `json:"sharpe_ratio"` // Risk-adjusted return (annualized)
	Volatility    float64 `json:"volatility"`   // Annualized stddev of period returns, percent
}
