// Package execution routes portfolio targets to a broker as orders.
package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantarc/alphabench/internal/broker"
	"github.com/quantarc/alphabench/internal/core"
	"go.uber.org/zap"
)

// Execution-related errors.
var (
	// ErrNilTarget indicates a target with an empty symbol.
	ErrNilTarget = errors.New("execution: target symbol is empty")
)

// Model converts targets into orders against the broker.
type Model interface {
	Name() string
	Execute(ctx context.Context, targets []core.Target, prices map[string]float64) ([]broker.Order, error)
}

// Immediate places market orders for the full delta between current
// holdings and each target as soon as targets arrive.
type Immediate struct {
	broker broker.Broker
	logger *zap.Logger
}

// NewImmediate creates the immediate execution model.
func NewImmediate(b broker.Broker, logger *zap.Logger) *Immediate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Immediate{broker: b, logger: logger}
}

func (e *Immediate) Name() string { return "immediate" }

// Execute implements Model. Targets for symbols without a known price are
// skipped; a failed order is logged and does not stop the remaining orders.
func (e *Immediate) Execute(ctx context.Context, targets []core.Target, prices map[string]float64) ([]broker.Order, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	balance, err := e.broker.GetBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution: failed to get balance: %w", err)
	}

	var placed []broker.Order

	for _, target := range targets {
		if target.Symbol == "" {
			return placed, ErrNilTarget
		}

		price, ok := prices[target.Symbol]
		if !ok || price <= 0 {
			e.logger.Debug("skipping target without market price",
				zap.String("symbol", target.Symbol))
			continue
		}

		pos, err := e.broker.GetPosition(ctx, target.Symbol)
		if err != nil {
			return placed, fmt.Errorf("execution: failed to get position for %s: %w", target.Symbol, err)
		}

		desired := int64(balance.TotalValue * target.Percent / price)
		delta := desired - pos.Quantity
		if delta == 0 {
			continue
		}

		side := broker.OrderSideBuy
		quantity := delta
		if delta < 0 {
			side = broker.OrderSideSell
			quantity = -delta
		}

		order, err := e.broker.PlaceOrder(ctx, broker.OrderRequest{
			Symbol:   target.Symbol,
			Side:     side,
			Type:     broker.OrderTypeMarket,
			Quantity: quantity,
		})
		if err != nil {
			e.logger.Warn("order failed",
				zap.String("symbol", target.Symbol),
				zap.String("side", string(side)),
				zap.Int64("quantity", quantity),
				zap.Error(err),
			)
			continue
		}

		placed = append(placed, *order)
	}

	return placed, nil
}
