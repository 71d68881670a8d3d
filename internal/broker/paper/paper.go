// Package paper implements a simulated broker that fills market orders
// immediately at the last marked price. The engine marks prices from each
// data slice before routing orders, so fills happen at bar closes.
package paper

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantarc/alphabench/internal/broker"
)

// Broker is an in-memory simulated broker. Short positions are supported;
// quantity is signed throughout.
type Broker struct {
	mu        sync.RWMutex
	connected bool

	cash        float64
	feePerOrder float64
	prices      map[string]float64
	positions   map[string]*broker.Position
	orders      map[string]*broker.Order
	now         time.Time
}

// New creates a paper broker with the given starting cash and a constant
// per-order fee. The benchmark algorithms all run with a zero fee.
func New(cash, feePerOrder float64) *Broker {
	return &Broker{
		cash:        cash,
		feePerOrder: feePerOrder,
		prices:      make(map[string]float64),
		positions:   make(map[string]*broker.Position),
		orders:      make(map[string]*broker.Order),
		now:         time.Now(),
	}
}

// Name returns the broker identifier.
func (b *Broker) Name() string { return "paper" }

// Connect marks the broker connected.
func (b *Broker) Connect(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected {
		return broker.ErrAlreadyConnected
	}
	b.connected = true
	return nil
}

// Disconnect marks the broker disconnected.
func (b *Broker) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

// IsConnected reports the connection state.
func (b *Broker) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// MarkPrice records the latest market price for a symbol and revalues any
// open position. The engine calls this for every bar in a slice.
func (b *Broker) MarkPrice(symbol string, price float64, at time.Time) {
	if price <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[symbol] = price
	b.now = at
	if pos, ok := b.positions[symbol]; ok {
		b.revalue(pos, price)
	}
}

// PlaceOrder fills a market order immediately at the marked price. Limit
// orders fill only when the marked price satisfies the limit.
func (b *Broker) PlaceOrder(_ context.Context, req broker.OrderRequest) (*broker.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil, broker.ErrNotConnected
	}

	price, ok := b.prices[req.Symbol]
	if !ok {
		return nil, broker.ErrNoMarketPrice
	}
	if req.Type == broker.OrderTypeLimit {
		if (req.Side == broker.OrderSideBuy && price > req.Price) ||
			(req.Side == broker.OrderSideSell && price < req.Price) {
			order := b.newOrder(req, broker.OrderStatusRejected)
			order.RejectionReason = "limit price not marketable"
			b.orders[order.OrderID] = order
			return order, nil
		}
	}

	cost := price*float64(req.Quantity) + b.feePerOrder
	if req.Side == broker.OrderSideBuy && cost > b.cash+b.shortProceeds() {
		return nil, broker.ErrInsufficientFunds
	}

	order := b.newOrder(req, broker.OrderStatusFilled)
	order.FilledQuantity = req.Quantity
	order.AverageFillPrice = price
	order.Commission = b.feePerOrder
	b.orders[order.OrderID] = order

	b.applyFill(order)
	return order, nil
}

// CancelOrder rejects cancellation for terminal orders; paper fills are
// immediate so every order is terminal by the time this can be called.
func (b *Broker) CancelOrder(_ context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.orders[orderID]; !ok {
		return broker.ErrOrderNotFound
	}
	return nil
}

// GetOrder returns an order by ID.
func (b *Broker) GetOrder(_ context.Context, orderID string) (*broker.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, ok := b.orders[orderID]
	if !ok {
		return nil, broker.ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

// GetOpenOrders returns orders that are not terminal. Always empty for
// the paper broker.
func (b *Broker) GetOpenOrders(_ context.Context) ([]broker.Order, error) {
	return []broker.Order{}, nil
}

// GetPositions returns all non-flat positions.
func (b *Broker) GetPositions(_ context.Context) ([]broker.Position, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]broker.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		if pos.Quantity != 0 {
			result = append(result, *pos)
		}
	}
	return result, nil
}

// GetPosition returns the position for a symbol, flat if none exists.
func (b *Broker) GetPosition(_ context.Context, symbol string) (*broker.Position, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if pos, ok := b.positions[symbol]; ok {
		out := *pos
		return &out, nil
	}
	return &broker.Position{Symbol: symbol, UpdatedAt: b.now}, nil
}

// Fills returns every filled order, oldest first.
func (b *Broker) Fills() []broker.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]broker.Order, 0, len(b.orders))
	for _, order := range b.orders {
		if order.Status == broker.OrderStatusFilled {
			result = append(result, *order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// GetBalance returns cash plus the market value of all positions.
func (b *Broker) GetBalance(_ context.Context) (*broker.Balance, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := b.cash
	for _, pos := range b.positions {
		total += pos.MarketValue
	}
	return &broker.Balance{
		Currency:   "USD",
		Cash:       b.cash,
		TotalValue: total,
		UpdatedAt:  b.now,
	}, nil
}

func (b *Broker) newOrder(req broker.OrderRequest, status broker.OrderStatus) *broker.Order {
	return &broker.Order{
		OrderID:       uuid.NewString(),
		ClientOrderID: req.ClientOrderID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Price:         req.Price,
		Status:        status,
		CreatedAt:     b.now,
		UpdatedAt:     b.now,
	}
}

// applyFill moves cash and updates the signed position for a filled order.
func (b *Broker) applyFill(order *broker.Order) {
	signed := order.FilledQuantity
	if order.Side == broker.OrderSideSell {
		signed = -signed
	}

	pos, ok := b.positions[order.Symbol]
	if !ok {
		pos = &broker.Position{Symbol: order.Symbol}
		b.positions[order.Symbol] = pos
	}

	fillPrice := order.AverageFillPrice
	b.cash -= float64(signed)*fillPrice + order.Commission

	oldQty := pos.Quantity
	newQty := oldQty + signed

	switch {
	case oldQty == 0 || (oldQty > 0) == (signed > 0):
		// Opening or adding: weighted average cost.
		totalCost := float64(oldQty)*pos.AverageCost + float64(signed)*fillPrice
		if newQty != 0 {
			pos.AverageCost = totalCost / float64(newQty)
		}
	case (newQty >= 0) == (oldQty >= 0):
		// Reducing without crossing zero: realize P&L on the closed part.
		closed := signed
		if closed < 0 {
			closed = -closed
		}
		direction := float64(1)
		if oldQty < 0 {
			direction = -1
		}
		pos.RealizedPL += (fillPrice - pos.AverageCost) * float64(closed) * direction
	default:
		// Crossing zero: realize on the whole old position, reopen the rest.
		direction := float64(1)
		if oldQty < 0 {
			direction = -1
		}
		closed := oldQty
		if closed < 0 {
			closed = -closed
		}
		pos.RealizedPL += (fillPrice - pos.AverageCost) * float64(closed) * direction
		pos.AverageCost = fillPrice
	}

	pos.Quantity = newQty
	b.revalue(pos, fillPrice)

	if pos.Quantity == 0 && pos.RealizedPL == 0 {
		delete(b.positions, order.Symbol)
	}
}

func (b *Broker) revalue(pos *broker.Position, price float64) {
	pos.CurrentPrice = price
	pos.MarketValue = float64(pos.Quantity) * price
	pos.CostBasis = float64(pos.Quantity) * pos.AverageCost
	pos.UnrealizedPL = pos.MarketValue - pos.CostBasis
	pos.UpdatedAt = b.now
}

// shortProceeds is the cash backing of open shorts, usable as buying power
// when covering.
func (b *Broker) shortProceeds() float64 {
	var total float64
	for _, pos := range b.positions {
		if pos.Quantity < 0 {
			total += -pos.MarketValue
		}
	}
	return total
}
