// Package broker defines the order, position and balance types the
// execution layer trades through, and the Broker interface itself.
package broker

import (
	"context"
	"errors"
	"time"
)

// Broker-specific errors.
var (
	// ErrNotConnected indicates the broker is not connected.
	ErrNotConnected = errors.New("broker: not connected")
	// ErrAlreadyConnected indicates the broker is already connected.
	ErrAlreadyConnected = errors.New("broker: already connected")
	// ErrOrderNotFound indicates the order was not found.
	ErrOrderNotFound = errors.New("broker: order not found")
	// ErrInvalidSymbol indicates an invalid or empty symbol.
	ErrInvalidSymbol = errors.New("broker: invalid symbol")
	// ErrInvalidQuantity indicates an invalid quantity.
	ErrInvalidQuantity = errors.New("broker: invalid quantity")
	// ErrInvalidPrice indicates an invalid price for limit orders.
	ErrInvalidPrice = errors.New("broker: invalid price for limit order")
	// ErrNoMarketPrice indicates no mark price is known for the symbol.
	ErrNoMarketPrice = errors.New("broker: no market price for symbol")
	// ErrInsufficientFunds indicates insufficient funds for the order.
	ErrInsufficientFunds = errors.New("broker: insufficient funds")
)

// OrderSide represents the direction of an order.
type OrderSide string

const (
	// OrderSideBuy represents a buy order.
	OrderSideBuy OrderSide = "BUY"
	// OrderSideSell represents a sell order.
	OrderSideSell OrderSide = "SELL"
)

// OrderType represents the type of order execution.
type OrderType string

const (
	// OrderTypeMarket executes at current market price.
	OrderTypeMarket OrderType = "MARKET"
	// OrderTypeLimit executes at specified price or better.
	OrderTypeLimit OrderType = "LIMIT"
)

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates order is awaiting execution.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusFilled indicates order has been completely filled.
	OrderStatusFilled OrderStatus = "FILLED"
	// OrderStatusCancelled indicates order was cancelled.
	OrderStatusCancelled OrderStatus = "CANCELLED"
	// OrderStatusRejected indicates order was rejected by broker.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// OrderRequest represents a request to place a new order.
type OrderRequest struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`
	// Side indicates buy or sell.
	Side OrderSide `json:"side"`
	// Type specifies the order execution type.
	Type OrderType `json:"type"`
	// Quantity is the number of shares/units to trade.
	Quantity int64 `json:"quantity"`
	// Price is the limit price (required for LIMIT orders).
	Price float64 `json:"price,omitempty"`
	// ClientOrderID is an optional client-specified identifier.
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// Validate checks if the order request has valid required fields.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return ErrInvalidSymbol
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Type == OrderTypeLimit && r.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Order represents an order in the broker system.
type Order struct {
	OrderID          string      `json:"order_id"`
	ClientOrderID    string      `json:"client_order_id,omitempty"`
	Symbol           string      `json:"symbol"`
	Side             OrderSide   `json:"side"`
	Type             OrderType   `json:"type"`
	Quantity         int64       `json:"quantity"`
	Price            float64     `json:"price,omitempty"`
	Status           OrderStatus `json:"status"`
	FilledQuantity   int64       `json:"filled_quantity"`
	AverageFillPrice float64     `json:"average_fill_price"`
	Commission       float64     `json:"commission"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	RejectionReason  string      `json:"rejection_reason,omitempty"`
}

// IsFilled returns true if the order is completely filled.
func (o Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}

// IsTerminal returns true if the order is in a final state.
func (o Order) IsTerminal() bool {
	return o.Status == OrderStatusFilled ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusRejected
}

// Position represents a holding in a security. Quantity is signed;
// negative quantities are short positions.
type Position struct {
	Symbol       string    `json:"symbol"`
	Quantity     int64     `json:"quantity"`
	AverageCost  float64   `json:"average_cost"`
	CurrentPrice float64   `json:"current_price"`
	MarketValue  float64   `json:"market_value"`
	UnrealizedPL float64   `json:"unrealized_pl"`
	RealizedPL   float64   `json:"realized_pl"`
	CostBasis    float64   `json:"cost_basis"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLong returns true if this is a long position.
func (p Position) IsLong() bool {
	return p.Quantity > 0
}

// IsShort returns true if this is a short position.
func (p Position) IsShort() bool {
	return p.Quantity < 0
}

// Balance represents account balance information.
type Balance struct {
	// Currency is the currency code.
	Currency string `json:"currency"`
	// Cash is the available cash balance.
	Cash float64 `json:"cash"`
	// TotalValue is the total account value including positions.
	TotalValue float64 `json:"total_value"`
	// UpdatedAt is when the balance was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Broker defines the interface the execution layer trades through.
type Broker interface {
	// Name returns the broker identifier (e.g., "paper").
	Name() string

	// Connection management
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool

	// Order operations
	PlaceOrder(ctx context.Context, request OrderRequest) (*Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	GetOpenOrders(ctx context.Context) ([]Order, error)

	// Position operations
	GetPositions(ctx context.Context) ([]Position, error)
	GetPosition(ctx context.Context, symbol string) (*Position, error)

	// Account operations
	GetBalance(ctx context.Context) (*Balance, error)
}
