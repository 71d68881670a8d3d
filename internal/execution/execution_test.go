package execution

import (
	"context"
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/broker"
	"github.com/quantarc/alphabench/internal/broker/paper"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBroker(t *testing.T, cash float64, prices map[string]float64) *paper.Broker {
	t.Helper()
	b := paper.New(cash, 0)
	require.NoError(t, b.Connect(context.Background()))
	for sym, price := range prices {
		b.MarkPrice(sym, price, time.Now())
	}
	return b
}

func TestImmediate_BuysToTarget(t *testing.T) {
	b := testBroker(t, 10000, map[string]float64{"AAPL": 100})
	e := NewImmediate(b, nil)

	orders, err := e.Execute(context.Background(),
		[]core.Target{{Symbol: "AAPL", Percent: 0.5}},
		map[string]float64{"AAPL": 100})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, broker.OrderSideBuy, orders[0].Side)
	assert.Equal(t, int64(50), orders[0].Quantity)

	pos, err := b.GetPosition(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(50), pos.Quantity)
}

func TestImmediate_SellsExcess(t *testing.T) {
	b := testBroker(t, 10000, map[string]float64{"AAPL": 100})
	e := NewImmediate(b, nil)
	ctx := context.Background()

	_, err := e.Execute(ctx,
		[]core.Target{{Symbol: "AAPL", Percent: 0.5}},
		map[string]float64{"AAPL": 100})
	require.NoError(t, err)

	// Halve the target: the delta sells 25 shares.
	orders, err := e.Execute(ctx,
		[]core.Target{{Symbol: "AAPL", Percent: 0.25}},
		map[string]float64{"AAPL": 100})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, broker.OrderSideSell, orders[0].Side)
	assert.Equal(t, int64(25), orders[0].Quantity)
}

func TestImmediate_ShortTarget(t *testing.T) {
	b := testBroker(t, 10000, map[string]float64{"SOXS": 20})
	e := NewImmediate(b, nil)

	orders, err := e.Execute(context.Background(),
		[]core.Target{{Symbol: "SOXS", Percent: -0.2}},
		map[string]float64{"SOXS": 20})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, broker.OrderSideSell, orders[0].Side)
	assert.Equal(t, int64(100), orders[0].Quantity)

	pos, err := b.GetPosition(context.Background(), "SOXS")
	require.NoError(t, err)
	assert.Equal(t, int64(-100), pos.Quantity)
}

func TestImmediate_NoDeltaNoOrder(t *testing.T) {
	b := testBroker(t, 10000, map[string]float64{"AAPL": 100})
	e := NewImmediate(b, nil)
	ctx := context.Background()

	_, err := e.Execute(ctx,
		[]core.Target{{Symbol: "AAPL", Percent: 0.5}},
		map[string]float64{"AAPL": 100})
	require.NoError(t, err)

	// Same target again at an unchanged portfolio value: no order.
	orders, err := e.Execute(ctx,
		[]core.Target{{Symbol: "AAPL", Percent: 0.5}},
		map[string]float64{"AAPL": 100})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestImmediate_SkipsUnpricedTargets(t *testing.T) {
	b := testBroker(t, 10000, nil)
	e := NewImmediate(b, nil)

	orders, err := e.Execute(context.Background(),
		[]core.Target{{Symbol: "UNKNOWN", Percent: 0.5}},
		map[string]float64{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestImmediate_EmptySymbol(t *testing.T) {
	b := testBroker(t, 10000, nil)
	e := NewImmediate(b, nil)

	_, err := e.Execute(context.Background(),
		[]core.Target{{Symbol: "", Percent: 0.5}},
		map[string]float64{"": 1})
	assert.ErrorIs(t, err, ErrNilTarget)
}
