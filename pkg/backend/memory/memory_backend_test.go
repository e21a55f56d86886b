package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draakit/limitbook/pkg/core"
)

func newOrder(t *testing.T, orderType core.OrderType, id core.OrderID, side core.Side, price core.Price, qty core.Quantity) *core.Order {
	t.Helper()

	order, err := core.NewOrder(orderType, id, side, price, qty)
	require.NoError(t, err)
	return order
}

func TestNewMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	assert.NotNil(t, backend)
	assert.NotNil(t, backend.orders)
	assert.NotNil(t, backend.bids)
	assert.NotNil(t, backend.asks)
	assert.Equal(t, 0, backend.Size())
}

func TestMemoryBackend_OrderRegistry(t *testing.T) {
	backend := NewMemoryBackend()
	order := newOrder(t, core.GoodTillCancel, 1, core.Buy, 100, 10)

	assert.Nil(t, backend.GetOrder(1))

	require.NoError(t, backend.StoreOrder(order))
	assert.Same(t, order, backend.GetOrder(1))
	assert.Equal(t, 1, backend.Size())

	// Storing the same id twice must fail.
	err := backend.StoreOrder(order)
	assert.ErrorIs(t, err, core.ErrOrderExists)

	backend.DeleteOrder(1)
	assert.Nil(t, backend.GetOrder(1))
	assert.Equal(t, 0, backend.Size())

	// Deleting an unknown id is a no-op.
	backend.DeleteOrder(42)
}

func TestMemoryBackend_AppendToSide(t *testing.T) {
	backend := NewMemoryBackend()

	first := newOrder(t, core.GoodTillCancel, 1, core.Buy, 100, 10)
	second := newOrder(t, core.GoodTillCancel, 2, core.Buy, 100, 5)

	require.NoError(t, backend.StoreOrder(first))
	backend.AppendToSide(core.Buy, first)
	require.NoError(t, backend.StoreOrder(second))
	backend.AppendToSide(core.Buy, second)

	// FIFO within a level: the first order in is the head.
	assert.Same(t, first, backend.HeadOrder(core.Buy))

	price, ok := backend.BestPrice(core.Buy)
	require.True(t, ok)
	assert.Equal(t, core.Price(100), price)

	_, ok = backend.BestPrice(core.Sell)
	assert.False(t, ok)
	assert.Nil(t, backend.HeadOrder(core.Sell))
}

func TestMemoryBackend_RemoveFromSide(t *testing.T) {
	backend := NewMemoryBackend()

	first := newOrder(t, core.GoodTillCancel, 1, core.Sell, 100, 10)
	second := newOrder(t, core.GoodTillCancel, 2, core.Sell, 100, 5)
	third := newOrder(t, core.GoodTillCancel, 3, core.Sell, 100, 7)

	for _, o := range []*core.Order{first, second, third} {
		require.NoError(t, backend.StoreOrder(o))
		backend.AppendToSide(core.Sell, o)
	}

	// Removing the middle order must not disturb queue order.
	assert.True(t, backend.RemoveFromSide(core.Sell, second))
	assert.Same(t, first, backend.HeadOrder(core.Sell))

	assert.True(t, backend.RemoveFromSide(core.Sell, first))
	assert.Same(t, third, backend.HeadOrder(core.Sell))

	// The level disappears with its last order.
	assert.True(t, backend.RemoveFromSide(core.Sell, third))
	_, ok := backend.BestPrice(core.Sell)
	assert.False(t, ok)

	// Removing a never-queued order reports false.
	stray := newOrder(t, core.GoodTillCancel, 9, core.Sell, 100, 1)
	assert.False(t, backend.RemoveFromSide(core.Sell, stray))
}

func TestMemoryBackend_PriceOrdering(t *testing.T) {
	backend := NewMemoryBackend()

	prices := []core.Price{102, 99, 105, 100}
	for i, p := range prices {
		buy := newOrder(t, core.GoodTillCancel, core.OrderID(i+1), core.Buy, p, 1)
		require.NoError(t, backend.StoreOrder(buy))
		backend.AppendToSide(core.Buy, buy)

		sell := newOrder(t, core.GoodTillCancel, core.OrderID(i+100), core.Sell, p, 1)
		require.NoError(t, backend.StoreOrder(sell))
		backend.AppendToSide(core.Sell, sell)
	}

	bid, ok := backend.BestPrice(core.Buy)
	require.True(t, ok)
	assert.Equal(t, core.Price(105), bid, "best bid is the highest price")

	ask, ok := backend.BestPrice(core.Sell)
	require.True(t, ok)
	assert.Equal(t, core.Price(99), ask, "best ask is the lowest price")
}

func TestMemoryBackend_BestPriceMovesOnLevelRemoval(t *testing.T) {
	backend := NewMemoryBackend()

	best := newOrder(t, core.GoodTillCancel, 1, core.Buy, 101, 1)
	next := newOrder(t, core.GoodTillCancel, 2, core.Buy, 100, 1)

	for _, o := range []*core.Order{best, next} {
		require.NoError(t, backend.StoreOrder(o))
		backend.AppendToSide(core.Buy, o)
	}

	require.True(t, backend.RemoveFromSide(core.Buy, best))
	backend.DeleteOrder(1)

	price, ok := backend.BestPrice(core.Buy)
	require.True(t, ok)
	assert.Equal(t, core.Price(100), price)
	assert.Same(t, next, backend.HeadOrder(core.Buy))
}

func TestMemoryBackend_Levels(t *testing.T) {
	backend := NewMemoryBackend()

	orders := []struct {
		id    core.OrderID
		side  core.Side
		price core.Price
		qty   core.Quantity
	}{
		{1, core.Buy, 100, 4},
		{2, core.Buy, 100, 6},
		{3, core.Buy, 99, 2},
		{4, core.Sell, 101, 3},
		{5, core.Sell, 102, 8},
	}

	for _, o := range orders {
		order := newOrder(t, core.GoodTillCancel, o.id, o.side, o.price, o.qty)
		require.NoError(t, backend.StoreOrder(order))
		backend.AppendToSide(o.side, order)
	}

	bids := backend.Levels(core.Buy)
	require.Len(t, bids, 2)
	assert.Equal(t, core.LevelInfo{Price: 100, Quantity: 10}, bids[0])
	assert.Equal(t, core.LevelInfo{Price: 99, Quantity: 2}, bids[1])

	asks := backend.Levels(core.Sell)
	require.Len(t, asks, 2)
	assert.Equal(t, core.LevelInfo{Price: 101, Quantity: 3}, asks[0])
	assert.Equal(t, core.LevelInfo{Price: 102, Quantity: 8}, asks[1])

	// Levels reflect remaining quantity, so fills show up on the next call.
	require.NoError(t, backend.GetOrder(1).Fill(4))
	bids = backend.Levels(core.Buy)
	assert.Equal(t, core.Quantity(6), bids[0].Quantity)
}

func TestMemoryBackend_String(t *testing.T) {
	backend := NewMemoryBackend()

	order := newOrder(t, core.GoodTillCancel, 1, core.Buy, 100, 10)
	require.NoError(t, backend.StoreOrder(order))
	backend.AppendToSide(core.Buy, order)

	s := backend.String()
	assert.True(t, strings.Contains(s, "Bid:"))
	assert.True(t, strings.Contains(s, "Ask:"))
	assert.True(t, strings.Contains(s, "100"))
}

// assertSideConsistency checks that the per-level aggregation and the order
// registry agree: the sum of level quantities on a side equals the sum of
// remaining quantities of all registered orders on that side.
func assertSideConsistency(t *testing.T, backend *MemoryBackend, side core.Side) {
	t.Helper()

	var fromLevels core.Quantity
	for _, lvl := range backend.Levels(side) {
		fromLevels += lvl.Quantity
	}

	var fromRegistry core.Quantity
	for _, handle := range backend.orders {
		if handle.order.Side() == side {
			fromRegistry += handle.order.RemainingQuantity()
		}
	}

	require.Equal(t, fromRegistry, fromLevels,
		"levels and registry disagree on side %s", side)
}

func assertBookConsistency(t *testing.T, backend *MemoryBackend) {
	t.Helper()
	assertSideConsistency(t, backend, core.Buy)
	assertSideConsistency(t, backend, core.Sell)
}

// The scenarios below run the full engine on the real backend.

func TestEngine_RestAndCancel(t *testing.T) {
	book := core.NewOrderBook(NewMemoryBackend())
	ctx := context.Background()

	order := newOrder(t, core.GoodTillCancel, 1, core.Buy, 100, 10)
	trades, err := book.AddOrder(ctx, order)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 1, book.Size())

	canceled := book.CancelOrder(ctx, 1)
	require.NotNil(t, canceled)
	assert.Equal(t, core.OrderID(1), canceled.ID())
	assert.Equal(t, 0, book.Size())
}

func TestEngine_CrossingSequence(t *testing.T) {
	book := core.NewOrderBook(NewMemoryBackend())
	ctx := context.Background()

	_, err := book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 1, core.Sell, 101, 3))
	require.NoError(t, err)
	_, err = book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 2, core.Sell, 102, 3))
	require.NoError(t, err)
	_, err = book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 3, core.Sell, 103, 3))
	require.NoError(t, err)

	trades, err := book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 4, core.Buy, 102, 5))
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, core.OrderID(1), trades[0].Ask.OrderID)
	assert.Equal(t, core.Quantity(3), trades[0].Quantity())
	assert.Equal(t, core.OrderID(2), trades[1].Ask.OrderID)
	assert.Equal(t, core.Quantity(2), trades[1].Quantity())

	levels := book.GetLevels()
	require.Len(t, levels.Asks, 2)
	assert.Equal(t, core.LevelInfo{Price: 102, Quantity: 1}, levels.Asks[0])
	assert.Equal(t, core.LevelInfo{Price: 103, Quantity: 3}, levels.Asks[1])
	assert.Empty(t, levels.Bids)
}

func TestEngine_FillAndKill(t *testing.T) {
	book := core.NewOrderBook(NewMemoryBackend())
	ctx := context.Background()

	_, err := book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 1, core.Sell, 100, 5))
	require.NoError(t, err)

	trades, err := book.AddOrder(ctx, newOrder(t, core.FillAndKill, 2, core.Buy, 100, 8))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, core.Quantity(5), trades[0].Quantity())
	assert.Equal(t, 0, book.Size(), "fill-and-kill remainder never rests")

	// A fill-and-kill that cannot cross is dropped outright.
	trades, err = book.AddOrder(ctx, newOrder(t, core.FillAndKill, 3, core.Buy, 100, 8))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 0, book.Size())
}

func TestEngine_LevelRegistryConsistency(t *testing.T) {
	backend := NewMemoryBackend()
	book := core.NewOrderBook(backend)
	ctx := context.Background()

	// Resting adds, a partial fill, a fill-and-kill sweep with a cancelled
	// leftover, a reprice, cancels, and a bid-side clearout.
	steps := []func(){
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 1, core.Buy, 100, 10)) },
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 2, core.Buy, 100, 4)) },
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 3, core.Buy, 99, 7)) },
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 4, core.Sell, 101, 5)) },
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 5, core.Sell, 100, 6)) },
		func() { book.AddOrder(ctx, newOrder(t, core.FillAndKill, 6, core.Buy, 101, 8)) },
		func() { book.ModifyOrder(ctx, core.NewOrderModify(2, core.Buy, 102, 4)) },
		func() { book.CancelOrder(ctx, 3) },
		func() { book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 7, core.Sell, 100, 20)) },
		func() { book.CancelOrder(ctx, 999) },
	}

	assertBookConsistency(t, backend)
	for _, step := range steps {
		step()
		assertBookConsistency(t, backend)
	}
}

func TestEngine_ModifyKeepsIdentity(t *testing.T) {
	book := core.NewOrderBook(NewMemoryBackend())
	ctx := context.Background()

	_, err := book.AddOrder(ctx, newOrder(t, core.GoodTillCancel, 1, core.Sell, 105, 10))
	require.NoError(t, err)

	trades, err := book.ModifyOrder(ctx, core.NewOrderModify(1, core.Sell, 104, 6))
	require.NoError(t, err)
	assert.Empty(t, trades)

	modified := book.GetOrder(1)
	require.NotNil(t, modified)
	assert.Equal(t, core.Price(104), modified.Price())
	assert.Equal(t, core.Quantity(6), modified.RemainingQuantity())
	assert.Equal(t, core.GoodTillCancel, modified.OrderType())
}
