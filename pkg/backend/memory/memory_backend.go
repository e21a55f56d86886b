package memory

import (
	"container/list"
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"

	"github.com/draakit/limitbook/pkg/core"
)

// priceLevel is one side/price FIFO queue of resting orders. The queue is a
// linked list so interior elements can be unlinked in O(1) on cancellation.
type priceLevel struct {
	price core.Price
	queue *list.List // of *core.Order, front is oldest
}

func newPriceLevel(price core.Price) *priceLevel {
	return &priceLevel{
		price: price,
		queue: list.New(),
	}
}

// orderHandle pins a registered order to its queue slot. The handle is the
// single authoritative alias: the side queue and the registry both reach the
// order through it, so fills are visible everywhere at once.
type orderHandle struct {
	order *core.Order
	level *priceLevel
	elem  *list.Element
}

// bookSide keeps one side's price levels ordered best-first: descending
// prices for bids, ascending for asks. The btree gives O(log levels)
// insertion and removal with the best level at Min.
type bookSide struct {
	tree   *btree.BTreeG[*priceLevel]
	levels map[core.Price]*priceLevel
}

func newBookSide(side core.Side) *bookSide {
	less := func(a, b *priceLevel) bool { return a.price < b.price }
	if side == core.Buy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	}

	return &bookSide{
		tree:   btree.NewG(8, less),
		levels: make(map[core.Price]*priceLevel),
	}
}

func (s *bookSide) best() *priceLevel {
	lvl, ok := s.tree.Min()
	if !ok {
		return nil
	}
	return lvl
}

// String implements fmt.Stringer interface
func (s *bookSide) String() string {
	sb := strings.Builder{}
	s.tree.Ascend(func(lvl *priceLevel) bool {
		sb.WriteString(fmt.Sprintf("\n%d -> orders: %d", lvl.price, lvl.queue.Len()))
		return true
	})
	return sb.String()
}

// MemoryBackend implements core.BookBackend with in-memory storage. The
// embedded mutex is hygiene for incidental concurrent readers; the engine
// itself requires externally serialized writers.
type MemoryBackend struct {
	sync.RWMutex
	orders map[core.OrderID]*orderHandle
	bids   *bookSide
	asks   *bookSide
}

// NewMemoryBackend creates new instance of MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		orders: make(map[core.OrderID]*orderHandle),
		bids:   newBookSide(core.Buy),
		asks:   newBookSide(core.Sell),
	}
}

func (b *MemoryBackend) sideBook(side core.Side) *bookSide {
	if side == core.Buy {
		return b.bids
	}
	return b.asks
}

// GetOrder retrieves a registered order by id
func (b *MemoryBackend) GetOrder(id core.OrderID) *core.Order {
	b.RLock()
	defer b.RUnlock()

	handle, ok := b.orders[id]
	if !ok {
		return nil
	}
	return handle.order
}

// StoreOrder registers an order
func (b *MemoryBackend) StoreOrder(order *core.Order) error {
	b.Lock()
	defer b.Unlock()

	if _, exists := b.orders[order.ID()]; exists {
		return core.ErrOrderExists
	}

	b.orders[order.ID()] = &orderHandle{order: order}
	return nil
}

// DeleteOrder unregisters an order
func (b *MemoryBackend) DeleteOrder(id core.OrderID) {
	b.Lock()
	defer b.Unlock()

	delete(b.orders, id)
}

// Size returns the number of registered orders
func (b *MemoryBackend) Size() int {
	b.RLock()
	defer b.RUnlock()

	return len(b.orders)
}

// AppendToSide adds an order to the tail of its side/price queue, creating
// the price level if it does not exist yet
func (b *MemoryBackend) AppendToSide(side core.Side, order *core.Order) {
	b.Lock()
	defer b.Unlock()

	bookSide := b.sideBook(side)

	lvl, ok := bookSide.levels[order.Price()]
	if !ok {
		lvl = newPriceLevel(order.Price())
		bookSide.levels[order.Price()] = lvl
		bookSide.tree.ReplaceOrInsert(lvl)
	}

	elem := lvl.queue.PushBack(order)

	handle, ok := b.orders[order.ID()]
	if !ok {
		handle = &orderHandle{order: order}
		b.orders[order.ID()] = handle
	}
	handle.level = lvl
	handle.elem = elem
}

// RemoveFromSide unlinks an order from its queue position and drops the
// price level if the queue empties. O(1) apart from the level removal.
func (b *MemoryBackend) RemoveFromSide(side core.Side, order *core.Order) bool {
	b.Lock()
	defer b.Unlock()

	handle, ok := b.orders[order.ID()]
	if !ok || handle.level == nil {
		return false
	}

	lvl := handle.level
	lvl.queue.Remove(handle.elem)
	handle.level = nil
	handle.elem = nil

	if lvl.queue.Len() == 0 {
		bookSide := b.sideBook(side)
		delete(bookSide.levels, lvl.price)
		bookSide.tree.Delete(lvl)
	}

	return true
}

// BestPrice returns the best price on the given side, if any
func (b *MemoryBackend) BestPrice(side core.Side) (core.Price, bool) {
	b.RLock()
	defer b.RUnlock()

	lvl := b.sideBook(side).best()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// HeadOrder returns the oldest order at the best price level, or nil
func (b *MemoryBackend) HeadOrder(side core.Side) *core.Order {
	b.RLock()
	defer b.RUnlock()

	lvl := b.sideBook(side).best()
	if lvl == nil {
		return nil
	}

	front := lvl.queue.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*core.Order)
}

// Levels aggregates the side's queues into per-level remaining quantities,
// best price first. The aggregation is recomputed on every call.
func (b *MemoryBackend) Levels(side core.Side) []core.LevelInfo {
	b.RLock()
	defer b.RUnlock()

	bookSide := b.sideBook(side)
	infos := make([]core.LevelInfo, 0, len(bookSide.levels))

	bookSide.tree.Ascend(func(lvl *priceLevel) bool {
		var total core.Quantity
		for e := lvl.queue.Front(); e != nil; e = e.Next() {
			total += e.Value.(*core.Order).RemainingQuantity()
		}
		infos = append(infos, core.LevelInfo{Price: lvl.price, Quantity: total})
		return true
	})

	return infos
}

// String implements fmt.Stringer interface
func (b *MemoryBackend) String() string {
	b.RLock()
	defer b.RUnlock()

	builder := strings.Builder{}
	builder.WriteString("Ask:")
	builder.WriteString(b.asks.String())
	builder.WriteString("\nBid:")
	builder.WriteString(b.bids.String())
	builder.WriteString("\n")
	return builder.String()
}

// Ensure MemoryBackend implements BookBackend
var _ core.BookBackend = (*MemoryBackend)(nil)
