package core

// BookBackend defines the storage interface the matching algorithm runs on.
// It keeps the two ordered sides and the order registry in lockstep: an order
// is registered if and only if it is resting in exactly one side queue, and a
// price level exists only while its queue is non-empty.
type BookBackend interface {
	// Registry operations
	GetOrder(id OrderID) *Order
	StoreOrder(order *Order) error
	DeleteOrder(id OrderID)
	Size() int

	// Side operations. AppendToSide places the order at the tail of its
	// side/price queue; RemoveFromSide must be O(1) from any queue position.
	AppendToSide(side Side, order *Order)
	RemoveFromSide(side Side, order *Order) bool

	// Top-of-book access
	BestPrice(side Side) (Price, bool)
	HeadOrder(side Side) *Order

	// Levels returns the side's per-level aggregation, best price first.
	Levels(side Side) []LevelInfo
}
