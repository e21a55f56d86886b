package core

import "encoding/json"

// TradeInfo records one side of a single fill event
type TradeInfo struct {
	OrderID  OrderID  `json:"orderID"`
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// Trade holds matched trade information from both buyer and seller. Trades
// are value records: the engine hands them to the caller and keeps nothing.
type Trade struct {
	Bid TradeInfo `json:"bid"`
	Ask TradeInfo `json:"ask"`
}

// Quantity returns the traded quantity. Both sides always carry the same
// quantity; this is just the canonical accessor.
func (t Trade) Quantity() Quantity {
	return t.Bid.Quantity
}

// Trades is a sequence of fills produced by one add or modify request,
// in the order the crossings were resolved.
type Trades []Trade

// TotalQuantity sums the traded quantity over all fills
func (ts Trades) TotalQuantity() Quantity {
	var total Quantity
	for _, t := range ts {
		total += t.Quantity()
	}
	return total
}

// LevelInfo is the aggregated view of one price level: the price and the sum
// of remaining quantities of all orders resting there.
type LevelInfo struct {
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// OrderBookLevels is a read-only snapshot of the book, bids and asks each
// ordered best-first. It is computed on demand and never cached.
type OrderBookLevels struct {
	Bids []LevelInfo `json:"bids"`
	Asks []LevelInfo `json:"asks"`
}

// String implements Stringer interface
func (l OrderBookLevels) String() string {
	j, _ := json.Marshal(l)
	return string(j)
}
