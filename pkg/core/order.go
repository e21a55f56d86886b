package core

import (
	"encoding/json"
	"fmt"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents type of the order
type OrderType string

// Order types
const (
	GoodTillCancel OrderType = "GTC" // rests until filled or cancelled
	FillAndKill    OrderType = "FAK" // matches immediately, remainder is discarded
)

// Price is a limit price expressed in whole ticks.
type Price = int64

// Quantity is an order or trade size.
type Quantity = uint64

// OrderID identifies an order. IDs are assigned by the caller, not the engine.
type OrderID = uint64

// Order stores information about a single order. Identity, side, price and
// type are fixed at construction; only the remaining quantity changes, and it
// only ever decreases through fills.
type Order struct {
	id           OrderID
	orderType    OrderType
	side         Side
	price        Price
	initialQty   Quantity
	remainingQty Quantity
}

// NewOrder creates a new Order
func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) (*Order, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}

	if orderType != GoodTillCancel && orderType != FillAndKill {
		return nil, ErrInvalidOrderType
	}

	return &Order{
		id:           id,
		orderType:    orderType,
		side:         side,
		price:        price,
		initialQty:   quantity,
		remainingQty: quantity,
	}, nil
}

// ID returns the order id
func (o *Order) ID() OrderID {
	return o.id
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Price returns the limit price in ticks
func (o *Order) Price() Price {
	return o.price
}

// OrderType returns the order type
func (o *Order) OrderType() OrderType {
	return o.orderType
}

// InitialQuantity returns the quantity the order was submitted with
func (o *Order) InitialQuantity() Quantity {
	return o.initialQty
}

// RemainingQuantity returns the quantity still unfilled
func (o *Order) RemainingQuantity() Quantity {
	return o.remainingQty
}

// FilledQuantity returns the quantity executed so far
func (o *Order) FilledQuantity() Quantity {
	return o.initialQty - o.remainingQty
}

// IsFilled reports whether the order has no remaining quantity
func (o *Order) IsFilled() bool {
	return o.remainingQty == 0
}

// Fill decrements the remaining quantity. A fill larger than the remaining
// quantity is an internal consistency failure: matching always computes the
// fill as a minimum, so this error signals a defect, not a business outcome.
func (o *Order) Fill(quantity Quantity) error {
	if quantity > o.remainingQty {
		return fmt.Errorf("order %d: fill %d exceeds remaining %d: %w",
			o.id, quantity, o.remainingQty, ErrFillExceedsRemaining)
	}
	o.remainingQty -= quantity
	return nil
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	type OrderJSON struct {
		ID           OrderID   `json:"id"`
		OrderType    OrderType `json:"orderType"`
		Side         string    `json:"side"`
		Price        Price     `json:"price"`
		InitialQty   Quantity  `json:"initialQty"`
		RemainingQty Quantity  `json:"remainingQty"`
	}

	return json.Marshal(OrderJSON{
		ID:           o.id,
		OrderType:    o.orderType,
		Side:         o.side.String(),
		Price:        o.price,
		InitialQty:   o.initialQty,
		RemainingQty: o.remainingQty,
	})
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}

// OrderModify describes a replacement for a resting order: same id, new
// side/price/quantity. Applying it re-enters the order at the tail of its
// price level, so the order gives up its prior time priority.
type OrderModify struct {
	id       OrderID
	side     Side
	price    Price
	quantity Quantity
}

// NewOrderModify creates a modification instruction for an order
func NewOrderModify(id OrderID, side Side, price Price, quantity Quantity) OrderModify {
	return OrderModify{
		id:       id,
		side:     side,
		price:    price,
		quantity: quantity,
	}
}

// ID returns the id of the order to replace
func (m OrderModify) ID() OrderID {
	return m.id
}

// Side returns the new side
func (m OrderModify) Side() Side {
	return m.side
}

// Price returns the new limit price in ticks
func (m OrderModify) Price() Price {
	return m.price
}

// Quantity returns the new quantity
func (m OrderModify) Quantity() Quantity {
	return m.quantity
}

// ToOrder builds the replacement order, keeping the original order type
func (m OrderModify) ToOrder(orderType OrderType) (*Order, error) {
	return NewOrder(orderType, m.id, m.side, m.price, m.quantity)
}
