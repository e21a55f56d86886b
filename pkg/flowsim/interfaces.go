package flowsim

import (
	"context"

	"github.com/draakit/limitbook/pkg/core"
)

// OrderSubmitter is the slice of the order book surface the simulator drives.
type OrderSubmitter interface {
	AddOrder(ctx context.Context, order *core.Order) (core.Trades, error)
	CancelOrder(ctx context.Context, id core.OrderID) *core.Order
	ModifyOrder(ctx context.Context, mod core.OrderModify) (core.Trades, error)
	Size() int
}

// Strategy produces the stream of order actions fed into the book.
type Strategy interface {
	// Next returns the next action to submit.
	Next() Action
}

// ActionKind discriminates the Action union
type ActionKind int

// Action kinds
const (
	ActionAdd ActionKind = iota
	ActionCancel
	ActionModify
)

// Action is one submission against the book
type Action struct {
	Kind     ActionKind
	Order    *core.Order      // ActionAdd
	CancelID core.OrderID     // ActionCancel
	Modify   core.OrderModify // ActionModify
}
