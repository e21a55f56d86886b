package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/draakit/limitbook/pkg/messaging"
	"github.com/draakit/limitbook/pkg/otel"
)

// OrderBook implements price-time priority matching for a single instrument
// on top of a BookBackend. All public mutating operations run to completion
// synchronously; callers must serialize access (one instrument, one writer).
type OrderBook struct {
	backend BookBackend
	sender  messaging.MessageSender
}

// NewOrderBook creates an OrderBook object with a backend
func NewOrderBook(backend BookBackend) *OrderBook {
	return &OrderBook{
		backend: backend,
	}
}

// SetMessageSender attaches an execution-report sender. A nil sender (the
// default) disables reporting entirely.
func (ob *OrderBook) SetMessageSender(sender messaging.MessageSender) {
	ob.sender = sender
}

// GetOrder returns the resting Order with the given id, or nil
func (ob *OrderBook) GetOrder(id OrderID) *Order {
	return ob.backend.GetOrder(id)
}

// Size returns the number of currently resting orders
func (ob *OrderBook) Size() int {
	return ob.backend.Size()
}

// GetLevels returns the aggregated per-level snapshot of both sides,
// bids and asks each ordered best-first. Computed on every call.
func (ob *OrderBook) GetLevels() OrderBookLevels {
	return OrderBookLevels{
		Bids: ob.backend.Levels(Buy),
		Asks: ob.backend.Levels(Sell),
	}
}

// AddOrder submits an order and returns the trades it produced, possibly
// none. Duplicate ids and unmatchable Fill-And-Kill orders are benign no-ops
// yielding an empty trade sequence. The only error ever returned is the
// internal-consistency failure wrapping ErrFillExceedsRemaining, which the
// caller should treat as unrecoverable.
func (ob *OrderBook) AddOrder(ctx context.Context, order *Order) (Trades, error) {
	otel.RecordOrderProcessed(ctx, "add")
	return ob.add(ctx, order, "add")
}

// add runs the submission path shared by AddOrder and the modify re-add.
// op labels the originating operation in execution reports.
func (ob *OrderBook) add(ctx context.Context, order *Order, op string) (Trades, error) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanAddOrder,
		attribute.Int64(otel.AttributeOrderID, int64(order.ID())),
		attribute.String(otel.AttributeOrderSide, order.Side().String()),
		attribute.String(otel.AttributeOrderType, string(order.OrderType())),
		attribute.Int64(otel.AttributeOrderPrice, order.Price()),
		attribute.Int64(otel.AttributeOrderQuantity, int64(order.RemainingQuantity())),
	)
	defer span.End()

	if ob.backend.GetOrder(order.ID()) != nil {
		// Duplicate submission is tolerated, not failed.
		span.SetStatus(codes.Ok, "duplicate order id ignored")
		return Trades{}, nil
	}

	if order.OrderType() == FillAndKill && !ob.canMatch(order.Side(), order.Price()) {
		// No crossing possible right now: the order never enters the book.
		span.SetStatus(codes.Ok, "fill-and-kill order discarded")
		ob.publish(ctx, ob.newExecutionMessage(op, order, nil, []*Order{order}))
		return Trades{}, nil
	}

	if err := ob.backend.StoreOrder(order); err != nil {
		span.SetStatus(codes.Error, "failed to store order")
		return nil, fmt.Errorf("error storing order %d: %w", order.ID(), err)
	}
	ob.backend.AppendToSide(order.Side(), order)

	trades, canceled, err := ob.matchOrders(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "matching failed")
		return trades, err
	}

	otel.AddAttributes(span,
		attribute.Int64(otel.AttributeExecutedQuantity, int64(order.FilledQuantity())),
		attribute.Int64(otel.AttributeRemainingQuantity, int64(order.RemainingQuantity())),
		attribute.Int(otel.AttributeTradeCount, len(trades)),
	)
	span.SetStatus(codes.Ok, "order processed")

	otel.UpdateRestingOrders(int64(ob.backend.Size()))
	ob.publish(ctx, ob.newExecutionMessage(op, order, trades, canceled))

	return trades, nil
}

// CancelOrder removes the resting order with the given id. It always
// succeeds: cancelling an unknown id is a no-op returning nil, tolerating
// races where the order was already filled or cancelled.
func (ob *OrderBook) CancelOrder(ctx context.Context, id OrderID) *Order {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanCancelOrder,
		attribute.Int64(otel.AttributeOrderID, int64(id)),
	)
	defer span.End()

	otel.RecordOrderProcessed(ctx, "cancel")

	order := ob.cancel(id)
	if order == nil {
		span.SetStatus(codes.Ok, "unknown order id ignored")
		return nil
	}

	span.SetStatus(codes.Ok, "order canceled")
	otel.UpdateRestingOrders(int64(ob.backend.Size()))
	ob.publish(ctx, ob.newExecutionMessage("cancel", order, nil, []*Order{order}))

	return order
}

// ModifyOrder replaces a resting order with a new side/price/quantity under
// the same id and order type. The replacement joins the tail of its price
// level: modification deliberately resets time priority. Unknown ids are a
// no-op with an empty trade sequence.
func (ob *OrderBook) ModifyOrder(ctx context.Context, mod OrderModify) (Trades, error) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanModifyOrder,
		attribute.Int64(otel.AttributeOrderID, int64(mod.ID())),
		attribute.String(otel.AttributeOrderSide, mod.Side().String()),
		attribute.Int64(otel.AttributeOrderPrice, mod.Price()),
		attribute.Int64(otel.AttributeOrderQuantity, int64(mod.Quantity())),
	)
	defer span.End()

	otel.RecordOrderProcessed(ctx, "modify")

	existing := ob.backend.GetOrder(mod.ID())
	if existing == nil {
		span.SetStatus(codes.Ok, "unknown order id ignored")
		return Trades{}, nil
	}

	replacement, err := mod.ToOrder(existing.OrderType())
	if err != nil {
		// A zero-quantity modification degrades to a plain cancel.
		ob.CancelOrder(ctx, mod.ID())
		span.SetStatus(codes.Ok, "modification with empty quantity treated as cancel")
		return Trades{}, nil
	}

	ob.cancel(mod.ID())
	return ob.add(ctx, replacement, "modify")
}

// private methods

// canMatch reports whether an order at the given side and price could trade
// against the current opposite top of book.
func (ob *OrderBook) canMatch(side Side, price Price) bool {
	best, ok := ob.backend.BestPrice(side.Opposite())
	if !ok {
		return false
	}

	if side == Buy {
		return price >= best
	}
	return price <= best
}

// cancel removes an order from its queue and the registry, dropping the
// price level if it empties. Returns nil for unknown ids.
func (ob *OrderBook) cancel(id OrderID) *Order {
	order := ob.backend.GetOrder(id)
	if order == nil {
		return nil
	}

	ob.backend.RemoveFromSide(order.Side(), order)
	ob.backend.DeleteOrder(id)
	return order
}

// matchOrders runs the crossing loop to exhaustion: while the best bid price
// is at or above the best ask price, the head orders of the two best levels
// trade the minimum of their remaining quantities. After the loop, only the
// new head order on each side is checked for leftover Fill-And-Kill state;
// a Fill-And-Kill order resting deeper in the book is intentionally left
// alone.
func (ob *OrderBook) matchOrders(ctx context.Context) (Trades, []*Order, error) {
	start := time.Now()
	trades := make(Trades, 0)

	for {
		bidPrice, haveBids := ob.backend.BestPrice(Buy)
		if !haveBids {
			break
		}
		askPrice, haveAsks := ob.backend.BestPrice(Sell)
		if !haveAsks {
			break
		}
		if bidPrice < askPrice {
			break
		}

		buyer := ob.backend.HeadOrder(Buy)
		seller := ob.backend.HeadOrder(Sell)

		quantity := min(buyer.RemainingQuantity(), seller.RemainingQuantity())

		if err := buyer.Fill(quantity); err != nil {
			return trades, nil, err
		}
		if err := seller.Fill(quantity); err != nil {
			return trades, nil, err
		}

		trades = append(trades, Trade{
			Bid: TradeInfo{OrderID: buyer.ID(), Price: buyer.Price(), Quantity: quantity},
			Ask: TradeInfo{OrderID: seller.ID(), Price: seller.Price(), Quantity: quantity},
		})

		if buyer.IsFilled() {
			ob.backend.RemoveFromSide(Buy, buyer)
			ob.backend.DeleteOrder(buyer.ID())
		}
		if seller.IsFilled() {
			ob.backend.RemoveFromSide(Sell, seller)
			ob.backend.DeleteOrder(seller.ID())
		}
	}

	// Leftover Fill-And-Kill cleanup, top of book only.
	var canceled []*Order
	if head := ob.backend.HeadOrder(Buy); head != nil && head.OrderType() == FillAndKill {
		canceled = append(canceled, ob.cancel(head.ID()))
	}
	if head := ob.backend.HeadOrder(Sell); head != nil && head.OrderType() == FillAndKill {
		canceled = append(canceled, ob.cancel(head.ID()))
	}

	otel.RecordMatch(ctx, time.Since(start), len(trades))

	return trades, canceled, nil
}

// newExecutionMessage converts one operation's outcome to the messaging format
func (ob *OrderBook) newExecutionMessage(op string, order *Order, trades Trades, canceled []*Order) *messaging.ExecutionMessage {
	msg := &messaging.ExecutionMessage{
		OrderID:      order.ID(),
		Op:           op,
		Side:         order.Side().String(),
		Price:        order.Price(),
		ExecutedQty:  order.FilledQuantity(),
		RemainingQty: order.RemainingQuantity(),
		Stored:       ob.backend.GetOrder(order.ID()) != nil,
	}

	for _, t := range trades {
		msg.Trades = append(msg.Trades, messaging.Trade{
			BuyOrderID:  t.Bid.OrderID,
			BuyPrice:    t.Bid.Price,
			SellOrderID: t.Ask.OrderID,
			SellPrice:   t.Ask.Price,
			Quantity:    t.Quantity(),
		})
	}

	for _, c := range canceled {
		if c != nil {
			msg.Canceled = append(msg.Canceled, c.ID())
		}
	}

	return msg
}

// publish sends the execution report, if a sender is configured. Reporting
// failures are logged and swallowed: the book mutation already happened and
// the trades belong to the caller either way.
func (ob *OrderBook) publish(ctx context.Context, msg *messaging.ExecutionMessage) {
	if ob.sender == nil || msg == nil {
		return
	}

	_, span := otel.StartOrderSpan(ctx, otel.SpanPublishExecution,
		attribute.Int64(otel.AttributeOrderID, int64(msg.OrderID)),
		attribute.Int(otel.AttributeTradeCount, len(msg.Trades)),
	)
	defer span.End()

	if err := ob.sender.SendExecutionMessage(msg); err != nil {
		log.Warn().Err(err).Uint64("order_id", msg.OrderID).Msg("Failed to publish execution report")
		span.SetStatus(codes.Error, "failed to publish execution report")
		return
	}

	span.SetStatus(codes.Ok, "execution report published")
}
