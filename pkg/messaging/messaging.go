package messaging

// MessageSender defines an interface for publishing execution reports.
// It decouples the core package from specific transports like Kafka.
type MessageSender interface {
	SendExecutionMessage(msg *ExecutionMessage) error
}

// ExecutionMessage is the report emitted after one add, cancel or modify
// operation: what happened to the submitted order and which fills it caused.
type ExecutionMessage struct {
	OrderID      uint64   `json:"orderID"`
	Op           string   `json:"op"`
	Side         string   `json:"side"`
	Price        int64    `json:"price"`
	ExecutedQty  uint64   `json:"executedQty"`
	RemainingQty uint64   `json:"remainingQty"`
	Stored       bool     `json:"stored"`
	Trades       []Trade  `json:"trades,omitempty"`
	Canceled     []uint64 `json:"canceled,omitempty"`
}

// Trade represents a single fill between two resting/incoming orders.
// Both limit prices are carried; the quantity is the same on both sides.
type Trade struct {
	BuyOrderID  uint64 `json:"buyOrderID"`
	BuyPrice    int64  `json:"buyPrice"`
	SellOrderID uint64 `json:"sellOrderID"`
	SellPrice   int64  `json:"sellPrice"`
	Quantity    uint64 `json:"quantity"`
}
