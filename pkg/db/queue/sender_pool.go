package queue

import (
	"fmt"
	"sync"

	"github.com/draakit/limitbook/pkg/messaging"
)

var (
	senderPool   chan messaging.MessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.MessageSender, maxPoolSize)
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender()
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			senderPool <- sender
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.MessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		// Pool already full, drop the sender.
	}
}

// PooledSender is a MessageSender that borrows a pooled producer per send,
// so a single shared instance can be handed to the order book.
type PooledSender struct{}

// SendExecutionMessage sends the report through a pooled producer
func (PooledSender) SendExecutionMessage(msg *messaging.ExecutionMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("sender pool exhausted")
	}
	defer ReturnSender(sender)

	return sender.SendExecutionMessage(msg)
}

// Ensure PooledSender implements MessageSender
var _ messaging.MessageSender = PooledSender{}
