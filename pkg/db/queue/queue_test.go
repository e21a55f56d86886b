package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draakit/limitbook/pkg/messaging"
)

func TestSendExecutionMessage(t *testing.T) {
	producer := &mockProducer{}
	sender := &QueueMessageSender{producer: producer}

	msg := &messaging.ExecutionMessage{
		OrderID:      42,
		Op:           "add",
		Side:         "BUY",
		Price:        100,
		ExecutedQty:  3,
		RemainingQty: 7,
		Stored:       true,
		Trades: []messaging.Trade{
			{BuyOrderID: 42, BuyPrice: 100, SellOrderID: 7, SellPrice: 100, Quantity: 3},
		},
	}

	require.NoError(t, sender.SendExecutionMessage(msg))
	require.Len(t, producer.sentMessages, 1)

	sent := producer.sentMessages[0]
	assert.Equal(t, topic, sent.Topic)

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))

	payload, err := sent.Value.Encode()
	require.NoError(t, err)

	var decoded messaging.ExecutionMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, uint64(42), decoded.OrderID)
	assert.Equal(t, "add", decoded.Op)
	assert.Equal(t, uint64(3), decoded.ExecutedQty)
	require.Len(t, decoded.Trades, 1)
	assert.Equal(t, uint64(3), decoded.Trades[0].Quantity)
}

func TestSetBrokerListAndTopic(t *testing.T) {
	origBrokers, origTopic := brokerList, topic
	defer func() {
		brokerList = origBrokers
		topic = origTopic
	}()

	SetBrokerList("kafka-1:9092,kafka-2:9092")
	SetTopic("executions-test")

	assert.Equal(t, "kafka-1:9092,kafka-2:9092", brokerList)
	assert.Equal(t, "executions-test", topic)

	producer := &mockProducer{}
	sender := &QueueMessageSender{producer: producer}
	require.NoError(t, sender.SendExecutionMessage(&messaging.ExecutionMessage{OrderID: 1, Op: "cancel"}))

	require.Len(t, producer.sentMessages, 1)
	assert.Equal(t, "executions-test", producer.sentMessages[0].Topic)
}
