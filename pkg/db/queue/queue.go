package queue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/IBM/sarama"

	"github.com/draakit/limitbook/pkg/messaging"
)

var (
	brokerList = "localhost:9092"
	topic      = "limitbook-executions"
)

const maxRetry = 5

// SetBrokerList overrides the Kafka broker list (comma separated)
func SetBrokerList(brokers string) {
	brokerList = brokers
}

// SetTopic overrides the Kafka topic for execution reports
func SetTopic(t string) {
	topic = t
}

// QueueMessageSender implements the MessageSender interface for sending
// execution reports to Kafka through a sarama sync producer
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender with its own producer connection
func NewQueueMessageSender() (*QueueMessageSender, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = maxRetry

	producer, err := sarama.NewSyncProducer(strings.Split(brokerList, ","), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// SendExecutionMessage sends the execution report to the Kafka queue
func (q *QueueMessageSender) SendExecutionMessage(msg *messaging.ExecutionMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal execution message: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(msg.OrderID, 10)),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err := q.producer.SendMessage(producerMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close shuts down the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)
