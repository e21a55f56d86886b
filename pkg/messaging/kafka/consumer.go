package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/draakit/limitbook/pkg/messaging"
)

// Consumer reads execution reports back off the Kafka topic
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a consumer for the given broker, topic and group
func NewConsumer(brokerAddr, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{brokerAddr},
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Consume reads execution messages until the context is cancelled, invoking
// the handler for each. Malformed payloads are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, logger zerolog.Logger, handler func(*messaging.ExecutionMessage) error) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var msg messaging.ExecutionMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			logger.Warn().Err(err).Str("key", string(m.Key)).Msg("Skipping malformed execution message")
			continue
		}

		if err := handler(&msg); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
