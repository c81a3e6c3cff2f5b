package storage

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of kafka.Writer the backend needs. Tests
// substitute an in-memory recorder.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBackend publishes one message per item to a Kafka topic. The item
// ID is the message key, so items for the same ID land in the same
// partition.
type KafkaBackend struct {
	writer MessageWriter
}

// NewKafkaBackend creates a backend publishing to topic on the given
// brokers.
func NewKafkaBackend(brokers []string, topic string) *KafkaBackend {
	return &KafkaBackend{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// NewKafkaBackendWithWriter creates a backend over an existing writer.
func NewKafkaBackendWithWriter(writer MessageWriter) *KafkaBackend {
	return &KafkaBackend{writer: writer}
}

// Store publishes the item as a JSON message keyed by item ID.
func (k *KafkaBackend) Store(ctx context.Context, item Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return &Error{Kind: KindSerialization, Backend: "kafka", Err: err}
	}

	msg := kafka.Message{
		Key:   []byte(item.ID),
		Value: payload,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return &Error{Kind: KindConnection, Backend: "kafka", Err: err}
	}
	return nil
}

// Close closes the underlying writer.
func (k *KafkaBackend) Close() error {
	return k.writer.Close()
}
