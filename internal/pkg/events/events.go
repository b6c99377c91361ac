// Package events publishes one message per finished purchase saga.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

const DefaultTopic = "purchase-outcomes"

// PurchaseEvent describes how a saga ended.
type PurchaseEvent struct {
	SagaID         string       `json:"saga_id"`
	State          string       `json:"state"`
	UserID         int64        `json:"user_id"`
	OrderID        int64        `json:"order_id,omitempty"`
	TransactionID  int64        `json:"transaction_id,omitempty"`
	Amount         money.Amount `json:"amount"`
	PurchaseStatus string       `json:"purchase_status,omitempty"`
	Reconciled     bool         `json:"reconciled"`
	Error          string       `json:"error,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev PurchaseEvent) error
	Close() error
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, PurchaseEvent) error { return nil }
func (Noop) Close() error                                 { return nil }

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by order id, so every
// event of one order lands on the same partition.
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaPublisher creates a synchronous publisher. brokers is a
// comma-separated list of host:port.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,

		// One event per saga: flush each message instead of waiting for a batch.
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
	}}
}

func newKafkaPublisherWith(w kafkaMessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (k *KafkaPublisher) Publish(ctx context.Context, ev PurchaseEvent) error {
	b, err := json.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	key := ev.SagaID
	if ev.OrderID != 0 {
		key = strconv.FormatInt(ev.OrderID, 10)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("events: publish saga %s: %w", ev.SagaID, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

func splitBrokers(bootstrap string) []string {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		if a = strings.TrimSpace(a); a != "" {
			brokers = append(brokers, a)
		}
	}
	return brokers
}
