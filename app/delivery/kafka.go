package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of kafka.Writer used by KafkaDestination.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a synchronous writer shared by all kafka destinations.
// The topic is set per message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// kafkaPayload carries the queued message ID so consumers can correlate it with relay logs.
type kafkaPayload struct {
	ID            string    `json:"id"`
	DestinationID string    `json:"destination_id"`
	Text          string    `json:"text"`
	SentAt        time.Time `json:"sent_at"`
}

// KafkaDestination publishes messages to a topic keyed by the destination ID.
type KafkaDestination struct {
	id     string
	topic  string
	writer MessageWriter
}

func NewKafkaDestination(id, topic string, writer MessageWriter) *KafkaDestination {
	return &KafkaDestination{id: id, topic: topic, writer: writer}
}

func (d *KafkaDestination) ID() string        { return d.id }
func (d *KafkaDestination) Transport() string { return TransportKafka }

func (d *KafkaDestination) Send(ctx context.Context, msg Message) error {
	now := time.Now().UTC()
	value, err := json.Marshal(kafkaPayload{
		ID:            msg.ID,
		DestinationID: d.id,
		Text:          msg.Text,
		SentAt:        now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Topic: d.topic,
		Key:   []byte(d.id),
		Value: value,
		Time:  now,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}
