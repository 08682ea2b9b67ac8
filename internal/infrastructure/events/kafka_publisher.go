package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
)

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits ArticleIngested events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

var _ ports.ArticlePublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher writes synchronously and waits for the leader ack. A short
// batch timeout flushes partial batches right away and retries are few, so a
// write never holds a sync request for long.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
	}
	logger = logging.Resolve(logger)
	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// PublishArticlesIngested sends all events in a single write. Messages are keyed
// by article URL so re-deliveries of the same article land on one partition.
func (p *KafkaPublisher) PublishArticlesIngested(ctx context.Context, events []ports.ArticleIngested) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encodeEvent(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages to kafka: %w", err)
	}
	p.logger.Debug("article events published", "topic", p.topic, "count", len(msgs))
	return nil
}

// Close flushes and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event ports.ArticleIngested) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal article event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.URL),
		Value: value,
		Time:  event.IngestedAt,
	}, nil
}
