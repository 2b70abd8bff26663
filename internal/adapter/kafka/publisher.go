// Package kafka publishes persisted weather snapshots to a sink topic.
// Publishing is optional and feature-flagged on KAFKA_BROKERS; the SQLite
// store remains the system of record.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces snapshot messages to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the snapshot topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes one derived snapshot and writes it to the sink topic.
// Messages are keyed by venue so per-venue ordering is preserved.
func (p *Publisher) Publish(ctx context.Context, rec domain.FeatureRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a FeatureRecord into a Kafka message.
func serializeToMessage(rec domain.FeatureRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Venue),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "predicted_going", Value: []byte(rec.PredictedGoing)},
			{Key: "fetched_at", Value: []byte(rec.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
