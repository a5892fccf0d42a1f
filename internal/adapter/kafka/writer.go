package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/config"
	"github.com/couchcryptid/crowdmap-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces crowd snapshots to a Kafka topic.
// It implements pipeline.SnapshotSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one snapshot. Snapshots for the same
// selection share a key so they land on the same partition in order.
func (w *Writer) Publish(ctx context.Context, snap pipeline.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}
	w.logger.Debug("snapshot published", "snapshot_id", snap.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// selectionKey identifies the tracked selection a snapshot belongs to.
func selectionKey(sel pipeline.Selection) string {
	return fmt.Sprintf("%.3f,%.3f:%s", sel.Latitude, sel.Longitude, sel.Filter)
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(snap pipeline.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize crowd snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(selectionKey(snap.Selection)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "snapshot_id", Value: []byte(snap.ID)},
			{Key: "hour", Value: []byte(strconv.Itoa(snap.Hour))},
			{Key: "computed_at", Value: []byte(snap.ComputedAt.Format(time.RFC3339))},
		},
		Time: snap.ComputedAt,
	}, nil
}
