//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/adapter/kafka"
	"github.com/couchcryptid/crowdmap-service/internal/config"
	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
	"github.com/couchcryptid/crowdmap-service/internal/pipeline"
	"github.com/couchcryptid/crowdmap-service/internal/places"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSnapshotTopic = "test-crowd-snapshots"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("crowdmap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func loadCatalog(t *testing.T) []domain.Place {
	t.Helper()
	f, err := os.Open("../pipeline/testdata/places.json")
	require.NoError(t, err)
	defer f.Close()

	catalog, err := places.ReadCatalog(f)
	require.NoError(t, err)
	return catalog
}

type publishedSnapshot struct {
	Snapshot pipeline.Snapshot
	Key      string
	Headers  map[string]string
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedSnapshot {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from snapshot topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var snap pipeline.Snapshot
	require.NoError(t, json.Unmarshal(msg.Value, &snap), "unmarshal snapshot")

	return publishedSnapshot{Snapshot: snap, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSnapshotTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

type catalogFetcher struct {
	places []domain.Place
}

func (c catalogFetcher) Fetch(context.Context, float64, float64, string) ([]domain.Place, error) {
	return c.places, nil
}

// TestWriterPublish verifies a snapshot round-trips through Kafka with its
// key and headers.
func TestWriterPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSnapshotTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSnapshotTopic: testSnapshotTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	computedAt := time.Date(2026, time.October, 24, 23, 0, 0, 0, time.UTC)
	est := domain.NewEstimator(nil, nil, time.UTC)
	crowd, err := est.Snapshot(loadCatalog(t), 23)
	require.NoError(t, err)
	crowd.ComputedAt = computedAt

	snap := pipeline.Snapshot{
		ID:            "snap-1",
		Selection:     pipeline.Selection{Latitude: 40.7282, Longitude: -73.9942, Filter: "all"},
		CrowdSnapshot: crowd,
	}
	require.NoError(t, writer.Publish(ctx, snap))

	got := readSnapshot(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "40.728,-73.994:all", got.Key)
	assert.Equal(t, "snap-1", got.Headers["snapshot_id"])
	assert.Equal(t, "23", got.Headers["hour"])
	assert.Equal(t, computedAt.Format(time.RFC3339), got.Headers["computed_at"])

	assert.Equal(t, snap.ID, got.Snapshot.ID)
	assert.Equal(t, snap.Selection, got.Snapshot.Selection)
	assert.Len(t, got.Snapshot.Places, 4)
	assert.Len(t, got.Snapshot.Points, len(crowd.Points))
}

// TestPipelinePublishesSnapshots wires the pipeline to the Kafka writer and
// checks that the first computed snapshot reaches the topic.
func TestPipelinePublishesSnapshots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSnapshotTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSnapshotTopic: testSnapshotTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	initial := pipeline.Selection{Latitude: 40.7282, Longitude: -73.9942, Filter: "all", Query: "new york"}
	p := pipeline.New(
		catalogFetcher{places: loadCatalog(t)},
		domain.NewEstimator(nil, nil, time.UTC),
		writer,
		nil,
		time.Hour,
		initial,
		discardLogger(),
		metrics,
	)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	got := readSnapshot(ctx, t, newConsumer(t, broker))

	pipelineCancel()
	require.NoError(t, <-errCh)

	latest, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, latest.ID, got.Snapshot.ID)
	assert.Equal(t, initial, got.Snapshot.Selection)
	assert.Len(t, got.Snapshot.Places, 4)
	for _, pc := range got.Snapshot.Places {
		assert.Equal(t, domain.Describe(pc.Score), pc.Tier)
	}
	assert.NotEmpty(t, got.Headers["snapshot_id"])
}
