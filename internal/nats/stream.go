package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the name of the lead records stream. It stands in for the
	// hosted realtime database's shared records collection.
	StreamName = "LEADS"

	// InsertSubject carries row-insert events published by the external
	// workflow writer.
	InsertSubject = "leads.inserted"
)

// StreamManager handles JetStream stream operations for lead records.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the leads stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	// Create stream. Lead rows are transient demo data, so retention is far
	// shorter than a system of record would use.
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{"leads.>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024, // 1GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Lead record insert events from the workflow writer",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// PublishInsert publishes a lead row insert event. A created_at timestamp is
// stamped when the row does not already carry one, matching the database
// writer's behavior.
func (m *StreamManager) PublishInsert(ctx context.Context, row map[string]any) (uint64, error) {
	if _, ok := row["created_at"]; !ok {
		stamped := make(map[string]any, len(row)+1)
		for k, v := range row {
			stamped[k] = v
		}
		stamped["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
		row = stamped
	}

	data, err := json.Marshal(row)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal lead row: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, InsertSubject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish lead row: %w", err)
	}

	return ack.Sequence, nil
}

// SubscribeInserts opens an ephemeral consumer delivering insert events from
// the given start time onward. The returned stop function releases the
// subscription; callers must invoke it on session replacement and teardown.
func (m *StreamManager) SubscribeInserts(ctx context.Context, start time.Time, handler func(row map[string]any)) (stop func(), err error) {
	js := m.client.JetStream()

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: InsertSubject,
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverByStartTimePolicy,
		OptStartTime:  &start,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var row map[string]any
		if err := json.Unmarshal(msg.Data(), &row); err != nil {
			return // malformed rows are skipped, not fatal
		}
		handler(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume inserts: %w", err)
	}

	return cc.Stop, nil
}
