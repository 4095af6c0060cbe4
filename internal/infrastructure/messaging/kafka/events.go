package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

const (
	DefaultSnapshotTopic = "metanetx.snapshots"

	EventSnapshotPublished = "snapshot.published"

	schemaVersion = "v1"
	eventSource   = "metanetx-resolver"
)

// EventEnvelope wraps every event payload.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// SnapshotPublishedPayload announces a newly current snapshot.
type SnapshotPublishedPayload struct {
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	DataKey   string          `json:"data_key"`
	SHA256    string          `json:"sha256"`
	Size      int64           `json:"size"`
	Counts    snapshot.Counts `json:"counts"`
	Conflicts int             `json:"conflicts"`
	Dangling  int             `json:"dangling"`
}

// NewSnapshotPublishedPayload summarizes m.
func NewSnapshotPublishedPayload(m *snapshot.Manifest) SnapshotPublishedPayload {
	p := SnapshotPublishedPayload{
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		DataKey:   m.DataKey,
		SHA256:    m.SHA256,
		Size:      m.Size,
		Counts:    m.Counts,
	}
	if m.Report != nil {
		p.Conflicts = len(m.Report.Conflicts)
		p.Dangling = m.Report.Dangling
	}
	return p
}

func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "empty event payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage encodes the envelope as a message keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (kafka.Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "source_service", Value: []byte(e.Source)},
			{Key: "schema_version", Value: []byte(e.SchemaVersion)},
		},
	}, nil
}

func MessageToEventEnvelope(msg kafka.Message) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

//Personal.AI order the ending
