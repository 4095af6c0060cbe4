package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")

const defaultMaxMessageBytes = 1 << 20

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes snapshot events to one topic.
type Producer struct {
	writer          WriterInterface
	topic           string
	maxMessageBytes int
	logger          logging.Logger
	closed          atomic.Bool
	metrics         ProducerMetrics
}

// NewProducer builds a synchronous writer for cfg.Topic.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultSnapshotTopic
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            4,
		BatchSize:              1,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return NewProducerWithWriter(writer, topic, logger), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, topic string, logger logging.Logger) *Producer {
	return &Producer{
		writer:          w,
		topic:           topic,
		maxMessageBytes: defaultMaxMessageBytes,
		logger:          logging.OrDefault(logger).Named("kafka"),
	}
}

// Publish writes one envelope keyed by key.
func (p *Producer) Publish(ctx context.Context, key string, env *EventEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	msg, err := env.ToMessage(p.topic, key)
	if err != nil {
		return err
	}
	if len(msg.Value) > p.maxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish failed")
	}
	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))

	p.logger.Debug("Message published",
		logging.String("topic", p.topic),
		logging.String("event_type", env.EventType),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// PublishSnapshot announces m on the configured topic.  The version is the
// message key so all events for a version land on one partition.
func (p *Producer) PublishSnapshot(ctx context.Context, m *snapshot.Manifest) error {
	env, err := NewEventEnvelope(EventSnapshotPublished, NewSnapshotPublishedPayload(m))
	if err != nil {
		return err
	}
	return p.Publish(ctx, m.Version, env)
}

// Sent returns the number of successfully written messages.
func (p *Producer) Sent() int64 { return p.metrics.MessagesSent.Load() }

// Failed returns the number of failed writes.
func (p *Producer) Failed() int64 { return p.metrics.MessagesFailed.Load() }

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

//Personal.AI order the ending
