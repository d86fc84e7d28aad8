package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher delivers events to the audit topic. Production is
// asynchronous; delivery failures are counted and logged, never returned to
// the request path.
type KafkaPublisher struct {
	client  *kgo.Client
	logger  *slog.Logger
	metrics *Metrics
}

// KafkaOption configures the publisher.
type KafkaOption func(*KafkaPublisher)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) { p.logger = logger }
}

func WithKafkaMetrics(m *Metrics) KafkaOption {
	return func(p *KafkaPublisher) { p.metrics = m }
}

// NewKafkaPublisher connects to the brokers (comma separated) and produces
// to the given topic.
func NewKafkaPublisher(brokers, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	p := &KafkaPublisher{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Key:   []byte(event.CorrelationID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.metrics.IncrementPublishFailures("kafka")
			if p.logger != nil {
				p.logger.Error("audit event delivery failed", "error", err)
			}
			return
		}
		p.metrics.IncrementEventsPublished("kafka")
	})
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
