package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Worker consumes the audit topic and appends each event to the store. It
// runs as a separate process from the gateway, so a slow store never backs
// up the request path.
type Worker struct {
	client  *kgo.Client
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

func NewWorker(brokers, topic, group string, store Store, logger *slog.Logger, metrics *Metrics) (*Worker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
	)
	if err != nil {
		return nil, err
	}
	return &Worker{client: client, store: store, logger: logger, metrics: metrics}, nil
}

// Run polls until the context is cancelled. A record that cannot be decoded
// is dropped with a log line; a store failure is retried on the next poll by
// not committing past it.
func (w *Worker) Run(ctx context.Context) error {
	defer w.client.Close()
	for {
		fetches := w.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			w.logger.Error("audit fetch failed", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			var event Event
			if err := json.Unmarshal(record.Value, &event); err != nil {
				w.logger.Error("audit event undecodable", "error", err)
				return
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("audit event store failed", "error", err)
				w.metrics.IncrementPublishFailures("postgres")
				return
			}
			w.metrics.IncrementEventsPublished("postgres")
		})
	}
}
