package audit

import (
	"context"
	"log/slog"
)

// SlogPublisher writes events to the structured log. It is the fallback
// sink when no Kafka brokers are configured, so an audit trail always
// exists.
type SlogPublisher struct {
	logger *slog.Logger
}

func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	return &SlogPublisher{logger: logger}
}

func (p *SlogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"type", string(event.Type),
		"request_id", event.RequestID,
		"correlation_id", event.CorrelationID,
		"source_url", event.SourceURL,
		"client_ip", event.ClientIP,
		"user_agent_family", event.UserAgentFamily,
		"gebruiker", event.Gebruiker,
		"applicatie", event.Applicatie,
		"status", event.Status,
		"duration_ms", event.DurationMS,
	)
	return nil
}

func (p *SlogPublisher) Close() {}
