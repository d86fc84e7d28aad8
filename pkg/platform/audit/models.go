// Package audit captures who requested which person data, when, and with
// what outcome. Events are transport-agnostic so sinks can fan out: Kafka
// for the central trail, Postgres for local retention, the structured log
// as fallback.
package audit

import (
	"context"
	"time"
)

// EventType distinguishes the two events emitted per API call.
type EventType string

const (
	TypeRequest  EventType = "request"
	TypeResponse EventType = "response"
)

// Event is one audit record. Person data never enters the event; only the
// request metadata and the outcome are recorded.
type Event struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	CorrelationID string    `json:"correlation_id"`

	// SourceURL is the requested resource, including query parameters.
	SourceURL string `json:"source_url"`
	ClientIP  string `json:"client_ip"`

	// UserAgentFamily is the browser or client family, not the raw header.
	UserAgentFamily string `json:"user_agent_family"`

	// Gebruiker and Applicatie identify the MKS operator on whose behalf
	// the gateway queried the registry.
	Gebruiker  string `json:"gebruiker"`
	Applicatie string `json:"applicatie"`

	// Status is the response status, zero for request events.
	Status int `json:"status,omitempty"`

	DurationMS int64 `json:"duration_ms,omitempty"`
}

// Publisher delivers events to a sink. Publish failures must never fail the
// API call that produced the event; callers log and continue.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Store persists events for local retention and lookup by correlation id.
type Store interface {
	Append(ctx context.Context, event Event) error
}
