package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore appends events to the audit_events table. It backs the
// consuming worker, not the request path.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

const insertEvent = `
INSERT INTO audit_events (
	event_type, event_time, request_id, correlation_id,
	source_url, client_ip, user_agent_family,
	gebruiker, applicatie, status, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, insertEvent,
		string(event.Type), event.Timestamp, event.RequestID, event.CorrelationID,
		event.SourceURL, event.ClientIP, event.UserAgentFamily,
		event.Gebruiker, event.Applicatie, event.Status, event.DurationMS,
	)
	return err
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
