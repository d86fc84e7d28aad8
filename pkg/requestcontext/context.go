// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; handlers, the MKS transport and the audit
// trail read them without importing net/http. Tests inject values directly:
//
//	ctx = requestcontext.WithRequestID(ctx, "abc")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithMKSIdentity(ctx, "user", "app")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey     struct{}
	correlationIDKey struct{}
	requestTimeKey   struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	mksGebruikerKey  struct{}
	mksApplicatieKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID     = requestIDKey{}
	ContextKeyCorrelationID = correlationIDKey{}
	ContextKeyRequestTime   = requestTimeKey{}
	ContextKeyClientIP      = clientIPKey{}
	ContextKeyUserAgent     = userAgentKey{}
	ContextKeyMKSGebruiker  = mksGebruikerKey{}
	ContextKeyMKSApplicatie = mksApplicatieKey{}
)

// RequestID retrieves the per-request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// CorrelationID retrieves the cross-service correlation ID, which callers
// may supply themselves to tie gateway calls to their own logs.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyCorrelationID).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID injects a correlation ID into the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// MKSGebruiker retrieves the operator name stamped into outgoing MKS
// messages.
func MKSGebruiker(ctx context.Context) string {
	if gebruiker, ok := ctx.Value(ContextKeyMKSGebruiker).(string); ok {
		return gebruiker
	}
	return ""
}

// MKSApplicatie retrieves the sending application (functieprofiel) stamped
// into outgoing MKS messages.
func MKSApplicatie(ctx context.Context) string {
	if applicatie, ok := ctx.Value(ContextKeyMKSApplicatie).(string); ok {
		return applicatie
	}
	return ""
}

// WithMKSIdentity injects the MKS operator identity into the context.
func WithMKSIdentity(ctx context.Context, gebruiker, applicatie string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyMKSGebruiker, gebruiker)
	return context.WithValue(ctx, ContextKeyMKSApplicatie, applicatie)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts like workers and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
