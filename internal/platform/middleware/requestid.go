package middleware

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	"brpgateway/pkg/requestcontext"
)

// CorrelationHeader lets callers tie gateway requests to their own logs.
// Absent, the request ID doubles as correlation ID.
const CorrelationHeader = "X-Correlation-ID"

// RequestID issues a unique ID per request, captures client metadata and
// stamps the request time, so every later component sees one consistent
// clock reading.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := uuid.NewString()
		correlationID := r.Header.Get(CorrelationHeader)
		if correlationID == "" {
			correlationID = requestID
		}

		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithCorrelationID(ctx, correlationID)
		ctx = requestcontext.WithClientMetadata(ctx, clientIP(r), r.UserAgent())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
