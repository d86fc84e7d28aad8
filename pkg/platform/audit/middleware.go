package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mssola/useragent"

	"brpgateway/pkg/requestcontext"
)

// Middleware emits one request and one response event per API call. Sink
// failures are logged and never fail the call.
func Middleware(publisher Publisher, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			base := Event{
				Timestamp:       start,
				RequestID:       requestcontext.RequestID(ctx),
				CorrelationID:   requestcontext.CorrelationID(ctx),
				SourceURL:       r.URL.RequestURI(),
				ClientIP:        requestcontext.ClientIP(ctx),
				UserAgentFamily: userAgentFamily(r.UserAgent()),
				Gebruiker:       requestcontext.MKSGebruiker(ctx),
				Applicatie:      requestcontext.MKSApplicatie(ctx),
			}

			requestEvent := base
			requestEvent.Type = TypeRequest
			if err := publisher.Publish(ctx, requestEvent); err != nil {
				logger.ErrorContext(ctx, "audit request event failed",
					"request_id", base.RequestID, "error", err)
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			responseEvent := base
			responseEvent.Type = TypeResponse
			responseEvent.Timestamp = time.Now()
			responseEvent.Status = rec.status
			responseEvent.DurationMS = time.Since(start).Milliseconds()
			if err := publisher.Publish(ctx, responseEvent); err != nil {
				logger.ErrorContext(ctx, "audit response event failed",
					"request_id", base.RequestID, "error", err)
			}
		})
	}
}

func userAgentFamily(raw string) string {
	if raw == "" {
		return "unknown"
	}
	name, _ := useragent.New(raw).Browser()
	if name == "" {
		return "unknown"
	}
	return name
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
