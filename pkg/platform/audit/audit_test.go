package audit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brpgateway/pkg/requestcontext"
)

type capturingPublisher struct {
	events []Event
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *capturingPublisher) Close() {}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMiddlewareEmitsRequestAndResponse(t *testing.T) {
	pub := &capturingPublisher{}
	handler := Middleware(pub, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/brp/ingeschrevenpersonen/999993653?expand=partners", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	ctx := requestcontext.WithRequestID(req.Context(), "req-1")
	ctx = requestcontext.WithCorrelationID(ctx, "corr-1")
	ctx = requestcontext.WithMKSIdentity(ctx, "user1", "fp_burgerzaken")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Len(t, pub.events, 2)

	request := pub.events[0]
	assert.Equal(t, TypeRequest, request.Type)
	assert.Equal(t, "req-1", request.RequestID)
	assert.Equal(t, "corr-1", request.CorrelationID)
	assert.Equal(t, "/brp/ingeschrevenpersonen/999993653?expand=partners", request.SourceURL)
	assert.Equal(t, "user1", request.Gebruiker)
	assert.Equal(t, "fp_burgerzaken", request.Applicatie)
	assert.Equal(t, "Chrome", request.UserAgentFamily)
	assert.Zero(t, request.Status)

	response := pub.events[1]
	assert.Equal(t, TypeResponse, response.Type)
	assert.Equal(t, http.StatusNotFound, response.Status)
}

func TestMiddlewareSinkFailureDoesNotFailRequest(t *testing.T) {
	pub := &capturingPublisher{err: context.DeadlineExceeded}
	handler := Middleware(pub, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brp/status/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserAgentFamily(t *testing.T) {
	assert.Equal(t, "unknown", userAgentFamily(""))
	assert.Equal(t, "unknown", userAgentFamily("not-a-real-agent"))
	assert.Equal(t, "Firefox", userAgentFamily("Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"))
}

func TestSlogPublisher(t *testing.T) {
	p := NewSlogPublisher(discard())
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeRequest}))
	p.Close()
}
