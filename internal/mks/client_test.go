package mks

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall(t *testing.T) {
	var gotAction, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("Soapaction")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("<answer/>"))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(Config{URL: srv.URL}, slog.Default(), nil)
	require.NoError(t, err)

	status, body, err := c.Call(context.Background(), "http://example.org/action", []byte("<vraag/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<answer/>", string(body))
	assert.Equal(t, "http://example.org/action", gotAction)
	assert.Equal(t, "text/xml", gotContentType)
}

func TestCallReturnsFaultBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<fault/>"))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(Config{URL: srv.URL}, slog.Default(), nil)
	require.NoError(t, err)

	status, body, err := c.Call(context.Background(), "action", nil)
	require.NoError(t, err, "a fault status is data, not a transport error")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "<fault/>", string(body))
}

func TestCallTransportError(t *testing.T) {
	c, err := NewHTTPClient(Config{URL: "http://127.0.0.1:1"}, slog.Default(), nil)
	require.NoError(t, err)

	_, _, err = c.Call(context.Background(), "action", nil)
	assert.Error(t, err)
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	c, err := NewHTTPClient(Config{URL: "http://127.0.0.1:1"}, slog.Default(), nil)
	require.NoError(t, err)

	// Five failures open the circuit; the sixth call is the probe that
	// consumes the probe slot.
	for i := 0; i < 6; i++ {
		_, _, err = c.Call(context.Background(), "action", nil)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, _, err = c.Call(context.Background(), "action", nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
