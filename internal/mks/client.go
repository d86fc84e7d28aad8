// Package mks is the outbound transport to the StUF/BG registry broker
// (Makelaarsuite). One REST call maps onto exactly one synchronous SOAP
// post; the caller parses the response body, including fault bodies that
// arrive with a non-success status.
package mks

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"brpgateway/pkg/platform/circuit"
)

// ErrCircuitOpen means MKS failed repeatedly and the client is refusing
// calls until a probe succeeds.
var ErrCircuitOpen = errors.New("mks: circuit open, broker unavailable")

// probeInterval limits how often an open circuit lets a call through to
// test whether the broker recovered.
const probeInterval = 5 * time.Second

// Client posts one StUF message and returns the raw response. A non-2xx
// status is not an error here; MKS sends fault bodies with status 500 and
// the caller needs the body to translate them.
type Client interface {
	Call(ctx context.Context, soapAction string, body []byte) (status int, response []byte, err error)
}

// Config locates the broker and the client certificate it requires.
type Config struct {
	URL string

	// Mutual TLS credentials. Empty paths disable client certificates,
	// which only works against a local test broker.
	ClientCertFile string
	ClientKeyFile  string
	CACertFile     string

	Timeout time.Duration
}

// HTTPClient is the production Client. A circuit breaker guards the broker:
// after repeated transport failures, calls fail fast and only a periodic
// probe goes through until the broker answers again.
type HTTPClient struct {
	url     string
	client  *http.Client
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	breaker *circuit.Breaker

	mu        sync.Mutex
	lastProbe time.Time
}

// NewHTTPClient builds the transport, loading the client certificate when
// configured.
func NewHTTPClient(cfg Config, logger *slog.Logger, metrics *Metrics) (*HTTPClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ClientCertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("mks: load client certificate: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		if cfg.CACertFile != "" {
			caPEM, err := os.ReadFile(cfg.CACertFile)
			if err != nil {
				return nil, fmt.Errorf("mks: load CA certificate: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("mks: CA certificate %s contains no certificates", cfg.CACertFile)
			}
			tlsConfig.RootCAs = pool
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &HTTPClient{
		url:     cfg.URL,
		client:  &http.Client{Transport: transport, Timeout: timeout},
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("brpgateway/internal/mks"),
		breaker: circuit.New("mks", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1)),
	}, nil
}

// allowCall reports whether a call may go out. With the circuit open only
// one probe per probeInterval passes.
func (c *HTTPClient) allowCall() bool {
	if !c.breaker.IsOpen() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastProbe) < probeInterval {
		return false
	}
	c.lastProbe = time.Now()
	return true
}

// Call posts the message with the Soapaction header and returns the status
// and response body.
func (c *HTTPClient) Call(ctx context.Context, soapAction string, body []byte) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "mks.call",
		trace.WithAttributes(attribute.String("soap.action", soapAction)))
	defer span.End()

	if !c.allowCall() {
		c.metrics.IncrementCallErrors(soapAction)
		return 0, nil, ErrCircuitOpen
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("mks: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Soapaction", soapAction)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.IncrementCallErrors(soapAction)
		span.RecordError(err)
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "mks circuit opened", "soap_action", soapAction)
		}
		return 0, nil, fmt.Errorf("mks: call %s: %w", soapAction, err)
	}
	defer resp.Body.Close()
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "mks circuit closed")
	}

	response, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrementCallErrors(soapAction)
		span.RecordError(err)
		return 0, nil, fmt.Errorf("mks: read response: %w", err)
	}

	c.metrics.ObserveCallLatency(soapAction, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "mks returned non-success status",
			"soap_action", soapAction,
			"status", strconv.Itoa(resp.StatusCode),
		)
	}
	return resp.StatusCode, response, nil
}
