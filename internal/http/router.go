// Package httpapi assembles the gateway's HTTP surface: the BRP resources
// behind the identity middleware and audit trail, plus the unauthenticated
// health and metrics endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brpgateway/internal/brp/handler"
	jwttoken "brpgateway/internal/jwt_token"
	"brpgateway/internal/platform/middleware"
	"brpgateway/pkg/platform/audit"
)

// NewRouter wires all routes. The audit middleware sits inside the identity
// middleware so every audited event carries the MKS operator; rejected
// requests still appear in the request log.
func NewRouter(h *handler.Handler, validator *jwttoken.Validator, logger *slog.Logger, publisher audit.Publisher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLog(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/brp/status/health", h.Health)

	r.Route("/brp", func(r chi.Router) {
		r.Use(middleware.RequireMKSIdentity(validator, logger))
		r.Use(audit.Middleware(publisher, logger))
		h.Register(r)
	})
	return r
}
