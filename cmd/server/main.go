// main wires the gateway: reference data, the mapping registry, the MKS
// client, the REST handlers and the audit trail, then runs the HTTP server
// until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"brpgateway/internal/brp/convert"
	"brpgateway/internal/brp/handler"
	"brpgateway/internal/brp/mapping"
	"brpgateway/internal/brp/refdata"
	"brpgateway/internal/brp/response"
	httpapi "brpgateway/internal/http"
	jwttoken "brpgateway/internal/jwt_token"
	"brpgateway/internal/mks"
	"brpgateway/internal/platform/config"
	"brpgateway/internal/platform/httpserver"
	"brpgateway/internal/platform/logger"
	"brpgateway/internal/platform/metrics"
	"brpgateway/pkg/platform/audit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codes, err := refdata.New()
	if err != nil {
		return err
	}
	bag := bagEndpoints(cfg.BAGRoot)

	registry, err := mapping.NewDefaultRegistry(convert.New(codes), bag)
	if err != nil {
		return err
	}

	client, err := mks.NewHTTPClient(mks.Config{
		URL:            cfg.MKSURL,
		ClientCertFile: cfg.MKSCertFile,
		ClientKeyFile:  cfg.MKSKeyFile,
		CACertFile:     cfg.MKSCACertFile,
		Timeout:        cfg.MKSCallTimeout,
	}, log, mks.New())
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var validator *jwttoken.Validator
	if cfg.JWTSecret != "" {
		validator = jwttoken.NewValidator(cfg.JWTSecret)
	}

	h := handler.New(client, response.NewBuilder(registry), log, metrics.New(), cfg.APIRoot, bag)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(h, validator, log, publisher))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gateway listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newPublisher(cfg config.Config, log *slog.Logger) (audit.Publisher, error) {
	if cfg.KafkaBrokers == "" {
		return audit.NewSlogPublisher(log), nil
	}
	return audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic,
		audit.WithKafkaLogger(log),
		audit.WithKafkaMetrics(audit.NewMetrics()),
	)
}

func bagEndpoints(root string) mapping.BAGEndpoints {
	return mapping.BAGEndpoints{
		Nummeraanduidingen: root + "/nummeraanduidingen",
		Verblijfsobjecten:  root + "/verblijfsobjecten",
		Ligplaatsen:        root + "/ligplaatsen",
		Standplaatsen:      root + "/standplaatsen",
	}
}
