// main runs the audit consumer: it reads the audit topic and appends every
// event to the Postgres retention store. Runs separately from the gateway so
// store latency never touches the request path.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"brpgateway/internal/platform/config"
	"brpgateway/internal/platform/logger"
	"brpgateway/pkg/platform/audit"
)

const consumerGroup = "brpgateway-audit-worker"

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.KafkaBrokers == "" || cfg.AuditDSN == "" {
		log.Error("audit worker requires KAFKA_BROKERS and AUDIT_DATABASE_URL")
		os.Exit(1)
	}

	store, err := audit.NewPostgresStore(ctx, cfg.AuditDSN)
	if err != nil {
		log.Error("audit store unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	worker, err := audit.NewWorker(cfg.KafkaBrokers, cfg.KafkaAuditTopic, consumerGroup,
		store, log, audit.NewMetrics())
	if err != nil {
		log.Error("audit worker construction failed", "error", err)
		os.Exit(1)
	}

	log.Info("audit worker consuming", "topic", cfg.KafkaAuditTopic)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("audit worker stopped", "error", err)
		os.Exit(1)
	}
}
