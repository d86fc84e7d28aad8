package config

import (
	"log/slog"
	"os"
	"time"
)

// Config captures everything main needs to wire the gateway.
type Config struct {
	// Addr is the listen address of the REST API.
	Addr string

	// APIRoot is the absolute external base of the BRP resources, used for
	// HAL links (the gateway usually runs behind a proxy, so the request
	// host is not authoritative).
	APIRoot string

	// BAGRoot is the base of the address-register API linked from
	// residence data.
	BAGRoot string

	// MKS broker endpoint and client certificate.
	MKSURL          string
	MKSCertFile     string
	MKSKeyFile      string
	MKSCACertFile   string
	MKSCallTimeout  time.Duration
	ShutdownTimeout time.Duration

	// JWTSecret verifies proxy access tokens when the proxy forwards a
	// bearer token instead of role headers. Empty disables the token path.
	JWTSecret string

	// Audit sinks. Empty values disable the respective sink; the audit
	// trail then falls back to the structured log.
	KafkaBrokers    string
	KafkaAuditTopic string
	AuditDSN        string

	LogLevel slog.Level
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("BRP_GATEWAY_ADDR", ":8080"),
		APIRoot:         envOr("BRP_GATEWAY_API_ROOT", "http://localhost:8080/brp"),
		BAGRoot:         envOr("BAG_API_ROOT", "https://api.data.amsterdam.nl/v1/bag"),
		MKSURL:          os.Getenv("MKS_URL"),
		MKSCertFile:     os.Getenv("MKS_CLIENT_CERT"),
		MKSKeyFile:      os.Getenv("MKS_CLIENT_KEY"),
		MKSCACertFile:   os.Getenv("MKS_CA_CERT"),
		MKSCallTimeout:  durationOr("MKS_CALL_TIMEOUT", 30*time.Second),
		ShutdownTimeout: durationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWTSecret:       os.Getenv("BRP_GATEWAY_JWT_SECRET"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaAuditTopic: envOr("KAFKA_AUDIT_TOPIC", "brpgateway.audit"),
		AuditDSN:        os.Getenv("AUDIT_DATABASE_URL"),
		LogLevel:        slog.LevelInfo,
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
