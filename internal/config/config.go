package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for a validation run.
type Config struct {
	Service       ServiceConfig
	Paths         PathsConfig
	Schema        SchemaConfig
	Observability ObservabilityConfig
	Kafka         KafkaConfig
	Store         StoreConfig
}

// ServiceConfig holds core service settings.
type ServiceConfig struct {
	Principal string
}

// PathsConfig holds input directories and the report file location.
type PathsConfig struct {
	EventDir      string
	SchemaDir     string
	ValidationLog string
}

// SchemaConfig controls JSON Schema compilation.
type SchemaConfig struct {
	DefaultDraft string
	AssertFormat bool
}

// ObservabilityConfig holds logging and metrics export settings.
type ObservabilityConfig struct {
	LogLevel           string
	LogFormat          string
	MetricsTextfile    string // node-exporter textfile path; empty disables
	MetricsPushgateway string // pushgateway URL; empty disables
	MetricsJob         string
}

// KafkaConfig holds Kafka publisher settings.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicValid   string
	TopicInvalid string
	Principal    string
}

// StoreConfig holds the outcome store settings.
type StoreConfig struct {
	PostgresDSN string // empty disables the store
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-event-validator")

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
		},
		Paths: PathsConfig{
			EventDir:      envOrDefault("EVENT_DIR", "event"),
			SchemaDir:     envOrDefault("SCHEMA_DIR", "schema"),
			ValidationLog: envOrDefault("VALIDATION_LOG", "validation.log"),
		},
		Schema: SchemaConfig{
			DefaultDraft: envOrDefault("SCHEMA_DEFAULT_DRAFT", "2020-12"),
			AssertFormat: envOrDefaultBool("SCHEMA_ASSERT_FORMAT", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:           envOrDefault("LOG_LEVEL", "warn"),
			LogFormat:          envOrDefault("LOG_FORMAT", "console"),
			MetricsTextfile:    os.Getenv("METRICS_TEXTFILE"),
			MetricsPushgateway: os.Getenv("METRICS_PUSHGATEWAY_URL"),
			MetricsJob:         envOrDefault("METRICS_JOB", "event_schema_validator"),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envList("KAFKA_BROKERS"),
			TopicValid:   envOrDefault("KAFKA_TOPIC_VALID", "events.validation.valid"),
			TopicInvalid: envOrDefault("KAFKA_TOPIC_INVALID", "events.validation.invalid"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Store: StoreConfig{
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
