// Package events publishes validation outcome records to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"event-schema-validator/internal/models"
	"event-schema-validator/internal/observability/metrics"
)

// Header keys set on every published message.
const (
	HeaderOutcome   = "outcome"
	HeaderPrincipal = "principal"
	HeaderRunID     = "runId"
)

// Publisher publishes outcome records to separate Kafka topics for valid
// and failed events.
type Publisher struct {
	writerValid   *kafka.Writer
	writerInvalid *kafka.Writer
	principal     string
	topicValid    string
	topicInvalid  string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicValid   string
	TopicInvalid string
	Principal    string
	Enabled      bool
}

// New creates a publisher. With a nil config, Enabled unset or no brokers it
// runs in log-only mode.
func New(cfg *Config, m *metrics.Metrics) *Publisher {
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicValid:   cfg.TopicValid,
			topicInvalid: cfg.TopicInvalid,
			enabled:      false,
			metrics:      m,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicValid", cfg.TopicValid).
		Str("topicInvalid", cfg.TopicInvalid).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerValid:   newWriter(cfg.Brokers, cfg.TopicValid, transport),
		writerInvalid: newWriter(cfg.Brokers, cfg.TopicInvalid, transport),
		principal:     cfg.Principal,
		topicValid:    cfg.TopicValid,
		topicInvalid:  cfg.TopicInvalid,
		enabled:       true,
		metrics:       m,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// Name identifies the publisher in sink metrics and logs.
func (p *Publisher) Name() string {
	return "kafka"
}

// Record publishes rec to the valid or invalid topic, keyed by event filename
// so that re-runs of the same file land on the same partition.
func (p *Publisher) Record(ctx context.Context, rec models.OutcomeRecord) error {
	if rec.Failed() {
		return p.publish(ctx, p.writerInvalid, p.topicInvalid, rec)
	}
	return p.publish(ctx, p.writerValid, p.topicValid, rec)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic string, rec models.OutcomeRecord) error {
	start := time.Now()

	payload, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal outcome record")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", rec.Filename).
		RawJSON("payload", payload).
		Msg("Publishing outcome record")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, rec.Outcome, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(rec.Filename),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderOutcome, Value: []byte(rec.Outcome)},
			{Key: HeaderPrincipal, Value: []byte(p.principal)},
			{Key: HeaderRunID, Value: []byte(rec.RunID)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", rec.Filename).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, rec.Outcome, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, rec.Outcome, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerValid != nil {
		if e := p.writerValid.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing valid writer")
			err = e
		}
	}
	if p.writerInvalid != nil {
		if e := p.writerInvalid.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing invalid writer")
			err = e
		}
	}
	return err
}
