// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "event_validator"

// Metrics holds all Prometheus metrics for a validation run.
type Metrics struct {
	// Load metrics
	SchemasLoaded prometheus.Gauge
	EventsLoaded  prometheus.Gauge

	// Validation metrics
	EventsTotal       *prometheus.CounterVec
	ValidationLatency prometheus.Histogram
	RunDuration       prometheus.Gauge

	// Sink metrics
	SinkErrors *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Load metrics
		SchemasLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schemas_loaded",
			Help:      "Number of schemas in the schema registry",
		}),
		EventsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_loaded",
			Help:      "Number of event documents in the event registry",
		}),

		// Validation metrics
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events processed, by outcome",
		}, []string{"outcome"}),
		ValidationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_latency_seconds",
			Help:      "Time to decide the outcome of one event",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last validation run",
		}),

		// Sink metrics
		SinkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Total number of outcome records a sink failed to accept",
		}, []string{"sink"}),

		// Kafka publish metrics
		KafkaPublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "outcome"}),
		KafkaPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "outcome"}),
		KafkaPublishLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordLoaded records the registry sizes.
func (m *Metrics) RecordLoaded(schemas, events int) {
	if m == nil {
		return
	}
	m.SchemasLoaded.Set(float64(schemas))
	m.EventsLoaded.Set(float64(events))
}

// RecordOutcome records one decided event.
func (m *Metrics) RecordOutcome(outcome string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(outcome).Inc()
	m.ValidationLatency.Observe(latencySeconds)
}

// RecordRun records the wall time of a run.
func (m *Metrics) RecordRun(durationSeconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Set(durationSeconds)
}

// RecordSinkError records a record rejected by a sink.
func (m *Metrics) RecordSinkError(sink string) {
	if m == nil {
		return
	}
	m.SinkErrors.WithLabelValues(sink).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, outcome string, err error, latencySeconds float64) {
	if m == nil {
		return
	}
	m.KafkaPublishTotal.WithLabelValues(topic, outcome).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, outcome).Inc()
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for the node-exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push replaces the metrics of job on the pushgateway at url.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
