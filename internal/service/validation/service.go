// Package validation decides the outcome of every loaded event and hands it
// to the report and any configured sinks.
package validation

import (
	"context"
	"fmt"
	"time"

	"event-schema-validator/internal/models"
	"event-schema-validator/internal/observability/logging"
	"event-schema-validator/internal/observability/metrics"
	"event-schema-validator/internal/registry"
	"event-schema-validator/internal/schema"
)

// Checker resolves schema IDs and validates documents against them.
type Checker interface {
	Has(id string) bool
	Validate(id string, doc any) (*schema.Violation, error)
}

// Reporter receives every outcome in sequence order.
type Reporter interface {
	Report(o models.Outcome) error
}

// Sink receives the record of every outcome after it has been reported.
// Sink failures are logged and counted but do not stop the run.
type Sink interface {
	Name() string
	Record(ctx context.Context, rec models.OutcomeRecord) error
}

// Summary counts the outcomes of one run.
type Summary struct {
	RunID  string
	Total  int
	Counts map[models.OutcomeKind]int
}

// Failed returns the number of events with a failure outcome.
func (s Summary) Failed() int {
	return s.Total - s.Counts[models.Valid]
}

// Service runs the per-event decision procedure.
type Service struct {
	checker  Checker
	reporter Reporter
	sinks    []Sink
	metrics  *metrics.Metrics
	runId    string
	now      func() time.Time
}

// New creates a validation service for one run.
func New(checker Checker, reporter Reporter, runId string, m *metrics.Metrics, sinks ...Sink) *Service {
	return &Service{
		checker:  checker,
		reporter: reporter,
		sinks:    sinks,
		metrics:  m,
		runId:    runId,
		now:      time.Now,
	}
}

// Decide classifies one event. The checks are ordered: null document,
// missing event field, unknown schema, schema violation. The first that
// applies wins.
func (s *Service) Decide(seq int, e registry.EventEntry) (models.Outcome, error) {
	o := models.Outcome{Seq: seq, Filename: e.Filename}

	if e.Document.IsNull() {
		o.Kind = models.NoSchemaMapping
		return o, nil
	}

	v, ok := e.Document.Lookup(models.EventField)
	if !ok {
		o.Kind = models.MissingEventField
		return o, nil
	}

	name, isString := v.(string)
	o.EventName = name
	if !isString || !s.checker.Has(name) {
		o.Kind = models.UnknownSchemaReference
		return o, nil
	}

	violation, err := s.checker.Validate(name, e.Document.Value())
	if err != nil {
		return o, fmt.Errorf("event %d (%s): %w", seq, e.Filename, err)
	}
	if violation != nil {
		o.Kind = models.SchemaViolation
		o.Message = violation.Message
		return o, nil
	}

	o.Kind = models.Valid
	return o, nil
}

// Run decides every event in discovery order, numbering them from 1.
// It stops between events when ctx is cancelled.
func (s *Service) Run(ctx context.Context, events *registry.EventRegistry) (Summary, error) {
	summary := Summary{
		RunID:  s.runId,
		Counts: make(map[models.OutcomeKind]int),
	}

	for i, e := range events.Entries() {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run interrupted before event %d: %w", i+1, err)
		}

		seq := i + 1
		start := time.Now()
		o, err := s.Decide(seq, e)
		if err != nil {
			return summary, err
		}
		s.metrics.RecordOutcome(o.Kind.String(), time.Since(start).Seconds())

		logger := logging.WithEvent(s.runId, seq, e.Filename)
		logger.Debug().
			Str("outcome", o.Kind.String()).
			Str("eventName", o.EventName).
			Msg("Event decided")

		if err := s.reporter.Report(o); err != nil {
			return summary, err
		}
		summary.Total++
		summary.Counts[o.Kind]++

		s.publish(ctx, o)
	}

	return summary, nil
}

func (s *Service) publish(ctx context.Context, o models.Outcome) {
	if len(s.sinks) == 0 {
		return
	}
	rec := models.NewOutcomeRecord(s.runId, o, s.now())
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, rec); err != nil {
			logger := logging.WithEvent(s.runId, o.Seq, o.Filename)
			logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Msg("Sink rejected outcome record")
			s.metrics.RecordSinkError(sink.Name())
		}
	}
}
