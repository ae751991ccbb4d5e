package app

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"event-schema-validator/internal/config"
	"event-schema-validator/internal/events"
	"event-schema-validator/internal/observability/logging"
	"event-schema-validator/internal/observability/metrics"
	"event-schema-validator/internal/registry"
	"event-schema-validator/internal/report"
	"event-schema-validator/internal/schema"
	"event-schema-validator/internal/service/validation"
	"event-schema-validator/internal/store"
)

// Application holds process-wide state for one validation run.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	RunID       string
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config) *Application {
	a := &Application{
		Cfg:      cfg,
		RunID:    uuid.NewString(),
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.NewMetrics(a.Registry)
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	appLogger.Debug().Msg("Event schema validator application created")
	return a
}

// setupLogger configures zerolog for the run.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:      a.Cfg.Observability.LogLevel,
		Format:     a.Cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a.Logger = logging.WithRun(a.RunID).With().
		Str("component", "application").
		Logger()

	a.Logger.Debug().
		Str("logLevel", a.Cfg.Observability.LogLevel).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Run performs one full validation pass: it opens the report, loads both
// registries, decides every event and exports metrics. Any returned error
// is fatal for the run.
func (a *Application) Run(ctx context.Context) (validation.Summary, error) {
	runLogger := a.Logger.With().
		Str("method", "Run").
		Logger()

	a.StartupTime = time.Now().UTC()
	defer a.exportMetrics(ctx)

	rep, err := report.Open(a.Cfg.Paths.ValidationLog)
	if err != nil {
		return validation.Summary{}, err
	}
	defer rep.Close()

	schemas, err := registry.LoadSchemas(a.Cfg.Paths.SchemaDir)
	if err != nil {
		return validation.Summary{}, err
	}
	evs, err := registry.LoadEvents(a.Cfg.Paths.EventDir)
	if err != nil {
		return validation.Summary{}, err
	}
	a.Metrics.RecordLoaded(schemas.Len(), evs.Len())

	runLogger.Info().
		Int("schemas", schemas.Len()).
		Int("events", evs.Len()).
		Msg("Registries loaded")

	checker, err := schema.New(schemas, schema.Options{
		DefaultDraft: a.Cfg.Schema.DefaultDraft,
		AssertFormat: a.Cfg.Schema.AssertFormat,
	})
	if err != nil {
		return validation.Summary{}, err
	}

	sinks, closers := a.openSinks(ctx)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				runLogger.Warn().Err(err).Msg("Error closing sink")
			}
		}
	}()

	svc := validation.New(checker, rep, a.RunID, a.Metrics, sinks...)
	summary, err := svc.Run(ctx, evs)
	a.Metrics.RecordRun(time.Since(a.StartupTime).Seconds())
	if err != nil {
		return summary, err
	}

	runLogger.Info().
		Int("total", summary.Total).
		Int("failed", summary.Failed()).
		Int("reportLines", rep.Lines()).
		Dur("duration", time.Since(a.StartupTime)).
		Msg("Validation run completed")
	return summary, nil
}

// openSinks builds the Kafka publisher and, when configured, the Postgres
// store. A store that cannot be reached is skipped.
func (a *Application) openSinks(ctx context.Context) ([]validation.Sink, []io.Closer) {
	publisher := events.New(&events.Config{
		Enabled:      a.Cfg.Kafka.Enabled,
		Brokers:      a.Cfg.Kafka.Brokers,
		TopicValid:   a.Cfg.Kafka.TopicValid,
		TopicInvalid: a.Cfg.Kafka.TopicInvalid,
		Principal:    a.Cfg.Kafka.Principal,
	}, a.Metrics)

	sinks := []validation.Sink{publisher}
	closers := []io.Closer{publisher}

	if a.Cfg.Store.PostgresDSN == "" {
		return sinks, closers
	}

	pg, err := store.Open(ctx, store.Config{DSN: a.Cfg.Store.PostgresDSN})
	if err != nil {
		a.Logger.Error().Err(err).Msg("Outcome store unavailable, continuing without it")
		a.Metrics.RecordSinkError("postgres")
		return sinks, closers
	}
	return append(sinks, pg), append(closers, pg)
}

func (a *Application) exportMetrics(ctx context.Context) {
	obs := a.Cfg.Observability
	if obs.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(obs.MetricsTextfile, a.Registry); err != nil {
			a.Logger.Warn().Err(err).Str("path", obs.MetricsTextfile).Msg("Metrics export failed")
		}
	}
	if obs.MetricsPushgateway != "" {
		// The run context may already be cancelled; pushing is still wanted.
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, obs.MetricsPushgateway, obs.MetricsJob, a.Registry); err != nil {
			a.Logger.Warn().Err(err).Str("url", obs.MetricsPushgateway).Msg("Metrics push failed")
		}
	}
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	shutdownLogger.Debug().Msg("Event schema validator shutting down")
}
