// Package store persists validation outcome records in Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"event-schema-validator/internal/models"
)

const initSQL = `
CREATE TABLE IF NOT EXISTS validation_outcomes (
    run_id       UUID        NOT NULL,
    seq          INTEGER     NOT NULL,
    filename     TEXT        NOT NULL,
    event_name   TEXT,
    outcome      VARCHAR(32) NOT NULL,
    message      TEXT,
    line         TEXT,
    validated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, seq)
);
`

const insertSQL = `
INSERT INTO validation_outcomes
    (run_id, seq, filename, event_name, outcome, message, line, validated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), $8)
ON CONFLICT (run_id, seq) DO NOTHING
`

// Config configures the outcome store pool.
type Config struct {
	DSN      string
	MaxConns int32
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres writes one row per outcome record.
type Postgres struct {
	pool *pgxpool.Pool
	db   execer
}

var newPool = pgxpool.NewWithConfig

// Open connects a pool and creates the outcome table if missing.
func Open(ctx context.Context, cfg Config) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	// One writer per run; keep the pool small.
	pcfg.MaxConns = 4
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.MinConns = 1
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute
	pcfg.HealthCheckPeriod = 1 * time.Minute
	pcfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres pool: %w", err)
	}

	s := &Postgres{pool: pool, db: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", pcfg.ConnConfig.Host).
		Str("database", pcfg.ConnConfig.Database).
		Msg("Outcome store initialized")
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.Exec(ctx, initSQL); err != nil {
		return fmt.Errorf("run init sql: %w", err)
	}
	return nil
}

// Name identifies the store in sink metrics and logs.
func (s *Postgres) Name() string {
	return "postgres"
}

// Record inserts rec. Rows already present for the same run and sequence
// number are left untouched.
func (s *Postgres) Record(ctx context.Context, rec models.OutcomeRecord) error {
	_, err := s.db.Exec(ctx, insertSQL,
		rec.RunID,
		rec.Seq,
		rec.Filename,
		rec.EventName,
		rec.Outcome,
		rec.Message,
		rec.Line,
		time.UnixMilli(rec.ValidatedAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outcome %d: %w", rec.Seq, err)
	}
	return nil
}

// Close closes the pool.
func (s *Postgres) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
