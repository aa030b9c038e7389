// Package postgres persists encounter telemetry using pgx v5. The schema
// lives in migrations/ and is applied by cmd/migrate.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinderpeak/ironwatch/internal/config"
	"github.com/cinderpeak/ironwatch/internal/storage"
)

// Recorder writes telemetry to PostgreSQL through a pgx connection pool.
type Recorder struct {
	pool *pgxpool.Pool
}

var _ storage.Recorder = (*Recorder)(nil)

// Open creates a connection pool from the given configuration and verifies
// it with a ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Recorder or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Recorder, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Recorder{pool: pool}, nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The recorder must not be closed.
// Postcondition: Returns nil if the database responds within the timeout.
func (r *Recorder) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.pool.Ping(ctx)
}

// BeginEncounter opens a new encounter row and returns its ID.
//
// Precondition: level must be non-empty.
func (r *Recorder) BeginEncounter(ctx context.Context, level string, seed int64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO encounters (id, level, seed) VALUES ($1, $2, $3)`,
		id, level, seed,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting encounter: %w", err)
	}
	return id, nil
}

// RecordHit appends one hit to the encounter.
func (r *Recorder) RecordHit(ctx context.Context, enc uuid.UUID, hit storage.Hit) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO hits (encounter_id, tick, attacker, target, guard_id, outcome, damage, lethal, x, y)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		enc, int64(hit.Tick), hit.Attacker, hit.Target, hit.GuardID,
		hit.Outcome, hit.Damage, hit.Lethal, hit.X, hit.Y,
	)
	if err != nil {
		return fmt.Errorf("inserting hit: %w", err)
	}
	return nil
}

// RecordDeath appends one player death to the encounter.
func (r *Recorder) RecordDeath(ctx context.Context, enc uuid.UUID, death storage.Death) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO deaths (encounter_id, tick, cause, subtype, x, y)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		enc, int64(death.Tick), death.Cause, death.Subtype, death.X, death.Y,
	)
	if err != nil {
		return fmt.Errorf("inserting death: %w", err)
	}
	return nil
}

// EndEncounter finalizes the encounter row with its outcome.
//
// Postcondition: Returns storage.ErrEncounterNotFound if no row matches enc.
func (r *Recorder) EndEncounter(ctx context.Context, enc uuid.UUID, sum storage.Summary) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE encounters
		 SET ended_at = NOW(), cleared = $2, ticks = $3, player_deaths = $4, score = $5
		 WHERE id = $1`,
		enc, sum.Cleared, int64(sum.Ticks), sum.PlayerDeaths, sum.Score,
	)
	if err != nil {
		return fmt.Errorf("finalizing encounter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrEncounterNotFound
	}
	return nil
}

// Close releases all pool resources.
//
// Postcondition: The recorder is no longer usable after Close.
func (r *Recorder) Close() error {
	r.pool.Close()
	return nil
}

// DB returns the underlying pool for tests and migration helpers.
func (r *Recorder) DB() *pgxpool.Pool {
	return r.pool
}
