// Package sqlite persists encounter telemetry in a local SQLite file. It is
// the zero-infrastructure backend: no server, schema applied inline on open.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cinderpeak/ironwatch/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS encounters (
    id            TEXT     PRIMARY KEY,
    level         TEXT     NOT NULL,
    seed          INTEGER  NOT NULL,
    started_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    ended_at      DATETIME,
    cleared       INTEGER  NOT NULL DEFAULT 0,
    ticks         INTEGER  NOT NULL DEFAULT 0,
    player_deaths INTEGER  NOT NULL DEFAULT 0,
    score         INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hits (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    encounter_id TEXT    NOT NULL REFERENCES encounters (id) ON DELETE CASCADE,
    tick         INTEGER NOT NULL,
    attacker     TEXT    NOT NULL,
    target       TEXT    NOT NULL,
    guard_id     TEXT    NOT NULL,
    outcome      TEXT    NOT NULL,
    damage       REAL    NOT NULL,
    lethal       INTEGER NOT NULL,
    x            REAL    NOT NULL,
    y            REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hits_encounter_tick ON hits (encounter_id, tick);

CREATE TABLE IF NOT EXISTS deaths (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    encounter_id TEXT    NOT NULL REFERENCES encounters (id) ON DELETE CASCADE,
    tick         INTEGER NOT NULL,
    cause        TEXT    NOT NULL,
    subtype      TEXT    NOT NULL,
    x            REAL    NOT NULL,
    y            REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deaths_encounter_tick ON deaths (encounter_id, tick);
`

// Recorder writes telemetry to a SQLite database file.
type Recorder struct {
	db *sql.DB
}

var _ storage.Recorder = (*Recorder)(nil)

// Open opens or creates the database at path and applies the schema.
// WAL journaling keeps concurrent readers from blocking the writer.
//
// Precondition: path must be non-empty and writable.
// Postcondition: Returns a ready Recorder or a non-nil error.
func Open(ctx context.Context, path string) (*Recorder, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One writer connection; the harness is single-goroutine and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// BeginEncounter opens a new encounter row and returns its ID.
//
// Precondition: level must be non-empty.
func (r *Recorder) BeginEncounter(ctx context.Context, level string, seed int64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO encounters (id, level, seed) VALUES (?, ?, ?)`,
		id, level, seed,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting encounter: %w", err)
	}
	return id, nil
}

// RecordHit appends one hit to the encounter.
func (r *Recorder) RecordHit(ctx context.Context, enc uuid.UUID, hit storage.Hit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hits (encounter_id, tick, attacker, target, guard_id, outcome, damage, lethal, x, y)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deaths (encounter_id, tick, cause, subtype, x, y)
		 VALUES (?, ?, ?, ?, ?, ?)`,
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE encounters
		 SET ended_at = CURRENT_TIMESTAMP, cleared = ?, ticks = ?, player_deaths = ?, score = ?
		 WHERE id = ?`,
		sum.Cleared, int64(sum.Ticks), sum.PlayerDeaths, sum.Score, enc,
	)
	if err != nil {
		return fmt.Errorf("finalizing encounter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalizing encounter: %w", err)
	}
	if n == 0 {
		return storage.ErrEncounterNotFound
	}
	return nil
}

// Close releases the database handle.
//
// Postcondition: The recorder is no longer usable after Close.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// DB returns the underlying handle for tests.
func (r *Recorder) DB() *sql.DB {
	return r.db
}
