// Package storage defines the playtest telemetry contract. A Recorder
// persists one encounter per simulation run along with every resolved hit
// and player death. Implementations live in the postgres and sqlite
// subpackages; Nop is the in-package stand-in when recording is off.
//
// Recorder errors are for the caller to log and drop. Persistence must never
// feed back into the simulation.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEncounterNotFound is returned when finalizing an encounter that was
// never begun.
var ErrEncounterNotFound = errors.New("encounter not found")

// Hit is one resolved strike, either direction. Attacker and Target are
// "player" or a guard archetype ID; GuardID names the guard instance on
// whichever end of the strike.
type Hit struct {
	Tick     uint64
	Attacker string
	Target   string
	GuardID  string
	Outcome  string
	Damage   float64
	Lethal   bool
	X, Y     float64
}

// Death is one player death with its cause taxonomy.
type Death struct {
	Tick    uint64
	Cause   string
	Subtype string
	X, Y    float64
}

// Summary closes out an encounter.
type Summary struct {
	Cleared      bool
	Ticks        uint64
	PlayerDeaths int
	Score        int
}

// Recorder persists encounter telemetry. Implementations must be safe for
// use from a single goroutine; the harness serializes all calls.
type Recorder interface {
	// BeginEncounter opens a new encounter row and returns its ID.
	BeginEncounter(ctx context.Context, level string, seed int64) (uuid.UUID, error)

	// RecordHit appends one hit to the encounter.
	RecordHit(ctx context.Context, enc uuid.UUID, hit Hit) error

	// RecordDeath appends one player death to the encounter.
	RecordDeath(ctx context.Context, enc uuid.UUID, death Death) error

	// EndEncounter finalizes the encounter row with its outcome.
	EndEncounter(ctx context.Context, enc uuid.UUID, sum Summary) error

	// Close releases the backing store.
	Close() error
}

// Nop is a Recorder that discards everything. It still hands out encounter
// IDs so callers can treat all backends uniformly.
type Nop struct{}

// NewNop returns a no-op Recorder.
func NewNop() Nop {
	return Nop{}
}

// BeginEncounter returns a fresh ID and discards the rest.
func (Nop) BeginEncounter(context.Context, string, int64) (uuid.UUID, error) {
	return uuid.New(), nil
}

// RecordHit discards the hit.
func (Nop) RecordHit(context.Context, uuid.UUID, Hit) error { return nil }

// RecordDeath discards the death.
func (Nop) RecordDeath(context.Context, uuid.UUID, Death) error { return nil }

// EndEncounter discards the summary.
func (Nop) EndEncounter(context.Context, uuid.UUID, Summary) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }
