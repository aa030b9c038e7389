package combat

import "github.com/cinderpeak/ironwatch/internal/game/geom"

// Audio cue identifiers passed to the AudioCues collaborator.
const (
	CueSwordHit   = "sword_hit"
	CuePunchHit   = "punch_hit"
	CueDeflect    = "deflect"
	CueParry      = "parry"
	CueBlock      = "block"
	CueKnockout   = "knockout"
	CueGuardDown  = "guard_down"
	CuePlayerHit  = "player_hit"
	CuePlayerDown = "player_down"
)

// Particle kinds passed to the Particles collaborator.
const (
	ParticleSpark = "spark"
	ParticleBlood = "blood"
	ParticleDust  = "dust"
)

// Hit outcomes reported through the Hits collaborator.
const (
	HitLanded    = "landed"
	HitBlocked   = "blocked"
	HitDeflected = "deflected"
	HitKnockout  = "knockout"
)

// ActorPlayer labels the player side of a hit report.
const ActorPlayer = "player"

// HitReport describes one resolved strike for telemetry. Attacker and Target
// are ActorPlayer or the guard's archetype ID; GuardID names the guard on
// whichever end of the strike. Damage is what was applied, so blocked and
// deflected strikes report zero.
type HitReport struct {
	Attacker string
	Target   string
	GuardID  string
	Outcome  string
	Damage   float64
	Lethal   bool
	Position geom.Vec2
}

// DeathCause classifies what ended a player's life.
type DeathCause string

const (
	CauseGuard DeathCause = "guard"
	CauseTrap  DeathCause = "trap"
	CausePit   DeathCause = "pit"
	CauseTime  DeathCause = "time"
)

// DeathRecord is the structured record of one player death, consumed by the
// UI and persistence layers.
type DeathRecord struct {
	Cause    DeathCause
	Subtype  string
	Position geom.Vec2
}

// AudioCues receives fire-and-forget sound requests.
type AudioCues interface {
	Request(cue string)
}

// Particles receives fire-and-forget particle spawn requests.
type Particles interface {
	Spawn(pos geom.Vec2, kind string)
}

// Score receives score deltas.
type Score interface {
	Add(delta int)
}

// Deaths receives player death records.
type Deaths interface {
	Record(rec DeathRecord)
}

// Hits receives per-strike telemetry reports.
type Hits interface {
	Note(rep HitReport)
}

// Hooks bundles the resolver's collaborators. Nil fields are skipped, so a
// zero Hooks resolves combat with no side channels at all.
type Hooks struct {
	Audio     AudioCues
	Particles Particles
	Score     Score
	Deaths    Deaths
	Hits      Hits
}
