package guard

import "github.com/cinderpeak/ironwatch/internal/game/geom"

// State identifies the single behavior state a guard occupies.
type State string

const (
	// StateIdle is the degenerate patrol for a zero-width patrol range.
	StateIdle State = "idle"
	// StatePatrol walks between the patrol bounds.
	StatePatrol State = "patrol"
	// StateSuspicious investigates a heard noise and decays back to patrol.
	StateSuspicious State = "suspicious"
	// StateAlert closes on a seen player.
	StateAlert State = "alert"
	// StateCombatReady holds in combat range and runs the decision loop.
	StateCombatReady State = "combat_ready"
	// StateAttacking plays one attack variant for its fixed duration.
	StateAttacking State = "attacking"
	// StateBlocking holds a guard's block for its fixed duration.
	StateBlocking State = "blocking"
	// StateStunned is the fixed-duration stagger recovery.
	StateStunned State = "stunned"
	// StateRetreating backs away from the player for a fixed duration.
	StateRetreating State = "retreating"
	// StateDying is the fixed-duration transition into StateDead.
	StateDying State = "dying"
	// StateDead is terminal. A dead guard receives no further updates.
	StateDead State = "dead"
	// StateKnockedOut is the recoverable collapse of unarmored guards. The
	// guard wakes with full health and resumes its patrol.
	StateKnockedOut State = "knocked_out"
)

// EventKind tags the one-shot notifications a guard emits for presentation
// hooks. Combat outcomes never depend on them.
type EventKind string

const (
	EventDeath       EventKind = "death"
	EventPhaseChange EventKind = "phase_change"
	EventKnockedOut  EventKind = "knocked_out"
	EventRecovered   EventKind = "recovered"
	EventAlerted     EventKind = "alerted"
)

// Event is one buffered notification. The orchestrator drains events after
// each tick and forwards them to presentation hooks.
type Event struct {
	Kind      EventKind
	GuardID   string
	Archetype string
	Phase     int
	Position  geom.Vec2
}
