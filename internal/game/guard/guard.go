// Package guard implements the watch guard behavior machine: patrol and
// perception, the reaction-gated combat decision loop, attack variant
// playback, and the damage, stagger, knockout, and boss phase rules.
//
// A Guard is owned by the simulation tick. It is updated in two steps, first
// Update with the tick's sense snapshot, then Integrate against the level,
// and publishes presentation notifications through DrainEvents.
package guard

import (
	"github.com/google/uuid"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/rng"
	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
	"github.com/cinderpeak/ironwatch/internal/game/timing"
)

// cdDecision spaces combat decisions by the archetype reaction time.
const cdDecision = "decision"

type plan int

const (
	planHold plan = iota
	planAdvance
)

// Guard is one simulated watch guard. All stat differences between guard
// kinds flow through the archetype table; the machine itself only branches on
// knockout eligibility and the boss tier.
type Guard struct {
	id         string
	arch       *ruleset.Archetype
	repertoire []*ruleset.AttackVariant
	src        rng.Source

	pos    geom.Vec2 // body min corner
	vel    geom.Vec2
	facing geom.Facing

	patrolMin float64
	patrolMax float64

	health    float64
	maxHealth float64

	state     State
	timer     timing.StateTimer
	cooldowns *timing.CooldownSet
	plan      plan
	grounded  bool

	// attack playback. winIdx is the live window index, -1 outside windows.
	attack *ruleset.AttackVariant
	winIdx int
	swing  uint64

	phase        int
	blockedCount int
	noiseAt      geom.Vec2

	pending []Event
}

// New creates a guard at pos with the given patrol bounds.
//
// Precondition: arch and src must be non-nil, repertoire must be non-empty,
// and patrolMin <= patrolMax. pos is the body min corner.
// Postcondition: The guard starts patrolling (or idle for a zero-width patrol
// range) at full health with no pending events.
func New(arch *ruleset.Archetype, repertoire []*ruleset.AttackVariant, pos geom.Vec2, patrolMin, patrolMax float64, src rng.Source) *Guard {
	if arch == nil {
		panic("guard.New: precondition violated: archetype must be non-nil")
	}
	if src == nil {
		panic("guard.New: precondition violated: random source must be non-nil")
	}
	if len(repertoire) == 0 {
		panic("guard.New: precondition violated: repertoire must not be empty")
	}
	if patrolMin > patrolMax {
		panic("guard.New: precondition violated: patrol bounds must be ordered")
	}
	g := &Guard{
		id:         uuid.NewString(),
		arch:       arch,
		repertoire: repertoire,
		src:        src,
		pos:        pos,
		facing:     geom.FacingRight,
		patrolMin:  patrolMin,
		patrolMax:  patrolMax,
		health:     float64(arch.MaxHealth),
		maxHealth:  float64(arch.MaxHealth),
		state:      StatePatrol,
		cooldowns:  timing.NewCooldownSet(),
		winIdx:     -1,
		grounded:   true,
	}
	if arch.BossTier {
		g.phase = 1
	}
	if patrolMax-patrolMin < 1e-9 {
		g.state = StateIdle
	}
	return g
}

// transitionTo switches states and resets every action-local field. The
// attack variant, live window, and movement plan never survive a transition,
// so a hitbox cannot leak across states.
func (g *Guard) transitionTo(s State) {
	g.state = s
	g.timer.Reset()
	g.attack = nil
	g.winIdx = -1
	g.plan = planHold
}

// restState is where a recovered or becalmed guard settles.
func (g *Guard) restState() State {
	if g.patrolMax-g.patrolMin < 1e-9 {
		return StateIdle
	}
	return StatePatrol
}

func (g *Guard) emit(kind EventKind) {
	g.pending = append(g.pending, Event{
		Kind:      kind,
		GuardID:   g.id,
		Archetype: g.arch.ID,
		Phase:     g.phase,
		Position:  g.Center(),
	})
}

// DrainEvents returns the buffered notifications and clears the buffer.
//
// Postcondition: A second call without intervening updates returns nil.
func (g *Guard) DrainEvents() []Event {
	ev := g.pending
	g.pending = nil
	return ev
}

// ID returns the guard's unique instance identifier.
func (g *Guard) ID() string { return g.id }

// Archetype returns the stat table driving this guard.
func (g *Guard) Archetype() *ruleset.Archetype { return g.arch }

// Position returns the body min corner.
func (g *Guard) Position() geom.Vec2 { return g.pos }

// Velocity returns the current velocity.
func (g *Guard) Velocity() geom.Vec2 { return g.vel }

// Bounds returns the body box.
func (g *Guard) Bounds() geom.AABB {
	return geom.AABB{X: g.pos.X, Y: g.pos.Y, W: Width, H: Height}
}

// Center returns the body box center.
func (g *Guard) Center() geom.Vec2 { return g.Bounds().Center() }

// State returns the current behavior state.
func (g *Guard) State() State { return g.state }

// Facing returns the horizontal facing.
func (g *Guard) Facing() geom.Facing { return g.facing }

// Health returns current health.
func (g *Guard) Health() float64 { return g.health }

// MaxHealth returns the archetype health ceiling.
func (g *Guard) MaxHealth() float64 { return g.maxHealth }

// HealthFraction returns health / max health.
func (g *Guard) HealthFraction() float64 { return g.health / g.maxHealth }

// Phase returns the boss phase, 1 through 3. Zero for non-boss archetypes.
func (g *Guard) Phase() int { return g.phase }

// Rallying reports whether the rally boost is active.
func (g *Guard) Rallying() bool {
	return (g.arch.Elite || g.arch.BossTier) && g.HealthFraction() < RallyThreshold
}

// BlockedCount returns the accumulated block interactions since the last
// reset.
func (g *Guard) BlockedCount() int { return g.blockedCount }

// Blocking reports whether the guard currently holds a block.
func (g *Guard) Blocking() bool { return g.state == StateBlocking }

// Alive reports whether the guard has not begun dying. Knocked-out guards
// are alive; they wake up.
func (g *Guard) Alive() bool {
	return g.state != StateDying && g.state != StateDead
}

// Targetable reports whether hits may resolve against the guard. Dying,
// dead, and knocked-out guards take no further damage.
func (g *Guard) Targetable() bool {
	return g.Alive() && g.state != StateKnockedOut
}

// Grounded reports whether the body rested on solid ground after the last
// Integrate.
func (g *Guard) Grounded() bool { return g.grounded }
